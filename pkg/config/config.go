package config

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/sql-sandbox/pkg/advisor"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// Config represents the configuration for SQL review
type Config struct {
	ID    string                 `yaml:"id" json:"id"`
	Rules []*types.SQLReviewRule `yaml:"rules" json:"rules"`
}

// LoadFromFile loads configuration from a file
func LoadFromFile(filename string) (*Config, error) {
	slog.Debug("Loading config from file", "filename", filename)
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", filename)
	}
	return Parse(data)
}

// Parse decodes a rule configuration. YAML is tried first, then JSON.
func Parse(data []byte) (*Config, error) {
	slog.Debug("Config content preview", "content", string(data[:min(200, len(data))]))

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		slog.Debug("YAML unmarshal failed", "error", err)
		if jsonErr := json.Unmarshal(data, &config); jsonErr != nil {
			slog.Debug("JSON unmarshal failed", "error", jsonErr)
			return nil, errors.Wrap(jsonErr, "config is neither YAML nor JSON")
		}
		slog.Debug("JSON unmarshal succeeded")
	}

	for _, rule := range config.Rules {
		if rule.Engine == types.Engine_ENGINE_UNSPECIFIED {
			rule.Engine = types.Engine_SQLITE
		}
		rule.Payload = normalizePayload(rule.Type, rule.Payload)
	}

	slog.Debug("Loaded config", "rules_count", len(config.Rules))
	return &config, nil
}

// normalizePayload accepts the short forms of rule payloads.
func normalizePayload(ruleType string, payload map[string]interface{}) map[string]interface{} {
	switch advisor.SQLReviewRuleType(ruleType) {
	case advisor.SchemaRuleDialectMySQLCompat:
		if payload == nil {
			return map[string]interface{}{"list": []string{}}
		}
		// "disabled" is accepted as an alias of "list".
		if disabled, ok := payload["disabled"]; ok {
			if _, hasList := payload["list"]; !hasList {
				return map[string]interface{}{"list": disabled}
			}
		}
	}
	return payload
}

// DefaultConfig returns the configuration used when no rules file is given:
// dialect hints as warnings and the sandbox dry run as errors.
func DefaultConfig(id string) *Config {
	return &Config{
		ID: id,
		Rules: []*types.SQLReviewRule{
			{
				Type:    string(advisor.SchemaRuleDialectMySQLCompat),
				Level:   types.SQLReviewRuleLevel_WARNING,
				Engine:  types.Engine_SQLITE,
				Payload: map[string]interface{}{"list": []string{}},
			},
			{
				Type:   string(advisor.SchemaRuleStatementDryRun),
				Level:  types.SQLReviewRuleLevel_ERROR,
				Engine: types.Engine_SQLITE,
			},
		},
	}
}

// GetRulesForEngine returns rules applicable to the given engine
func (c *Config) GetRulesForEngine(engine types.Engine) []*types.SQLReviewRule {
	var rules []*types.SQLReviewRule
	for _, rule := range c.Rules {
		if rule.Engine == types.Engine_ENGINE_UNSPECIFIED || rule.Engine == engine {
			rules = append(rules, rule)
		}
	}
	return rules
}
