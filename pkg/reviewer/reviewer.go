// Package reviewer provides a high-level API for reviewing SQL scripts before they
// run on the sandbox.
//
// # Quick Start
//
//	r := reviewer.New(types.Engine_SQLITE)
//
//	result, err := r.Review(context.Background(), "CREATE TABLE t (id INT AUTO_INCREMENT);")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, advice := range result.Advices {
//	    fmt.Printf("[%s] %s\n", advice.Status, advice.Title)
//	}
//
// # Dry Run
//
// Passing the sandbox connection enables the statement.dry-run rule, which runs the
// script inside a transaction that is rolled back:
//
//	result, err := r.Review(ctx, script, reviewer.WithDriver(session.DB()))
package reviewer

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/nsxbet/sql-sandbox/pkg/advisor"
	"github.com/nsxbet/sql-sandbox/pkg/config"
	"github.com/nsxbet/sql-sandbox/pkg/logger"
	_ "github.com/nsxbet/sql-sandbox/pkg/rules/sqlite"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// Reviewer runs the configured rules for one engine.
//
// Reviewer is safe for concurrent use by multiple goroutines as long as its
// configuration is not replaced concurrently.
type Reviewer struct {
	config *config.Config
	engine types.Engine
}

// New creates a new Reviewer for the specified database engine with
// config.DefaultConfig.
func New(engine types.Engine) *Reviewer {
	return &Reviewer{
		config: config.DefaultConfig("default"),
		engine: engine,
	}
}

// WithConfig loads rule configuration from a YAML or JSON file.
// This replaces the current configuration.
func (r *Reviewer) WithConfig(filename string) error {
	cfg, err := config.LoadFromFile(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to load config from %s", filename)
	}
	r.config = cfg
	return nil
}

// WithConfigObject sets a custom configuration object directly.
// This replaces the current configuration.
func (r *Reviewer) WithConfigObject(cfg *config.Config) *Reviewer {
	r.config = cfg
	return r
}

// Config returns the current configuration.
func (r *Reviewer) Config() *config.Config {
	return r.config
}

// Review runs all enabled rules against the provided SQL statements.
//
// Cancellation is checked between rules; a cancelled review returns the advices
// collected so far together with ctx.Err(). Individual rule failures are
// logged and skipped.
func (r *Reviewer) Review(ctx context.Context, sql string, opts ...ReviewOption) (*ReviewResult, error) {
	rules := r.config.GetRulesForEngine(r.engine)

	reviewOpts := &reviewOptions{}
	for _, opt := range opts {
		opt(reviewOpts)
	}

	checkCtx := advisor.Context{
		DBType:     r.engine,
		Statements: sql,
		Driver:     reviewOpts.driver,
		Hints:      reviewOpts.hints,
	}
	if reviewOpts.queryLogging {
		checkCtx.Logger = logger.NewStderr(slog.LevelDebug).GetSlogLogger()
	}
	log := checkCtx.Log()

	var allAdvices []*types.Advice
	for _, rule := range rules {
		select {
		case <-ctx.Done():
			return &ReviewResult{
				Advices: allAdvices,
				Summary: calculateSummary(allAdvices),
			}, ctx.Err()
		default:
		}

		if rule.Level == types.SQLReviewRuleLevel_DISABLED {
			continue
		}

		ruleCheckContext := checkCtx
		ruleCheckContext.Rule = rule

		start := time.Now()
		advices, err := advisor.Check(ctx, r.engine, advisor.Type(rule.Type), ruleCheckContext)
		if err != nil {
			log.Warn("Rule check failed", "rule_type", rule.Type, logger.Error(err))
			continue
		}
		log.Debug("Rule checked", "rule_type", rule.Type, "advices", len(advices), "duration", time.Since(start))

		allAdvices = append(allAdvices, advices...)
	}

	return &ReviewResult{
		Advices: allAdvices,
		Summary: calculateSummary(allAdvices),
	}, nil
}

// calculateSummary computes aggregate statistics from advices
func calculateSummary(advices []*types.Advice) Summary {
	summary := Summary{}
	for _, advice := range advices {
		summary.Total++
		switch advice.Status {
		case types.Advice_ERROR:
			summary.Errors++
		case types.Advice_WARNING:
			summary.Warnings++
		case types.Advice_SUCCESS:
			summary.Success++
		}
	}
	return summary
}
