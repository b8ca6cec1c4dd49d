package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseEngine(t *testing.T) {
	tests := map[string]Engine{
		"sqlite":     Engine_SQLITE,
		" SQLite3 ":  Engine_SQLITE,
		"mysql":      Engine_MYSQL,
		"postgresql": Engine_POSTGRES,
		"MariaDB":    Engine_MARIADB,
		"oracle":     Engine_ENGINE_UNSPECIFIED,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseEngine(in), in)
	}
}

func TestSQLReviewRuleDecoding(t *testing.T) {
	var fromYAML SQLReviewRule
	require.NoError(t, yaml.Unmarshal([]byte("type: statement.dry-run\nlevel: warning\nengine: sqlite\n"), &fromYAML))
	require.Equal(t, SQLReviewRuleLevel_WARNING, fromYAML.Level)
	require.Equal(t, Engine_SQLITE, fromYAML.Engine)

	var fromJSON SQLReviewRule
	require.NoError(t, json.Unmarshal([]byte(`{"type":"statement.dry-run","level":"DISABLED","engine":"SQLITE"}`), &fromJSON))
	require.Equal(t, SQLReviewRuleLevel_DISABLED, fromJSON.Level)
	require.Equal(t, fromYAML.Engine, fromJSON.Engine)
}

func TestAdviceJSON(t *testing.T) {
	advice := &Advice{
		Status:        Advice_ERROR,
		Code:          20101,
		Title:         "Statement rejected by SQLite",
		Content:       `near "ENGINE": syntax error`,
		StartPosition: &Position{Line: 2, Column: 1},
	}
	data, err := json.Marshal(advice)
	require.NoError(t, err)
	require.Contains(t, string(data), `"status":"ERROR"`)

	var got Advice
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, *advice, got)
}

func TestPrimaryKeyHelpers(t *testing.T) {
	table := &TableMetadata{
		Name: "lecturas",
		Indexes: []*IndexMetadata{
			{Name: "idx_valor", Expressions: []string{"valor"}},
			{Name: "PRIMARY", Primary: true, Unique: true, Expressions: []string{"sensor_id", "Fecha"}},
		},
	}
	require.Equal(t, "PRIMARY", table.PrimaryKey().Name)
	require.True(t, table.IsPrimaryKeyColumn("fecha"))
	require.False(t, table.IsPrimaryKeyColumn("valor"))
	require.Nil(t, (&TableMetadata{}).PrimaryKey())
	require.False(t, (&TableMetadata{}).IsPrimaryKeyColumn("id"))
}
