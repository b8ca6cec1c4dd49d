package hint

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type hintTestCase struct {
	Statement string    `yaml:"statement"`
	Want      *wantHint `yaml:"want,omitempty"`
}

type wantHint struct {
	Rule     string `yaml:"rule"`
	Code     Code   `yaml:"code"`
	Contains string `yaml:"contains,omitempty"`
}

func TestFindHintTestdata(t *testing.T) {
	byteValue, err := os.ReadFile(filepath.Join("testdata", "hints.yaml"))
	require.NoError(t, err)

	var tests []hintTestCase
	require.NoError(t, yaml.Unmarshal(byteValue, &tests))
	require.NotEmpty(t, tests)

	for i, tc := range tests {
		got := FindHint(tc.Statement)
		if tc.Want == nil {
			require.False(t, got.Matched, "case %d: %q matched %s", i, tc.Statement, got.Rule)
			require.Equal(t, Result{}, got)
			continue
		}
		require.True(t, got.Matched, "case %d: %q", i, tc.Statement)
		require.Equal(t, tc.Want.Rule, got.Rule, "case %d: %q", i, tc.Statement)
		require.Equal(t, tc.Want.Code, got.Code, "case %d: %q", i, tc.Statement)
		require.True(t, strings.HasPrefix(got.Text, Prefix), "case %d", i)
		require.NotContains(t, got.Text, "{{", "case %d: unexpanded token", i)
		if tc.Want.Contains != "" {
			require.Contains(t, got.Text, tc.Want.Contains, "case %d: %q", i, tc.Statement)
		}
	}
}

func TestCreateDatabaseAnyCasing(t *testing.T) {
	for _, stmt := range []string{
		"CREATE DATABASE casa;",
		"create database casa;",
		"Create Database casa",
		"\n\t  CREATE   DATABASE casa;",
	} {
		got := FindHint(stmt)
		require.True(t, got.Matched, stmt)
		require.Equal(t, RuleCreateDatabase, got.Rule, stmt)
		require.Contains(t, got.Text, "CREATE TABLE", stmt)
	}
}

func TestAutoIncrementNamesNativeSyntax(t *testing.T) {
	for _, stmt := range []string{
		"CREATE TABLE t (id INT AUTO_INCREMENT PRIMARY KEY);",
		"create table t (id integer primary key auto_increment)",
		"ALTER TABLE t MODIFY id INT AUTO_INCREMENT;",
	} {
		got := FindHint(stmt)
		require.True(t, got.Matched, stmt)
		require.Equal(t, RuleAutoIncrement, got.Rule, stmt)
		require.Contains(t, got.Text, "INTEGER PRIMARY KEY AUTOINCREMENT", stmt)
	}
}

func TestFirstMatchWins(t *testing.T) {
	// Rule 4 precedes the type rule.
	got := FindHint("CREATE TABLE t (x TINYINT) ENGINE=InnoDB;")
	require.Equal(t, RuleTableEngine, got.Rule)
	require.Equal(t, TableEngine, got.Code)

	first := NewSet(
		Rule{Type: "a", Pattern: regexp.MustCompile(`(?i)select`), Template: "a"},
		Rule{Type: "b", Pattern: regexp.MustCompile(`(?i)select`), Template: "b"},
	)
	require.Equal(t, "a", first.Find("SELECT 1").Rule)
	require.Equal(t, "b", first.Without("a").Find("SELECT 1").Rule)
}

func TestFindHintIdempotent(t *testing.T) {
	stmt := "ALTER TABLE sensores DROP COLUMN tipo;"
	want := FindHint(stmt)
	for i := 0; i < 10; i++ {
		require.Equal(t, want, FindHint(stmt))
	}
}

func TestUseIdenticalAcrossCasing(t *testing.T) {
	a := FindHint("use mydb;")
	b := FindHint("USE mydb;")
	c := FindHint("Use MyDb;")
	require.True(t, a.Matched)
	require.Equal(t, RuleUseDatabase, a.Rule)
	require.Equal(t, a, b)
	require.Equal(t, a, c)
}

func TestEmptyInput(t *testing.T) {
	for _, stmt := range []string{"", " ", "\n\t\r\n"} {
		require.Equal(t, Result{}, FindHint(stmt))
	}
}

func TestTemplateExpansion(t *testing.T) {
	got := FindHint("ALTER TABLE `sensores` DROP COLUMN tipo;")
	require.Equal(t, RuleAlterDropColumn, got.Rule)
	require.Contains(t, got.Text, "<code>sensores</code>")
	require.NotContains(t, got.Text, "`")

	got = FindHint(`DROP INDEX "idx_nombre" ON [habitaciones];`)
	require.Equal(t, RuleDropIndexOnTable, got.Rule)
	require.Contains(t, got.Text, "DROP INDEX idx_nombre;")
	require.Contains(t, got.Text, "ON habitaciones")
}

func TestTemplateExpansionEscapesCaptures(t *testing.T) {
	got := FindHint("ALTER TABLE `<b>x</b>` DROP COLUMN tipo;")
	require.True(t, got.Matched)
	require.Contains(t, got.Text, "&lt;b&gt;x&lt;/b&gt;")
	require.NotContains(t, got.Text, "<b>x</b>")
}

func TestColumnTypeContext(t *testing.T) {
	tests := []struct {
		statement string
		want      string
	}{
		{"CREATE TABLE t (a MEDIUMINT)", "MEDIUMINT"},
		{"CREATE TABLE t (a INTEGER, b LONGTEXT)", "LONGTEXT"},
		{"CREATE TABLE t (a INTEGER, b SET('x','y'))", "SET"},
		{"CREATE TABLE t (a INTEGER, b DATETIME(6))", "DATETIME"},
		{"CREATE TABLE t (a INTEGER, b YEAR)", "YEAR"},
		{"CREATE TABLE t (a INTEGER, b JSONB)", "JSONB"},
		{"CREATE TABLE t (a INT, -- nivel\n b TINYINT)", "TINYINT"},
		{"CREATE TABLE t (/* clave */ a INTEGER, /* datos */ b LONGBLOB)", "LONGBLOB"},
		{"ALTER TABLE t ADD COLUMN # nuevo\n c MEDIUMTEXT", "MEDIUMTEXT"},
		{"CREATE TABLE t (a INTEGER, b DATETIME)", ""},
		{"SELECT YEAR(fecha) FROM lecturas", ""},
		{"UPDATE t SET a = 1", ""},
		{"SELECT CAST(a AS DECIMAL) FROM t", ""},
	}
	for _, tc := range tests {
		got := FindHint(tc.statement)
		if tc.want == "" {
			require.False(t, got.Matched, tc.statement)
			continue
		}
		require.Equal(t, RuleColumnType, got.Rule, tc.statement)
		require.Contains(t, got.Text, "<code>"+tc.want+"</code>", tc.statement)
	}
}

func TestAlterTableRequiresTableName(t *testing.T) {
	require.False(t, FindHint("ALTER TABLE DROP COLUMN tipo;").Matched)
	require.True(t, FindHint("ALTER TABLE IF EXISTS sensores DROP COLUMN tipo;").Matched)
}

func TestDefaultRulesOrder(t *testing.T) {
	rules := Catalog().Rules()
	require.Len(t, rules, 19)
	seen := make(map[string]bool)
	for i, rule := range rules {
		require.Equal(t, Code(21001+i), rule.Code, rule.Type)
		require.NotEmpty(t, rule.Title, rule.Type)
		require.False(t, seen[rule.Type], "duplicate rule %s", rule.Type)
		seen[rule.Type] = true
	}
	require.Equal(t, RuleCreateDatabase, rules[0].Type)
	require.Equal(t, RuleAlterRenameColumn, rules[14].Type)
}

func TestWithoutKeepsOrder(t *testing.T) {
	set := Catalog().Without(RuleTableEngine, RuleAutoIncrement)
	require.Equal(t, Catalog().Len()-2, set.Len())

	var got []string
	for _, rule := range set.Rules() {
		got = append(got, rule.Type)
	}
	var want []string
	for _, rule := range Catalog().Rules() {
		if rule.Type == RuleTableEngine || rule.Type == RuleAutoIncrement {
			continue
		}
		want = append(want, rule.Type)
	}
	require.Equal(t, want, got)

	// The type rule now answers what the engine rule used to.
	res := set.Find("CREATE TABLE t (x TINYINT) ENGINE=InnoDB;")
	require.Equal(t, RuleColumnType, res.Rule)
	// The catalog itself is unchanged.
	require.Equal(t, RuleTableEngine, FindHint("CREATE TABLE t (x TINYINT) ENGINE=InnoDB;").Rule)
}

func TestRulesReturnsCopy(t *testing.T) {
	rules := Catalog().Rules()
	rules[0].Type = "mutated"
	require.Equal(t, RuleCreateDatabase, Catalog().Rules()[0].Type)
}

func TestFindHintConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, RuleDropIndexOnTable, FindHint("DROP INDEX idx_nombre ON habitaciones;").Rule)
			}
		}()
	}
	wg.Wait()
}

func TestPlainText(t *testing.T) {
	got := FindHint("DROP INDEX idx_nombre ON habitaciones;")
	plain := got.PlainText()
	require.True(t, strings.HasPrefix(plain, "Pista: "))
	require.Contains(t, plain, "DROP INDEX idx_nombre;")
	require.NotContains(t, plain, "<")

	require.Equal(t, "a <b> & c", PlainText("<code>a &lt;b&gt; &amp; c</code>"))
	require.Empty(t, Result{}.PlainText())
}
