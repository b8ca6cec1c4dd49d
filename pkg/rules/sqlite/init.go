// Package sqlite holds the review advisors for scripts that run on the SQLite
// sandbox.
package sqlite

import (
	"github.com/nsxbet/sql-sandbox/pkg/advisor"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

func init() {
	registerSQLiteRule(&DialectMySQLCompatAdvisor{}, advisor.SchemaRuleDialectMySQLCompat)
	registerSQLiteRule(&StatementDryRunAdvisor{}, advisor.SchemaRuleStatementDryRun)
}

func registerSQLiteRule(a advisor.Advisor, ruleType advisor.SQLReviewRuleType) {
	advisor.Register(types.Engine_SQLITE, advisor.Type(ruleType), a)
}
