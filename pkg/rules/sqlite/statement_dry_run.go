package sqlite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nsxbet/sql-sandbox/pkg/advisor"
	"github.com/nsxbet/sql-sandbox/pkg/mysqlparser"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// StatementDryRunAdvisor runs the script on the sandbox connection inside a
// transaction that is rolled back, and reports the first statement SQLite
// rejects. It emits nothing without a driver.
type StatementDryRunAdvisor struct{}

// Check implements advisor.Advisor.
func (*StatementDryRunAdvisor) Check(ctx context.Context, checkCtx advisor.Context) ([]*types.Advice, error) {
	if checkCtx.Driver == nil {
		checkCtx.Log().Debug("skipping dry run without a driver")
		return nil, nil
	}
	if checkCtx.Rule == nil {
		return nil, errors.New("dry run requires a rule")
	}
	status, err := advisor.NewStatusBySQLReviewRuleLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}

	list, err := mysqlparser.SplitSQL(checkCtx.Statements)
	if err != nil {
		return nil, err
	}
	stmts := mysqlparser.NonEmpty(list)
	texts := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		texts = append(texts, stmt.Text)
	}

	idx, engineErr := advisor.DryRun(ctx, checkCtx.Driver, texts, checkCtx.Log())
	if idx < 0 {
		// engineErr is operational here, e.g. cancellation.
		return nil, engineErr
	}

	failed := stmts[idx]
	content := engineErr.Error()
	if res := checkCtx.HintSet().Find(failed.Text); res.Matched {
		content += "\n" + res.PlainText()
	}
	return []*types.Advice{
		{
			Status:        status,
			Code:          advisor.StatementDryRunFailed.Int32(),
			Title:         advisor.DryRunFailedTitle,
			Content:       content,
			StartPosition: failed.Location(),
		},
	}, nil
}
