package sqlite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nsxbet/sql-sandbox/pkg/advisor"
	"github.com/nsxbet/sql-sandbox/pkg/mysqlparser"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// DialectMySQLCompatAdvisor reports every statement that matches a dialect hint.
// The rule payload may carry a "list" of hint rule types to leave out.
type DialectMySQLCompatAdvisor struct{}

// Check implements advisor.Advisor.
func (*DialectMySQLCompatAdvisor) Check(ctx context.Context, checkCtx advisor.Context) ([]*types.Advice, error) {
	if checkCtx.Rule == nil {
		return nil, errors.New("dialect check requires a rule")
	}
	status, err := advisor.NewStatusBySQLReviewRuleLevel(checkCtx.Rule.Level)
	if err != nil {
		return nil, err
	}
	payload, err := advisor.UnmarshalStringArrayTypeRulePayload(checkCtx.Rule.Payload)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid payload for %s", checkCtx.Rule.Type)
	}
	hints := checkCtx.HintSet().Without(payload.List...)

	list, err := mysqlparser.SplitSQL(checkCtx.Statements)
	if err != nil {
		return nil, err
	}

	var adviceList []*types.Advice
	for _, stmt := range mysqlparser.NonEmpty(list) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := hints.Find(stmt.Text)
		if !res.Matched {
			continue
		}
		adviceList = append(adviceList, &types.Advice{
			Status:        status,
			Code:          int32(res.Code),
			Title:         res.Title,
			Content:       res.Text,
			StartPosition: stmt.Location(),
		})
	}
	return adviceList, nil
}
