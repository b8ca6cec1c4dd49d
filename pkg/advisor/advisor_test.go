package advisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nsxbet/sql-sandbox/pkg/hint"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

type panicAdvisor struct{}

func (panicAdvisor) Check(context.Context, Context) ([]*types.Advice, error) {
	panic("boom")
}

type echoAdvisor struct{}

func (echoAdvisor) Check(_ context.Context, checkCtx Context) ([]*types.Advice, error) {
	return []*types.Advice{{Status: types.Advice_SUCCESS, Content: checkCtx.Statements}}, nil
}

func TestRegisterAndCheck(t *testing.T) {
	Register(types.Engine_MARIADB, "test.echo", echoAdvisor{})
	require.True(t, Registered(types.Engine_MARIADB, "test.echo"))
	require.False(t, Registered(types.Engine_MARIADB, "test.missing"))

	adviceList, err := Check(context.Background(), types.Engine_MARIADB, "test.echo", Context{Statements: "SELECT 1"})
	require.NoError(t, err)
	require.Len(t, adviceList, 1)
	require.Equal(t, "SELECT 1", adviceList[0].Content)

	require.Panics(t, func() { Register(types.Engine_MARIADB, "test.echo", echoAdvisor{}) })
	require.Panics(t, func() { Register(types.Engine_MARIADB, "test.nil", nil) })

	_, err = Check(context.Background(), types.Engine_MARIADB, "test.missing", Context{})
	require.Error(t, err)
	_, err = Check(context.Background(), types.Engine_POSTGRES, "test.echo", Context{})
	require.Error(t, err)
}

func TestCheckRecoversPanic(t *testing.T) {
	Register(types.Engine_MARIADB, "test.panic", panicAdvisor{})
	_, err := Check(context.Background(), types.Engine_MARIADB, "test.panic", Context{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "advisor test.panic panicked")
	require.Contains(t, err.Error(), "boom")
}

func TestNewStatusBySQLReviewRuleLevel(t *testing.T) {
	status, err := NewStatusBySQLReviewRuleLevel(types.SQLReviewRuleLevel_ERROR)
	require.NoError(t, err)
	require.Equal(t, types.Advice_ERROR, status)

	status, err = NewStatusBySQLReviewRuleLevel(types.SQLReviewRuleLevel_WARNING)
	require.NoError(t, err)
	require.Equal(t, types.Advice_WARNING, status)

	_, err = NewStatusBySQLReviewRuleLevel(types.SQLReviewRuleLevel_DISABLED)
	require.Error(t, err)
}

func TestContextHintSet(t *testing.T) {
	require.Same(t, hint.Catalog(), Context{}.HintSet())
	set := hint.NewSet()
	require.Same(t, set, Context{Hints: set}.HintSet())
}

func TestRegisteredTypes(t *testing.T) {
	Register(types.Engine_MYSQL, "test.b", echoAdvisor{})
	Register(types.Engine_MYSQL, "test.a", echoAdvisor{})
	require.Equal(t, []Type{"test.a", "test.b"}, RegisteredTypes(types.Engine_MYSQL))
	require.Empty(t, RegisteredTypes(types.Engine_ENGINE_UNSPECIFIED))
}
