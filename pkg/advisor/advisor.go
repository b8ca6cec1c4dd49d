package advisor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/nsxbet/sql-sandbox/pkg/hint"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// SQLReviewRuleType is the type of review rule.
type SQLReviewRuleType string

const (
	// SchemaRuleDialectMySQLCompat reports statements that use MySQL constructs SQLite rejects.
	SchemaRuleDialectMySQLCompat SQLReviewRuleType = "dialect.mysql-compat"
	// SchemaRuleStatementDryRun runs the script against the sandbox and rolls it back.
	SchemaRuleStatementDryRun SQLReviewRuleType = "statement.dry-run"
)

const (
	// DryRunFailedTitle is the title of advices reporting an engine error.
	DryRunFailedTitle = "Statement rejected by SQLite"
)

// Type is the type of advisor.
type Type string

// NewStatusBySQLReviewRuleLevel returns status by SQLReviewRuleLevel.
func NewStatusBySQLReviewRuleLevel(level types.SQLReviewRuleLevel) (types.Advice_Status, error) {
	switch level {
	case types.SQLReviewRuleLevel_ERROR:
		return types.Advice_ERROR, nil
	case types.SQLReviewRuleLevel_WARNING:
		return types.Advice_WARNING, nil
	}
	return types.Advice_STATUS_UNSPECIFIED, errors.Errorf("unexpected rule level type: %v", level)
}

// Context is the context handed to an advisor.
type Context struct {
	DBType types.Engine

	// Driver is the sandbox connection. Advisors that need an engine emit
	// nothing when it is nil.
	Driver *sql.DB
	// Hints is the dialect hint catalog. Nil means hint.Catalog().
	Hints *hint.Set

	Rule       *types.SQLReviewRule
	Statements string

	// Logger receives per-statement debug lines. Nil means slog.Default().
	Logger *slog.Logger
}

// Log returns the logger of the context.
func (c Context) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// HintSet returns the hint set of the context.
func (c Context) HintSet() *hint.Set {
	if c.Hints == nil {
		return hint.Catalog()
	}
	return c.Hints
}

// Advisor is the interface for advisor.
type Advisor interface {
	Check(ctx context.Context, checkCtx Context) ([]*types.Advice, error)
}

type registryKey struct {
	engine types.Engine
	rule   Type
}

var (
	advisorMu sync.RWMutex
	advisors  = make(map[registryKey]Advisor)
)

// Register makes an advisor available for the engine and rule type.
// It panics when a is nil or the pair is already taken.
func Register(dbType types.Engine, advType Type, a Advisor) {
	if a == nil {
		panic("advisor: Register advisor is nil")
	}
	advisorMu.Lock()
	defer advisorMu.Unlock()
	key := registryKey{engine: dbType, rule: advType}
	if _, dup := advisors[key]; dup {
		panic(fmt.Sprintf("advisor: Register called twice for advisor %v for %v", advType, dbType))
	}
	advisors[key] = a
}

// Registered reports whether an advisor exists for the engine and type.
func Registered(dbType types.Engine, advType Type) bool {
	return lookup(dbType, advType) != nil
}

// RegisteredTypes lists the rule types registered for the engine, sorted.
func RegisteredTypes(dbType types.Engine) []Type {
	advisorMu.RLock()
	defer advisorMu.RUnlock()
	var list []Type
	for key := range advisors {
		if key.engine == dbType {
			list = append(list, key.rule)
		}
	}
	slices.Sort(list)
	return list
}

func lookup(dbType types.Engine, advType Type) Advisor {
	advisorMu.RLock()
	defer advisorMu.RUnlock()
	return advisors[registryKey{engine: dbType, rule: advType}]
}

// Check runs the advisor registered for the engine and type. A panicking
// advisor is turned into an error.
func Check(ctx context.Context, dbType types.Engine, advType Type, checkCtx Context) (adviceList []*types.Advice, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicErr, ok := r.(error)
			if !ok {
				panicErr = errors.Errorf("%v", r)
			}
			err = errors.Wrapf(panicErr, "advisor %v panicked", advType)
			slog.Error("advisor check panicked", "type", string(advType), "error", panicErr)
		}
	}()

	a := lookup(dbType, advType)
	if a == nil {
		return nil, errors.Errorf("advisor: unknown advisor %v for %v", advType, dbType)
	}
	return a.Check(ctx, checkCtx)
}
