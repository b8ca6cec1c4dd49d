package sandbox

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/nsxbet/sql-sandbox/pkg/hint"
	"github.com/nsxbet/sql-sandbox/pkg/mysqlparser"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// SuccessMessage is shown for statements that produce no result table.
const SuccessMessage = "Consulta ejecutada correctamente."

// NullText is how NULL values are shown.
const NullText = "NULL"

// rowsStatementRegex matches statements that may return rows. Statements keep
// the comments that precede them, so those are skipped.
var rowsStatementRegex = regexp.MustCompile(`(?is)\A(?:\s+|--[^\n]*|/\*.*?\*/)*(?:SELECT|WITH|VALUES|PRAGMA|EXPLAIN)\b|\bRETURNING\b`)

// StatementResult is the outcome of one statement of a script.
type StatementResult struct {
	SQL      string          `json:"sql"                yaml:"sql"`
	Position *types.Position `json:"position,omitempty" yaml:"position,omitempty"`

	// Columns is non-empty when the statement produced a result table.
	Columns      []string   `json:"columns,omitempty"      yaml:"columns,omitempty"`
	Rows         [][]string `json:"rows,omitempty"         yaml:"rows,omitempty"`
	RowsAffected int64      `json:"rowsAffected,omitempty" yaml:"rowsAffected,omitempty"`

	// Err is the engine error text of a rejected statement.
	Err  string      `json:"error,omitempty" yaml:"error,omitempty"`
	Hint hint.Result `json:"hint"            yaml:"hint"`
}

// HasTable reports whether the statement produced a result table.
func (r *StatementResult) HasTable() bool {
	return len(r.Columns) > 0
}

// Failed reports whether the engine rejected the statement.
func (r *StatementResult) Failed() bool {
	return r.Err != ""
}

// Outcome is the result of a script. Execution stops at the first rejected
// statement, which is then the last entry of Statements and also Failed.
type Outcome struct {
	Statements []*StatementResult `json:"statements"       yaml:"statements"`
	Failed     *StatementResult   `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// OK reports whether every statement ran.
func (o *Outcome) OK() bool {
	return o.Failed == nil
}

// Tables returns the statements that produced a result table.
func (o *Outcome) Tables() []*StatementResult {
	var tables []*StatementResult
	for _, r := range o.Statements {
		if r.HasTable() {
			tables = append(tables, r)
		}
	}
	return tables
}

// Exec runs script statement by statement. A statement rejected by the engine
// is not an error: it ends the script and is reported in the Outcome with its
// hint. Errors are returned for a session that is not ready or a cancelled
// context.
func (s *Session) Exec(ctx context.Context, script string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	list, err := mysqlparser.SplitSQL(script)
	if err != nil {
		return nil, errors.Wrap(err, "failed to split script")
	}

	outcome := &Outcome{}
	for _, stmt := range mysqlparser.NonEmpty(list) {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		result := &StatementResult{
			SQL:      stmt.Text,
			Position: stmt.Location(),
		}
		outcome.Statements = append(outcome.Statements, result)

		if err := execStatement(ctx, db, result); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return outcome, ctxErr
			}
			result.Err = err.Error()
			result.Hint = s.hints.Find(stmt.Text)
			outcome.Failed = result
			slog.Debug("Statement rejected", "line", result.Position.Line, "error", err, "hint", result.Hint.Rule)
			break
		}
	}
	return outcome, nil
}

func execStatement(ctx context.Context, db *sql.DB, result *StatementResult) error {
	if !rowsStatementRegex.MatchString(result.SQL) {
		res, err := db.ExecContext(ctx, result.SQL)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil {
			result.RowsAffected = n
		}
		return nil
	}

	rows, err := db.QueryContext(ctx, result.SQL)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	table, err := scanRows(rows, len(columns))
	if err != nil {
		return err
	}
	if len(columns) > 0 {
		result.Columns = columns
		result.Rows = table
	}
	return nil
}

func scanRows(rows *sql.Rows, width int) ([][]string, error) {
	table := [][]string{}
	values := make([]any, width)
	dest := make([]any, width)
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]string, width)
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		table = append(table, row)
	}
	return table, rows.Err()
}

// FormatValue renders a value scanned from SQLite.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return NullText
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		return v.Format(time.DateTime)
	default:
		return fmt.Sprint(v)
	}
}
