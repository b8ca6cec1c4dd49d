package advisor

import (
	"context"
	"database/sql"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var (
	blanksRegex        = regexp.MustCompile(`[\t ]+`)
	newlinesRegex      = regexp.MustCompile(`\n+`)
	indentedLinesRegex = regexp.MustCompile(`\n\s+`)
	transactionRegex   = regexp.MustCompile(`(?is)\A(?:\s+|--[^\n]*|/\*.*?\*/)*(?:BEGIN(?:\s+(?:DEFERRED|IMMEDIATE|EXCLUSIVE))?(?:\s+TRANSACTION)?|COMMIT|END(?:\s+TRANSACTION)?|ROLLBACK|SAVEPOINT|RELEASE)\b\s*;?\s*\z`)
)

// NormalizeStatement collapses whitespace and limits the length of a statement
// for log lines.
func NormalizeStatement(statement string) string {
	statement = strings.TrimSpace(statement)
	statement = blanksRegex.ReplaceAllString(statement, " ")
	statement = newlinesRegex.ReplaceAllString(statement, "\n")
	statement = indentedLinesRegex.ReplaceAllString(statement, "\n")

	if !strings.Contains(statement, "\n") {
		const maxLength = 1000
		if len(statement) > maxLength {
			return statement[:maxLength] + "..."
		}
		return statement
	}

	lines := strings.Split(statement, "\n")
	var formatted []string
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			formatted = append(formatted, line)
		}
	}
	statement = strings.Join(formatted, "\n")

	const maxLength = 2000
	if len(statement) > maxLength {
		truncated := statement[:maxLength]
		if lastNewline := strings.LastIndex(truncated, "\n"); lastNewline > maxLength-200 {
			truncated = truncated[:lastNewline]
		}
		return truncated + "\n..."
	}
	return statement
}

// sqlColor picks the log colour of a statement by its leading keyword.
func sqlColor(statement string) *color.Color {
	upper := strings.ToUpper(strings.TrimSpace(statement))
	switch {
	case strings.HasPrefix(upper, "ROLLBACK"), strings.HasPrefix(upper, "DELETE"):
		return color.New(color.FgRed)
	case strings.HasPrefix(upper, "SELECT"), strings.HasPrefix(upper, "PRAGMA"):
		return color.New(color.FgBlue)
	case strings.HasPrefix(upper, "INSERT"):
		return color.New(color.FgGreen)
	case strings.HasPrefix(upper, "UPDATE"):
		return color.New(color.FgYellow)
	case strings.HasPrefix(upper, "BEGIN"), strings.HasPrefix(upper, "COMMIT"), strings.Contains(upper, "TRANSACTION"):
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgMagenta)
	}
}

func formatSQLForLog(statement string) string {
	statement = NormalizeStatement(statement)
	return sqlColor(statement).Sprint(statement)
}

// IsTransactionControl reports whether statement only opens or closes a
// transaction.
func IsTransactionControl(statement string) bool {
	return transactionRegex.MatchString(statement)
}

// DryRun executes statements in order inside a transaction that is always
// rolled back. It returns the index of the first statement the engine
// rejected together with the engine error, or -1 and nil. Transaction control
// statements are skipped. A nil log means slog.Default().
func DryRun(ctx context.Context, connection *sql.DB, statements []string, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}
	startTime := time.Now()
	tx, err := connection.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return -1, errors.Wrap(err, "failed to begin dry run transaction")
	}
	defer func() {
		_ = tx.Rollback()
		log.Debug("Dry run rolled back", "duration_ms", time.Since(startTime).Milliseconds())
	}()

	for i, statement := range statements {
		if IsTransactionControl(statement) {
			log.Debug("Skipping transaction control statement", "index", i)
			continue
		}
		log.Debug("Dry running statement", "index", i, "statement", formatSQLForLog(statement))
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			if ctx.Err() != nil {
				return -1, errors.Wrap(ctx.Err(), "dry run canceled")
			}
			log.Debug("Statement rejected", "index", i, "error", err)
			return i, err
		}
	}
	return -1, nil
}

// UnmarshalStringArrayTypeRulePayload unmarshals a string array type rule payload.
// A nil payload yields an empty list.
func UnmarshalStringArrayTypeRulePayload(payload map[string]interface{}) (*StringArrayTypeRulePayload, error) {
	if payload == nil {
		return &StringArrayTypeRulePayload{}, nil
	}

	listInterface, ok := payload["list"]
	if !ok {
		return nil, errors.New("missing 'list' field in payload")
	}

	var list []string
	switch v := listInterface.(type) {
	case []interface{}:
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, errors.New("non-string item in list")
			}
			list = append(list, str)
		}
	case []string:
		list = v
	case nil:
		list = []string{}
	default:
		return nil, errors.New("'list' field is not an array")
	}

	return &StringArrayTypeRulePayload{List: list}, nil
}

// StringArrayTypeRulePayload represents a payload with a string array field.
type StringArrayTypeRulePayload struct {
	List []string `json:"list"`
}
