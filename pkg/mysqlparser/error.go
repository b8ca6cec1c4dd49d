package mysqlparser

import (
	"fmt"

	"github.com/antlr4-go/antlr/v4"

	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// LexError is the first character sequence the lexer could not tokenize.
type LexError struct {
	// Position is one based.
	Position *types.Position
	Near     string
	Message  string
}

func (e *LexError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("line %d:%d: %s", e.Position.Line, e.Position.Column, e.Message)
	}
	return fmt.Sprintf("line %d:%d near %q: %s", e.Position.Line, e.Position.Column, e.Near, e.Message)
}

// lexErrorListener records the first error reported by the lexer and drops the
// rest; the lexer recovers and keeps producing tokens after an error.
type lexErrorListener struct {
	*antlr.DefaultErrorListener
	err *LexError
}

func newLexErrorListener() *lexErrorListener {
	return &lexErrorListener{DefaultErrorListener: antlr.NewDefaultErrorListener()}
}

func (l *lexErrorListener) SyntaxError(
	recognizer antlr.Recognizer,
	_ any,
	line, column int,
	message string,
	_ antlr.RecognitionException,
) {
	if l.err != nil {
		return
	}
	near := ""
	if lexer, ok := recognizer.(antlr.Lexer); ok {
		stream := lexer.GetInputStream()
		start := stream.Index()
		stop := min(start+20, stream.Size()) - 1
		if stop >= start {
			near = stream.GetTextFromInterval(antlr.NewInterval(start, stop))
		}
	}
	l.err = &LexError{
		Position: &types.Position{Line: int32(line), Column: int32(column + 1)},
		Near:     near,
		Message:  message,
	}
}
