// Package mysqlparser splits SQL scripts into statements with the MySQL ANTLR
// lexer. Learner scripts are written in a mix of MySQL and SQLite syntax; the
// lexer understands both well enough to find statement boundaries, including
// BEGIN ... END bodies of triggers and stored programs.
package mysqlparser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/antlr4-go/antlr/v4"
	parser "github.com/gedhean/mysql-parser"
	"github.com/pkg/errors"

	"github.com/nsxbet/sql-sandbox/pkg/types"
)

var delimiterRegex = regexp.MustCompile(`(?i)^\s*DELIMITER\s+(?P<DELIMITER>[^\s\\]+)\s*`)

// Statement is one statement of a script.
type Statement struct {
	Text string
	// BaseLine is the zero based line where Text begins.
	BaseLine int
	// Start is the zero based position of the first token that is not a comment
	// or whitespace. End is the position of the last token.
	Start *types.Position
	End   *types.Position
	// Empty is true when the statement holds only comments and semicolons.
	Empty bool
}

// Location returns the one based line and column of the statement start.
func (s Statement) Location() *types.Position {
	if s.Start == nil {
		return &types.Position{Line: 1, Column: 1}
	}
	return &types.Position{Line: s.Start.Line + 1, Column: s.Start.Column + 1}
}

// SplitSQL splits script into statements. A script the lexer cannot tokenize,
// or whose blocks cannot be matched, is returned as a single statement so the
// engine gets to report the problem.
func SplitSQL(script string) ([]Statement, error) {
	lexer := parser.NewMySQLLexer(antlr.NewInputStream(script))
	listener := newLexErrorListener()
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(listener)
	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)

	list, err := splitMySQLStatement(stream)
	if err == nil && listener.err != nil {
		err = listener.err
	}
	if err != nil {
		slog.Debug("failed to split script, using it as one statement", "error", err.Error())
		return []Statement{wholeScript(script)}, nil
	}
	return list, nil
}

// NonEmpty returns the statements that are not Empty.
func NonEmpty(list []Statement) []Statement {
	var result []Statement
	for _, s := range list {
		if !s.Empty {
			result = append(result, s)
		}
	}
	return result
}

// ExtractDelimiter extracts the delimiter from a DELIMITER statement.
func ExtractDelimiter(stmt string) (string, error) {
	matchList := delimiterRegex.FindStringSubmatch(stmt)
	index := delimiterRegex.SubexpIndex("DELIMITER")
	if index >= 0 && index < len(matchList) {
		return matchList[index], nil
	}
	return "", errors.Errorf("cannot extract delimiter from %q", stmt)
}

func wholeScript(script string) Statement {
	lexer := parser.NewMySQLLexer(antlr.NewInputStream(script))
	lexer.RemoveErrorListeners()
	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)
	stream.Fill()
	tokens := stream.GetAllTokens()
	end := len(tokens) - 1
	if end <= 0 {
		return Statement{Text: script, Start: &types.Position{}, End: &types.Position{}, Empty: true}
	}
	s := newStatement(stream, tokens, 0, end-1)
	// The tokens may not cover the whole input when lexing failed.
	s.Text = script
	return s
}

// newStatement builds the statement spanning tokens[start:end+1].
func newStatement(stream *antlr.CommonTokenStream, tokens []antlr.Token, start, end int) Statement {
	// From antlr4, the line is ONE based, and the column is ZERO based.
	// So we should minus 1 for the line.
	return Statement{
		Text:     stream.GetTextFromTokens(tokens[start], tokens[end]),
		BaseLine: tokens[start].GetLine() - 1,
		Start:    firstDefaultChannelTokenPosition(tokens[start : end+1]),
		End: &types.Position{
			Line:   int32(tokens[end].GetLine() - 1),
			Column: int32(tokens[end].GetColumn()),
		},
		Empty: isEmpty(tokens[start:end+1], parser.MySQLLexerSEMICOLON_SYMBOL),
	}
}

// trailingStatement builds the statement running from tokens[start] to EOF.
// Its start falls back to the EOF position when it holds no default channel
// token.
func trailingStatement(stream *antlr.CommonTokenStream, tokens []antlr.Token, start int) Statement {
	s := newStatement(stream, tokens, start, len(tokens)-2)
	s.Start = firstDefaultChannelTokenPosition(tokens[start:])
	return s
}

func hasDelimiterStatement(tokens []antlr.Token) bool {
	for _, token := range tokens {
		if token.GetChannel() == antlr.TokenDefaultChannel && token.GetTokenType() == parser.MySQLLexerDELIMITER_SYMBOL {
			return true
		}
	}
	return false
}

func splitDelimiterModeSQL(stream *antlr.CommonTokenStream) ([]Statement, error) {
	var result []Statement
	delimiter := ";"
	tokens := stream.GetAllTokens()
	start := 0

	i := 0
	for i < len(tokens) {
		token := tokens[i]
		if token.GetChannel() == antlr.TokenDefaultChannel && token.GetTokenType() == parser.MySQLLexerDELIMITER_SYMBOL {
			newStart, delimiterStatement := extractDelimiterStatement(stream, i)
			var err error
			delimiter, err = ExtractDelimiter(delimiterStatement)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to extract delimiter from statement: %s", delimiterStatement)
			}
			start = newStart
			i = newStart
			continue
		}

		if delimiter == ";" && token.GetTokenType() == parser.MySQLLexerSEMICOLON_SYMBOL {
			result = append(result, newStatement(stream, tokens, start, i))
			i++
			start = i
			continue
		}

		if token.GetChannel() != antlr.TokenDefaultChannel {
			i++
			continue
		}

		if newStart, ok := tryMatchDelimiter(stream, i, delimiter); ok {
			s := newStatement(stream, tokens, start, newStart-1)
			// Use a single semicolon instead of the user defined delimiter.
			s.Text = stream.GetTextFromTokens(tokens[start], tokens[i-1]) + ";"
			s.Empty = isEmpty(tokens[start:i], parser.MySQLLexerSEMICOLON_SYMBOL)
			result = append(result, s)
			i = newStart
			start = newStart
			continue
		}

		i++
	}

	if eofPos := len(tokens) - 1; start < eofPos {
		result = append(result, trailingStatement(stream, tokens, start))
	}
	return result, nil
}

func tryMatchDelimiter(stream *antlr.CommonTokenStream, pos int, delimiter string) (int, bool) {
	matchPos := 0
	length := len(stream.GetAllTokens())
	for i := pos; i < length; i++ {
		text := stream.GetTextFromInterval(antlr.Interval{Start: i, Stop: i})
		for j := 0; j < len(text); j++ {
			if j+matchPos >= len(delimiter) || text[j] != delimiter[j+matchPos] {
				return 0, false
			}
			matchPos++
			if matchPos == len(delimiter) {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func extractDelimiterStatement(stream *antlr.CommonTokenStream, pos int) (int, string) {
	length := len(stream.GetAllTokens())
	for i := pos; i < length; i++ {
		if (stream.Get(i).GetTokenType() == parser.MySQLLexerWHITESPACE && stream.Get(i).GetText() == "\n") ||
			(stream.Get(i).GetTokenType() == antlr.TokenEOF) {
			return i + 1, stream.GetTextFromTokens(stream.Get(pos), stream.Get(i-1))
		}
	}
	return length, stream.GetTextFromTokens(stream.Get(pos), stream.Get(length-1))
}

type openParenthesis struct {
	tokenType int
	pos       int
}

var errUnbalancedBlock = errors.New("invalid statement: failed to split multiple statements")

func splitMySQLStatement(stream *antlr.CommonTokenStream) ([]Statement, error) {
	stream.Fill()
	tokens := stream.GetAllTokens()
	if hasDelimiterStatement(tokens) {
		return splitDelimiterModeSQL(stream)
	}

	var beginCaseStack, ifStack, loopStack, whileStack, repeatStack []*openParenthesis
	var semicolonStack []int

	for i, token := range tokens {
		switch token.GetTokenType() {
		case parser.MySQLParserBEGIN_SYMBOL:
			next := getDefaultChannelTokenType(tokens, i, 1)
			// BEGIN [WORK | TRANSACTION | DEFERRED | IMMEDIATE | EXCLUSIVE] starts a transaction.
			if next == parser.MySQLParserWORK_SYMBOL ||
				next == parser.MySQLParserSEMICOLON_SYMBOL ||
				next == parser.MySQLParserEOF ||
				isTransactionModifier(tokens, i) {
				continue
			}
			if getDefaultChannelTokenType(tokens, i, -1) == parser.MySQLParserXA_SYMBOL {
				continue
			}
			beginCaseStack = append(beginCaseStack, &openParenthesis{tokenType: token.GetTokenType(), pos: i})
		case parser.MySQLParserCASE_SYMBOL:
			if getDefaultChannelTokenType(tokens, i, -1) == parser.MySQLParserEND_SYMBOL {
				continue
			}
			beginCaseStack = append(beginCaseStack, &openParenthesis{tokenType: token.GetTokenType(), pos: i})
		case parser.MySQLParserIF_SYMBOL:
			if getDefaultChannelTokenType(tokens, i, -1) == parser.MySQLParserEND_SYMBOL {
				continue
			}
			// IF EXISTS and IF NOT EXISTS.
			next := getDefaultChannelTokenType(tokens, i, 1)
			if next == parser.MySQLParserEXISTS_SYMBOL || next == parser.MySQLParserNOT_SYMBOL {
				continue
			}
			ifStack = append(ifStack, &openParenthesis{tokenType: token.GetTokenType(), pos: i})
		case parser.MySQLParserLOOP_SYMBOL:
			if getDefaultChannelTokenType(tokens, i, -1) == parser.MySQLParserEND_SYMBOL {
				continue
			}
			loopStack = append(loopStack, &openParenthesis{tokenType: token.GetTokenType(), pos: i})
		case parser.MySQLParserWHILE_SYMBOL:
			if getDefaultChannelTokenType(tokens, i, -1) == parser.MySQLParserEND_SYMBOL {
				continue
			}
			whileStack = append(whileStack, &openParenthesis{tokenType: token.GetTokenType(), pos: i})
		case parser.MySQLParserREPEAT_SYMBOL:
			if getDefaultChannelTokenType(tokens, i, -1) == parser.MySQLParserUNTIL_SYMBOL {
				continue
			}
			repeatStack = append(repeatStack, &openParenthesis{tokenType: token.GetTokenType(), pos: i})
		case parser.MySQLParserEND_SYMBOL:
			if getDefaultChannelTokenType(tokens, i, -1) == parser.MySQLParserXA_SYMBOL {
				continue
			}
			switch getDefaultChannelTokenType(tokens, i, 1) {
			case parser.MySQLParserIF_SYMBOL:
				// IF(expr1,expr2,expr3) pushes an IF that is never closed, so the
				// outermost one is matched.
				if len(ifStack) == 0 {
					return nil, errUnbalancedBlock
				}
				semicolonStack = popSemicolonStack(semicolonStack, ifStack[0].pos)
				ifStack = ifStack[:len(ifStack)-1]
			case parser.MySQLParserLOOP_SYMBOL:
				if len(loopStack) == 0 {
					return nil, errUnbalancedBlock
				}
				semicolonStack = popSemicolonStack(semicolonStack, loopStack[len(loopStack)-1].pos)
				loopStack = loopStack[:len(loopStack)-1]
			case parser.MySQLParserWHILE_SYMBOL:
				if len(whileStack) == 0 {
					return nil, errUnbalancedBlock
				}
				semicolonStack = popSemicolonStack(semicolonStack, whileStack[len(whileStack)-1].pos)
				whileStack = whileStack[:len(whileStack)-1]
			case parser.MySQLParserREPEAT_SYMBOL:
				// Same as IF: REPEAT(str, count) is never closed.
				if len(repeatStack) == 0 {
					return nil, errUnbalancedBlock
				}
				semicolonStack = popSemicolonStack(semicolonStack, repeatStack[0].pos)
				repeatStack = repeatStack[:len(repeatStack)-1]
			default:
				// BEGIN ... END, CASE ... END and END CASE.
				if len(beginCaseStack) == 0 {
					return nil, errUnbalancedBlock
				}
				semicolonStack = popSemicolonStack(semicolonStack, beginCaseStack[len(beginCaseStack)-1].pos)
				beginCaseStack = beginCaseStack[:len(beginCaseStack)-1]
			}
		case parser.MySQLParserSEMICOLON_SYMBOL:
			semicolonStack = append(semicolonStack, i)
		}
	}

	var result []Statement
	start := 0
	for _, pos := range semicolonStack {
		result = append(result, newStatement(stream, tokens, start, pos))
		start = pos + 1
	}
	// The last statement may end with EOF instead of a semicolon.
	if eofPos := len(tokens) - 1; start < eofPos {
		result = append(result, trailingStatement(stream, tokens, start))
	}
	return result, nil
}

// isTransactionModifier reports whether the BEGIN at base is SQLite's
// BEGIN DEFERRED|IMMEDIATE|EXCLUSIVE [TRANSACTION] or BEGIN TRANSACTION.
func isTransactionModifier(tokens []antlr.Token, base int) bool {
	for i := base + 1; i < len(tokens); i++ {
		if tokens[i].GetChannel() != antlr.TokenDefaultChannel {
			continue
		}
		switch strings.ToUpper(tokens[i].GetText()) {
		case "DEFERRED", "IMMEDIATE", "EXCLUSIVE", "TRANSACTION":
			return true
		}
		return false
	}
	return false
}

func popSemicolonStack(stack []int, openParPos int) []int {
	if len(stack) == 0 {
		return stack
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] < openParPos {
			return stack[:i+1]
		}
	}
	return []int{}
}

func firstDefaultChannelTokenPosition(tokens []antlr.Token) *types.Position {
	for _, token := range tokens {
		if token.GetChannel() == antlr.TokenDefaultChannel {
			return &types.Position{
				Line:   int32(token.GetLine() - 1),
				Column: int32(token.GetColumn()),
			}
		}
	}
	return &types.Position{Line: 0, Column: 0}
}

func getDefaultChannelTokenType(tokens []antlr.Token, base int, offset int) int {
	current := base
	step := 1
	remaining := offset
	if offset < 0 {
		step = -1
		remaining = -offset
	}
	for remaining != 0 {
		current += step
		if current < 0 || current >= len(tokens) {
			return antlr.TokenEOF
		}
		if tokens[current].GetChannel() == antlr.TokenDefaultChannel {
			remaining--
		}
	}
	return tokens[current].GetTokenType()
}

func isEmpty(tokens []antlr.Token, semicolonType int) bool {
	for _, token := range tokens {
		if token.GetChannel() == antlr.TokenDefaultChannel &&
			token.GetTokenType() != semicolonType &&
			token.GetTokenType() != parser.MySQLParserEOF {
			return false
		}
	}
	return true
}
