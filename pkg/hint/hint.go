// Package hint maps SQL statements written for another dialect (mostly MySQL) to a
// short explanatory hint about the SQLite equivalent.
//
// A Set is an ordered, immutable list of rules. Find evaluates the rules in
// declaration order and returns the first match; later rules are never consulted
// once one has matched. Matching is done on the statement text only, never on the
// error text reported by the engine.
//
//	res := hint.FindHint("ALTER TABLE sensores DROP COLUMN tipo;")
//	if res.Matched {
//	    fmt.Println(res.Text)
//	}
//
// A Set holds no mutable state and is safe for concurrent use.
package hint

import (
	"html"
	"regexp"
	"strings"
)

// Prefix is prepended to every hint text.
const Prefix = "<strong>Pista:</strong> "

const (
	// TableNameTemplateToken is the token for the matched table name.
	TableNameTemplateToken = "{{table}}"
	// IndexNameTemplateToken is the token for the matched index name.
	IndexNameTemplateToken = "{{index}}"
	// TypeNameTemplateToken is the token for the matched column type.
	TypeNameTemplateToken = "{{type}}"
)

// Code identifies a hint rule in advices. Codes live in the 21001 ~ 21099 range.
type Code int32

// Rule is one entry of the catalog: a predicate over the raw statement text and
// the hint shown when it holds.
type Rule struct {
	// Type is the stable identifier, e.g. "dialect.create-database".
	Type  string
	Title string
	Code  Code
	// Pattern is matched against the whole statement. Named groups feed the
	// {{name}} tokens of Template.
	Pattern  *regexp.Regexp
	Template string
}

// Result is the outcome of a lookup. When Matched is false every other field is
// zero.
type Result struct {
	Matched bool   `json:"matched"            yaml:"matched"`
	Text    string `json:"hintText,omitempty" yaml:"hintText,omitempty"`
	Rule    string `json:"rule,omitempty"     yaml:"rule,omitempty"`
	Title   string `json:"title,omitempty"    yaml:"title,omitempty"`
	Code    Code   `json:"code,omitempty"     yaml:"code,omitempty"`
}

// Set is an ordered rule catalog.
type Set struct {
	rules []Rule
}

// NewSet returns a Set evaluating rules in the given order.
func NewSet(rules ...Rule) *Set {
	list := make([]Rule, len(rules))
	copy(list, rules)
	return &Set{rules: list}
}

// Rules returns a copy of the rules in evaluation order.
func (s *Set) Rules() []Rule {
	list := make([]Rule, len(s.rules))
	copy(list, s.rules)
	return list
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	return len(s.rules)
}

// Without returns a new Set without the rules of the given types. The relative
// order of the remaining rules is preserved.
func (s *Set) Without(ruleTypes ...string) *Set {
	drop := make(map[string]bool, len(ruleTypes))
	for _, t := range ruleTypes {
		drop[t] = true
	}
	var list []Rule
	for _, rule := range s.rules {
		if drop[rule.Type] {
			continue
		}
		list = append(list, rule)
	}
	return &Set{rules: list}
}

// Find returns the hint of the first rule matching statement.
func (s *Set) Find(statement string) Result {
	if strings.TrimSpace(statement) == "" {
		return Result{}
	}
	for i := range s.rules {
		rule := &s.rules[i]
		match := rule.Pattern.FindStringSubmatch(statement)
		if match == nil {
			continue
		}
		return Result{
			Matched: true,
			Text:    Prefix + expand(rule.Template, rule.Pattern.SubexpNames(), match),
			Rule:    rule.Type,
			Title:   rule.Title,
			Code:    rule.Code,
		}
	}
	return Result{}
}

// expand replaces {{name}} tokens with the first non-empty capture of the
// group called name. Captures come from learner input and are escaped because
// the hint text carries markup.
func expand(template string, names []string, match []string) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	values := make(map[string]string)
	for i, name := range names {
		if name == "" || match[i] == "" {
			continue
		}
		if _, ok := values[name]; ok {
			continue
		}
		values[name] = html.EscapeString(unquoteIdentifier(match[i]))
	}
	var pairs []string
	for name, value := range values {
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// unquoteIdentifier strips MySQL backticks, ANSI double quotes and brackets.
func unquoteIdentifier(ident string) string {
	if len(ident) < 2 {
		return ident
	}
	switch {
	case ident[0] == '`' && ident[len(ident)-1] == '`',
		ident[0] == '"' && ident[len(ident)-1] == '"',
		ident[0] == '[' && ident[len(ident)-1] == ']':
		return ident[1 : len(ident)-1]
	}
	return ident
}

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// PlainText removes the inline markup of a hint text and unescapes entities.
func PlainText(text string) string {
	return html.UnescapeString(tagRegex.ReplaceAllString(text, ""))
}

// PlainText returns the hint text without markup.
func (r Result) PlainText() string {
	return PlainText(r.Text)
}

// FindHint looks statement up in the default catalog.
func FindHint(statement string) Result {
	return defaultCatalog.Find(statement)
}

// Catalog returns the default rule catalog.
func Catalog() *Set {
	return defaultCatalog
}
