package types

import (
	"encoding/json"
	"strings"
)

// Engine represents the database engine type
type Engine int32

const (
	Engine_ENGINE_UNSPECIFIED Engine = 0
	Engine_MYSQL              Engine = 1
	Engine_POSTGRES           Engine = 2
	Engine_SQLITE             Engine = 5
	Engine_MARIADB            Engine = 12
)

func (e Engine) String() string {
	switch e {
	case Engine_ENGINE_UNSPECIFIED:
		return "ENGINE_UNSPECIFIED"
	case Engine_MYSQL:
		return "MYSQL"
	case Engine_POSTGRES:
		return "POSTGRES"
	case Engine_SQLITE:
		return "SQLITE"
	case Engine_MARIADB:
		return "MARIADB"
	default:
		return "UNKNOWN"
	}
}

// ParseEngine converts an engine name to an Engine. Unknown names map to
// Engine_ENGINE_UNSPECIFIED.
func ParseEngine(s string) Engine {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MYSQL":
		return Engine_MYSQL
	case "POSTGRES", "POSTGRESQL":
		return Engine_POSTGRES
	case "SQLITE", "SQLITE3":
		return Engine_SQLITE
	case "MARIADB":
		return Engine_MARIADB
	default:
		return Engine_ENGINE_UNSPECIFIED
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for Engine
func (e *Engine) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*e = ParseEngine(s)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Engine
func (e *Engine) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = ParseEngine(s)
	return nil
}

// MarshalJSON implements json.Marshaler for Engine
func (e Engine) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// SQLReviewRuleLevel represents the severity level of a rule
type SQLReviewRuleLevel int32

const (
	SQLReviewRuleLevel_LEVEL_UNSPECIFIED SQLReviewRuleLevel = 0
	SQLReviewRuleLevel_ERROR             SQLReviewRuleLevel = 1
	SQLReviewRuleLevel_WARNING           SQLReviewRuleLevel = 2
	SQLReviewRuleLevel_DISABLED          SQLReviewRuleLevel = 3
)

func (l SQLReviewRuleLevel) String() string {
	switch l {
	case SQLReviewRuleLevel_ERROR:
		return "ERROR"
	case SQLReviewRuleLevel_WARNING:
		return "WARNING"
	case SQLReviewRuleLevel_DISABLED:
		return "DISABLED"
	default:
		return "LEVEL_UNSPECIFIED"
	}
}

func parseRuleLevel(s string) SQLReviewRuleLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SQLReviewRuleLevel_ERROR
	case "WARNING":
		return SQLReviewRuleLevel_WARNING
	case "DISABLED":
		return SQLReviewRuleLevel_DISABLED
	default:
		return SQLReviewRuleLevel_LEVEL_UNSPECIFIED
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for SQLReviewRuleLevel
func (l *SQLReviewRuleLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*l = parseRuleLevel(s)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for SQLReviewRuleLevel
func (l *SQLReviewRuleLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = parseRuleLevel(s)
	return nil
}

// MarshalJSON implements json.Marshaler for SQLReviewRuleLevel
func (l SQLReviewRuleLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// Advice_Status represents the status of an advice
type Advice_Status int32

const (
	Advice_STATUS_UNSPECIFIED Advice_Status = 0
	Advice_SUCCESS            Advice_Status = 1
	Advice_WARNING            Advice_Status = 2
	Advice_ERROR              Advice_Status = 3
)

func (s Advice_Status) String() string {
	switch s {
	case Advice_SUCCESS:
		return "SUCCESS"
	case Advice_WARNING:
		return "WARNING"
	case Advice_ERROR:
		return "ERROR"
	default:
		return "STATUS_UNSPECIFIED"
	}
}

// MarshalJSON implements json.Marshaler for Advice_Status
func (s Advice_Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// MarshalYAML implements yaml.Marshaler for Advice_Status
func (s Advice_Status) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func parseAdviceStatus(s string) Advice_Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS":
		return Advice_SUCCESS
	case "WARNING":
		return Advice_WARNING
	case "ERROR":
		return Advice_ERROR
	default:
		return Advice_STATUS_UNSPECIFIED
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for Advice_Status
func (s *Advice_Status) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	*s = parseAdviceStatus(str)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Advice_Status
func (s *Advice_Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = parseAdviceStatus(str)
	return nil
}

// SQLReviewRule represents a SQL review rule
type SQLReviewRule struct {
	Type    string                 `json:"type"              yaml:"type"`
	Level   SQLReviewRuleLevel     `json:"level"             yaml:"level"`
	Payload map[string]interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
	Engine  Engine                 `json:"engine"            yaml:"engine"`
	Comment string                 `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Advice represents a piece of advice from the advisor
type Advice struct {
	Status        Advice_Status `json:"status"        yaml:"status"`
	Code          int32         `json:"code"          yaml:"code"`
	Title         string        `json:"title"         yaml:"title"`
	Content       string        `json:"content"       yaml:"content"`
	StartPosition *Position     `json:"startPosition" yaml:"startPosition,omitempty"`
}

// Position represents a position in the source code
type Position struct {
	Line   int32 `json:"line"   yaml:"line"`
	Column int32 `json:"column" yaml:"column"`
}

// DatabaseSchemaMetadata represents database schema metadata
type DatabaseSchemaMetadata struct {
	Name    string            `json:"name"    yaml:"name"`
	Schemas []*SchemaMetadata `json:"schemas" yaml:"schemas"`
}

// SchemaMetadata represents schema metadata
type SchemaMetadata struct {
	Name   string           `json:"name"   yaml:"name"`
	Tables []*TableMetadata `json:"tables" yaml:"tables"`
}

// TableMetadata represents table metadata
type TableMetadata struct {
	Name        string                `json:"name"                  yaml:"name"`
	Columns     []*ColumnMetadata     `json:"columns"               yaml:"columns"`
	Indexes     []*IndexMetadata      `json:"indexes,omitempty"     yaml:"indexes,omitempty"`
	ForeignKeys []*ForeignKeyMetadata `json:"foreignKeys,omitempty" yaml:"foreignKeys,omitempty"`
	RowCount    int64                 `json:"rowCount"              yaml:"rowCount"`
}

// PrimaryKey returns the PRIMARY index of the table, or nil.
func (t *TableMetadata) PrimaryKey() *IndexMetadata {
	for _, index := range t.Indexes {
		if index.Primary {
			return index
		}
	}
	return nil
}

// IsPrimaryKeyColumn reports whether column is part of the table's primary key.
func (t *TableMetadata) IsPrimaryKeyColumn(column string) bool {
	pk := t.PrimaryKey()
	if pk == nil {
		return false
	}
	for _, expr := range pk.Expressions {
		if strings.EqualFold(expr, column) {
			return true
		}
	}
	return false
}

// ColumnMetadata represents column metadata
type ColumnMetadata struct {
	Name          string `json:"name"          yaml:"name"`
	Position      int32  `json:"position"      yaml:"position"`
	HasDefault    bool   `json:"hasDefault"    yaml:"hasDefault"`
	DefaultString string `json:"defaultString" yaml:"defaultString,omitempty"`
	Nullable      bool   `json:"nullable"      yaml:"nullable"`
	Type          string `json:"type"          yaml:"type"`
}

// IndexMetadata represents index metadata
type IndexMetadata struct {
	Name        string   `json:"name"        yaml:"name"`
	Expressions []string `json:"expressions" yaml:"expressions"`
	Unique      bool     `json:"unique"      yaml:"unique"`
	Primary     bool     `json:"primary"     yaml:"primary"`
}

// ForeignKeyMetadata represents foreign key metadata
type ForeignKeyMetadata struct {
	Columns           []string `json:"columns"           yaml:"columns"`
	ReferencedTable   string   `json:"referencedTable"   yaml:"referencedTable"`
	ReferencedColumns []string `json:"referencedColumns" yaml:"referencedColumns"`
}
