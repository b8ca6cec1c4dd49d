package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/pkg/errors"

	"github.com/nsxbet/sql-sandbox/pkg/sandbox"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type resultData struct {
	Tables  []*sandbox.StatementResult
	Notice  string
	IsError bool
	// Hint is markup built by the hint package from escaped captures.
	Hint template.HTML
}

type roomsData struct {
	Rooms     []sandbox.Room
	Err       string
	Empty     string
	NoSensors string
}

type schemaTable struct {
	Name  string
	Lines []string
}

type schemaData struct {
	Tables []schemaTable
	Err    string
	Empty  string
	Label  string
}

// Page is the state shown by the editor page.
type Page struct {
	SQL     string
	Outcome *sandbox.Outcome
	// Notice is shown instead of an outcome, e.g. ResetMessage.
	Notice    string
	Rooms     []sandbox.Room
	RoomsErr  error
	Schema    *types.DatabaseSchemaMetadata
	SchemaErr error
}

type pageData struct {
	SQL    string
	Result resultData
	Rooms  roomsData
	Schema schemaData
}

// WritePage renders the whole editor page.
func WritePage(w io.Writer, p Page) error {
	result := newResultData(p.Outcome)
	if p.Outcome == nil {
		result.Notice = p.Notice
	}
	data := pageData{
		SQL:    p.SQL,
		Result: result,
		Rooms:  newRoomsData(p.Rooms, p.RoomsErr),
		Schema: newSchemaData(p.Schema, p.SchemaErr),
	}
	return errors.Wrap(templates.ExecuteTemplate(w, "page", data), "failed to render page")
}

// ResultHTML renders the outcome of a script: its result tables, the success
// message, or the engine error with the hint below it.
func ResultHTML(outcome *sandbox.Outcome) (template.HTML, error) {
	return execute("result", newResultData(outcome))
}

// RoomsHTML renders the room cards.
func RoomsHTML(rooms []sandbox.Room, err error) (template.HTML, error) {
	return execute("rooms", newRoomsData(rooms, err))
}

// SchemaHTML renders the tables and their columns.
func SchemaHTML(schema *types.DatabaseSchemaMetadata, err error) (template.HTML, error) {
	return execute("schema", newSchemaData(schema, err))
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", name)
	}
	return template.HTML(buf.String()), nil
}

func newResultData(outcome *sandbox.Outcome) resultData {
	if outcome == nil {
		return resultData{}
	}
	if failed := outcome.Failed; failed != nil {
		data := resultData{Notice: ErrorPrefix + failed.Err, IsError: true}
		if failed.Hint.Matched {
			data.Hint = template.HTML(failed.Hint.Text)
		}
		return data
	}
	if tables := outcome.Tables(); len(tables) > 0 {
		return resultData{Tables: tables}
	}
	return resultData{Notice: sandbox.SuccessMessage}
}

func newRoomsData(rooms []sandbox.Room, err error) roomsData {
	data := roomsData{Rooms: rooms, Empty: NoRoomsMessage, NoSensors: NoSensorsMessage}
	if err != nil {
		data.Err = ErrorPrefix + err.Error()
	}
	return data
}

func newSchemaData(schema *types.DatabaseSchemaMetadata, err error) schemaData {
	data := schemaData{Empty: NoTablesMessage, Label: TableLabel}
	if err != nil {
		data.Err = ErrorPrefix + err.Error()
		return data
	}
	for _, table := range schemaTables(schema) {
		t := schemaTable{Name: table.Name}
		for _, col := range table.Columns {
			t.Lines = append(t.Lines, columnLine(table, col))
		}
		for _, fk := range table.ForeignKeys {
			t.Lines = append(t.Lines, foreignKeyLine(fk))
		}
		data.Tables = append(data.Tables, t)
	}
	return data
}
