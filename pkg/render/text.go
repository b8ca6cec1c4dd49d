package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/nsxbet/sql-sandbox/pkg/hint"
	"github.com/nsxbet/sql-sandbox/pkg/sandbox"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// MaxCellWidth bounds the width of a terminal table cell.
const MaxCellWidth = 40

// StripMarkup turns hint markup into plain text.
func StripMarkup(s string) string {
	return hint.PlainText(s)
}

// ResultText renders the outcome of a script for a terminal: the result
// tables, or the success message, or the engine error followed by the hint.
func ResultText(outcome *sandbox.Outcome) string {
	if outcome == nil {
		return ""
	}
	var b strings.Builder
	if outcome.Failed != nil {
		b.WriteString(ErrorPrefix + outcome.Failed.Err + "\n")
		if outcome.Failed.Hint.Matched {
			b.WriteString(StripMarkup(outcome.Failed.Hint.Text) + "\n")
		}
		return b.String()
	}
	tables := outcome.Tables()
	if len(tables) == 0 {
		return sandbox.SuccessMessage + "\n"
	}
	for i, result := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		writeTable(&b, result.Columns, result.Rows)
	}
	return b.String()
}

func writeTable(b *strings.Builder, columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = cellWidth(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], cellWidth(cell))
		}
	}

	separator := func() {
		b.WriteString("+")
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w+2) + "+")
		}
		b.WriteString("\n")
	}
	line := func(cells []string) {
		b.WriteString("|")
		for i, cell := range cells {
			b.WriteString(" " + runewidth.FillRight(truncate(cell, MaxCellWidth), widths[i]) + " |")
		}
		b.WriteString("\n")
	}

	separator()
	line(columns)
	separator()
	for _, row := range rows {
		line(row)
	}
	separator()
	fmt.Fprintf(b, "(%d %s)\n", len(rows), plural(len(rows), "fila", "filas"))
}

func cellWidth(s string) int {
	return min(runewidth.StringWidth(singleLine(s)), MaxCellWidth)
}

func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(s)
}

func truncate(value string, width int) string {
	value = singleLine(value)
	if runewidth.StringWidth(value) <= width {
		return value
	}
	return runewidth.Truncate(value, width, "…")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// RoomsText renders the room cards for a terminal.
func RoomsText(rooms []sandbox.Room, err error) string {
	if err != nil {
		return ErrorPrefix + err.Error() + "\n"
	}
	if len(rooms) == 0 {
		return NoRoomsMessage + "\n"
	}
	var b strings.Builder
	for _, room := range rooms {
		b.WriteString(room.Name + "\n")
		if len(room.Sensors) == 0 {
			b.WriteString("  " + NoSensorsMessage + "\n")
			continue
		}
		for _, sensor := range room.Sensors {
			fmt.Fprintf(&b, "  - %s (%s): %s\n", sensor.Name, sensor.Kind, sensor.State)
		}
	}
	return b.String()
}

// SchemaText renders the tables and their columns for a terminal.
func SchemaText(schema *types.DatabaseSchemaMetadata, err error) string {
	if err != nil {
		return ErrorPrefix + err.Error() + "\n"
	}
	tables := schemaTables(schema)
	if len(tables) == 0 {
		return NoTablesMessage + "\n"
	}
	var b strings.Builder
	for _, table := range tables {
		b.WriteString(TableLabel + table.Name + "\n")
		for _, col := range table.Columns {
			b.WriteString(" - " + columnLine(table, col) + "\n")
		}
		for _, fk := range table.ForeignKeys {
			b.WriteString(" - " + foreignKeyLine(fk) + "\n")
		}
	}
	return b.String()
}
