// Package render turns sandbox outcomes, room cards and the schema into HTML for
// the web page and into plain text for terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// Texts shown to the learner.
const (
	ErrorPrefix      = "Error: "
	ResetMessage     = "La base de datos ha sido restablecida."
	NoRoomsMessage   = "No hay habitaciones en la BBDD."
	NoSensorsMessage = "No hay sensores en esta habitación."
	NoTablesMessage  = "No hay tablas en la base de datos."
	TableLabel       = "Tabla: "
	PrimaryKeyLabel  = "PK"
)

func schemaTables(schema *types.DatabaseSchemaMetadata) []*types.TableMetadata {
	if schema == nil {
		return nil
	}
	var tables []*types.TableMetadata
	for _, s := range schema.Schemas {
		tables = append(tables, s.Tables...)
	}
	return tables
}

// columnLine is "name (TYPE)", with the primary key marked.
func columnLine(table *types.TableMetadata, col *types.ColumnMetadata) string {
	line := fmt.Sprintf("%s (%s)", col.Name, col.Type)
	if table.IsPrimaryKeyColumn(col.Name) {
		line += " " + PrimaryKeyLabel
	}
	return line
}

func foreignKeyLine(fk *types.ForeignKeyMetadata) string {
	return fmt.Sprintf("FK (%s) → %s(%s)",
		strings.Join(fk.Columns, ", "), fk.ReferencedTable, strings.Join(fk.ReferencedColumns, ", "))
}
