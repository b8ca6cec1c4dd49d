package sandbox

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// Room is a habitaciones row with its sensors.
type Room struct {
	ID      int64    `json:"id"      yaml:"id"`
	Name    string   `json:"name"    yaml:"name"`
	Sensors []Sensor `json:"sensors" yaml:"sensors"`
}

// Sensor is a sensores row.
type Sensor struct {
	Name  string `json:"name"  yaml:"name"`
	Kind  string `json:"kind"  yaml:"kind"`
	State string `json:"state" yaml:"state"`
}

// Rooms returns the rooms ordered by id, each with its sensors ordered by id.
// The learner may have changed or dropped the tables, in which case the engine
// error is returned.
func (s *Session) Rooms(ctx context.Context) ([]Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT id, nombre FROM habitaciones ORDER BY id")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rooms")
	}
	var rooms []Room
	for rows.Next() {
		var id int64
		var name any
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan room")
		}
		rooms = append(rooms, Room{ID: id, Name: FormatValue(name)})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rooms")
	}

	for i := range rooms {
		sensors, err := roomSensors(ctx, db, rooms[i].ID)
		if err != nil {
			return nil, err
		}
		rooms[i].Sensors = sensors
	}
	return rooms, nil
}

func roomSensors(ctx context.Context, db *sql.DB, roomID int64) ([]Sensor, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT nombre, tipo, estado FROM sensores WHERE habitacion_id = ? ORDER BY id", roomID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sensors")
	}
	defer rows.Close()

	var sensors []Sensor
	for rows.Next() {
		var name, kind, state any
		if err := rows.Scan(&name, &kind, &state); err != nil {
			return nil, errors.Wrap(err, "failed to scan sensor")
		}
		sensors = append(sensors, Sensor{
			Name:  FormatValue(name),
			Kind:  FormatValue(kind),
			State: FormatValue(state),
		})
	}
	return sensors, errors.Wrap(rows.Err(), "failed to list sensors")
}

// Schema describes the user tables in creation order: columns from
// PRAGMA table_info, the primary key as a PRIMARY index and the foreign keys.
func (s *Session) Schema(ctx context.Context) (*types.DatabaseSchemaMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	names, err := tableNames(ctx, db)
	if err != nil {
		return nil, err
	}

	schema := &types.SchemaMetadata{Name: "main", Tables: []*types.TableMetadata{}}
	for _, name := range names {
		table, err := tableMetadata(ctx, db, name)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, table)
	}
	return &types.DatabaseSchemaMetadata{
		Name:    "main",
		Schemas: []*types.SchemaMetadata{schema},
	}, nil
}

func tableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan table name")
		}
		names = append(names, name)
	}
	return names, errors.Wrap(rows.Err(), "failed to list tables")
}

func tableMetadata(ctx context.Context, db *sql.DB, name string) (*types.TableMetadata, error) {
	table := &types.TableMetadata{Name: name}

	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quoteIdentifier(name)+")")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read columns of %s", name)
	}
	type pkColumn struct {
		name string
		seq  int
	}
	var pk []pkColumn
	for rows.Next() {
		var (
			cid      int32
			colName  string
			colType  string
			notNull  bool
			defValue sql.NullString
			pkSeq    int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defValue, &pkSeq); err != nil {
			rows.Close()
			return nil, errors.Wrapf(err, "failed to scan column of %s", name)
		}
		table.Columns = append(table.Columns, &types.ColumnMetadata{
			Name:          colName,
			Position:      cid + 1,
			Type:          colType,
			Nullable:      !notNull,
			HasDefault:    defValue.Valid,
			DefaultString: defValue.String,
		})
		if pkSeq > 0 {
			pk = append(pk, pkColumn{name: colName, seq: pkSeq})
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read columns of %s", name)
	}

	if len(pk) > 0 {
		expressions := make([]string, len(pk))
		for _, col := range pk {
			if col.seq <= len(pk) {
				expressions[col.seq-1] = col.name
			}
		}
		table.Indexes = append(table.Indexes, &types.IndexMetadata{
			Name:        "PRIMARY",
			Expressions: expressions,
			Unique:      true,
			Primary:     true,
		})
	}

	fks, err := foreignKeys(ctx, db, name)
	if err != nil {
		return nil, err
	}
	table.ForeignKeys = fks
	return table, nil
}

func foreignKeys(ctx context.Context, db *sql.DB, table string) ([]*types.ForeignKeyMetadata, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteIdentifier(table)+")")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read foreign keys of %s", table)
	}
	defer rows.Close()

	byID := make(map[int]*types.ForeignKeyMetadata)
	var list []*types.ForeignKeyMetadata
	for rows.Next() {
		var (
			id, seq         int
			refTable, from  string
			to              sql.NullString
			onUpdate, onDel string
			match           string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDel, &match); err != nil {
			return nil, errors.Wrapf(err, "failed to scan foreign key of %s", table)
		}
		fk, ok := byID[id]
		if !ok {
			fk = &types.ForeignKeyMetadata{ReferencedTable: refTable}
			byID[id] = fk
			list = append(list, fk)
		}
		fk.Columns = append(fk.Columns, from)
		fk.ReferencedColumns = append(fk.ReferencedColumns, to.String)
	}
	return list, errors.Wrapf(rows.Err(), "failed to read foreign keys of %s", table)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
