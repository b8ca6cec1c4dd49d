package sandbox

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

//go:embed seed.toml
var defaultSeed []byte

// Seed is the initial content of a session: the schema DDL and the rooms with
// their sensors.
type Seed struct {
	Schema string     `toml:"schema"`
	Rooms  []SeedRoom `toml:"rooms"`
}

// SeedRoom is a row of habitaciones.
type SeedRoom struct {
	Name    string       `toml:"name"`
	Sensors []SeedSensor `toml:"sensors"`
}

// SeedSensor is a row of sensores.
type SeedSensor struct {
	Name  string `toml:"name"`
	Kind  string `toml:"kind"`
	State string `toml:"state"`
}

// DefaultSeed returns the embedded seed.
func DefaultSeed() *Seed {
	seed, err := ParseSeed(defaultSeed)
	if err != nil {
		panic(errors.Wrap(err, "embedded seed is invalid"))
	}
	return seed
}

// LoadSeed reads a seed file. An empty path loads the embedded seed.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read seed %s", path)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid seed %s", path)
	}
	return seed, nil
}

// ParseSeed decodes a TOML seed. Unknown keys are rejected. A seed without a
// schema gets the default one.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode seed")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown seed key %q", undecoded[0].String())
	}
	if !meta.IsDefined("schema") || strings.TrimSpace(seed.Schema) == "" {
		seed.Schema = DefaultSchema
	}
	for i, room := range seed.Rooms {
		if strings.TrimSpace(room.Name) == "" {
			return nil, errors.Errorf("room %d has no name", i+1)
		}
		for j, sensor := range room.Sensors {
			if sensor.Name == "" || sensor.Kind == "" || sensor.State == "" {
				return nil, errors.Errorf("sensor %d of room %q needs name, kind and state", j+1, room.Name)
			}
		}
	}
	return &seed, nil
}

// DefaultSchema is used by seeds that do not declare one.
const DefaultSchema = `
CREATE TABLE habitaciones (id INTEGER PRIMARY KEY AUTOINCREMENT, nombre TEXT NOT NULL);
CREATE TABLE sensores (id INTEGER PRIMARY KEY AUTOINCREMENT, nombre TEXT NOT NULL, tipo TEXT NOT NULL, estado TEXT NOT NULL, habitacion_id INTEGER, FOREIGN KEY(habitacion_id) REFERENCES habitaciones(id));
`

// apply replaces whatever the database holds with the seed, in a single
// transaction.
func (seed *Seed) apply(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin seed transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err := dropAll(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, seed.Schema); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}

	for _, room := range seed.Rooms {
		res, err := tx.ExecContext(ctx, "INSERT INTO habitaciones (nombre) VALUES (?)", room.Name)
		if err != nil {
			return errors.Wrapf(err, "failed to insert room %q", room.Name)
		}
		roomID, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "failed to read room id")
		}
		for _, sensor := range room.Sensors {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO sensores (nombre, tipo, estado, habitacion_id) VALUES (?, ?, ?, ?)",
				sensor.Name, sensor.Kind, sensor.State, roomID,
			); err != nil {
				return errors.Wrapf(err, "failed to insert sensor %q", sensor.Name)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit seed")
	}
	slog.Debug("Seed applied", "rooms", len(seed.Rooms))
	return nil
}

// dropAll removes the user triggers, views and tables. Only file databases
// hold anything at this point. Foreign keys are checked at commit, once the
// referencing tables are gone as well.
func dropAll(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		return errors.Wrap(err, "failed to defer foreign keys")
	}
	rows, err := tx.QueryContext(ctx, `
SELECT type, name FROM sqlite_master
WHERE type IN ('trigger', 'view', 'table') AND name NOT LIKE 'sqlite_%'
ORDER BY CASE type WHEN 'trigger' THEN 0 WHEN 'view' THEN 1 ELSE 2 END, rowid DESC`)
	if err != nil {
		return errors.Wrap(err, "failed to list existing objects")
	}
	var drops []string
	for rows.Next() {
		var kind, name string
		if err := rows.Scan(&kind, &name); err != nil {
			_ = rows.Close()
			return errors.Wrap(err, "failed to list existing objects")
		}
		drops = append(drops, "DROP "+strings.ToUpper(kind)+" IF EXISTS "+quoteIdentifier(name))
	}
	if err := rows.Close(); err != nil {
		return errors.Wrap(err, "failed to list existing objects")
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "failed to list existing objects")
	}

	for _, stmt := range drops {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to run %s", stmt)
		}
	}
	if len(drops) > 0 {
		slog.Debug("Existing objects dropped", "count", len(drops))
	}
	return nil
}
