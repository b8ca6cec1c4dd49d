package sandbox

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/sql-sandbox/pkg/hint"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

func openTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := Open(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func countRows(t *testing.T, s *Session, table string) string {
	t.Helper()
	out, err := s.Exec(context.Background(), "SELECT COUNT(*) FROM "+table)
	require.NoError(t, err)
	require.True(t, out.OK())
	return out.Statements[0].Rows[0][0]
}

func TestOpenSeedsRooms(t *testing.T) {
	s := openTestSession(t)
	require.True(t, s.Ready())
	require.NotNil(t, s.DB())

	rooms, err := s.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 4)
	require.Equal(t, Room{
		ID:   1,
		Name: "salon",
		Sensors: []Sensor{
			{Name: "Luz principal salón", Kind: "luz", State: "apagado"},
		},
	}, rooms[0])
	require.Equal(t, "baño", rooms[3].Name)
	require.Equal(t, "45%", rooms[3].Sensors[0].State)
}

func TestExecSelect(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), "SELECT * FROM habitaciones ORDER BY id;")
	require.NoError(t, err)
	require.True(t, out.OK())
	require.Len(t, out.Statements, 1)

	res := out.Statements[0]
	require.True(t, res.HasTable())
	require.Equal(t, []string{"id", "nombre"}, res.Columns)
	require.Equal(t, [][]string{{"1", "salon"}, {"2", "cocina"}, {"3", "dormitorio"}, {"4", "baño"}}, res.Rows)
	require.Equal(t, &types.Position{Line: 1, Column: 1}, res.Position)
}

func TestExecEmptyResultKeepsColumns(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), "SELECT nombre FROM habitaciones WHERE id = 99")
	require.NoError(t, err)
	res := out.Statements[0]
	require.Equal(t, []string{"nombre"}, res.Columns)
	require.Empty(t, res.Rows)
}

func TestExecSelectAfterComments(t *testing.T) {
	s := openTestSession(t)
	for _, script := range []string{
		"-- listar habitaciones\nSELECT nombre FROM habitaciones;",
		"/* x */ SELECT nombre FROM habitaciones;",
		"/* varias\n líneas */\n-- y otra\n  SELECT nombre FROM habitaciones;",
	} {
		out, err := s.Exec(context.Background(), script)
		require.NoError(t, err, script)
		require.Len(t, out.Tables(), 1, script)
		require.Equal(t, []string{"nombre"}, out.Statements[0].Columns, script)
		require.Len(t, out.Statements[0].Rows, 4, script)
	}

	out, err := s.Exec(context.Background(), "SELECT 1;\n-- segunda consulta\nSELECT nombre FROM habitaciones;")
	require.NoError(t, err)
	require.Len(t, out.Statements, 2)
	last := out.Statements[1]
	require.Equal(t, []string{"nombre"}, last.Columns)
	require.Len(t, last.Rows, 4)
	require.Len(t, out.Tables(), 2)
}

func TestExecValues(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), "SELECT NULL AS a, 1.5 AS b, x'6869' AS c, 7 AS d, 'ñ' AS e")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"NULL", "1.5", "hi", "7", "ñ"}}, out.Statements[0].Rows)
}

func TestExecModifications(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), `
INSERT INTO habitaciones (nombre) VALUES ('garaje');
UPDATE sensores SET estado = 'encendido' WHERE tipo = 'luz';
`)
	require.NoError(t, err)
	require.True(t, out.OK())
	require.Len(t, out.Statements, 2)
	require.False(t, out.Statements[0].HasTable())
	require.Equal(t, int64(1), out.Statements[0].RowsAffected)
	require.Equal(t, int64(2), out.Statements[1].RowsAffected)
	require.Empty(t, out.Tables())

	rooms, err := s.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 5)
	require.Equal(t, "garaje", rooms[4].Name)
	require.Empty(t, rooms[4].Sensors)
	require.Equal(t, "encendido", rooms[0].Sensors[0].State)
}

func TestExecStopsAtFirstError(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), "INSERT INTO habitaciones (nombre) VALUES ('garaje');\nCREATE DATABASE casa;\nINSERT INTO habitaciones (nombre) VALUES ('ático');")
	require.NoError(t, err)
	require.False(t, out.OK())
	require.Len(t, out.Statements, 2)

	failed := out.Failed
	require.Same(t, out.Statements[1], failed)
	require.True(t, failed.Failed())
	require.Contains(t, failed.Err, "syntax error")
	require.Equal(t, &types.Position{Line: 2, Column: 1}, failed.Position)
	require.True(t, failed.Hint.Matched)
	require.Equal(t, hint.RuleCreateDatabase, failed.Hint.Rule)

	// Statements before the failure stay applied.
	require.Equal(t, "5", countRows(t, s, "habitaciones"))
}

func TestExecErrorWithoutHint(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), "SELECT * FROM lecturas;")
	require.NoError(t, err)
	require.NotNil(t, out.Failed)
	require.Contains(t, out.Failed.Err, "no such table")
	require.Equal(t, hint.Result{}, out.Failed.Hint)
}

func TestExecForeignKeysEnforced(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), "INSERT INTO sensores (nombre, tipo, estado, habitacion_id) VALUES ('x', 'luz', 'apagado', 99);")
	require.NoError(t, err)
	require.NotNil(t, out.Failed)
	require.Contains(t, out.Failed.Err, "FOREIGN KEY constraint failed")
}

func TestExecTransaction(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), "BEGIN;\nDELETE FROM sensores;\nROLLBACK;")
	require.NoError(t, err)
	require.True(t, out.OK())
	require.Equal(t, "4", countRows(t, s, "sensores"))
}

func TestExecWithHints(t *testing.T) {
	s := openTestSession(t, WithHints(hint.Catalog().Without(hint.RuleCreateDatabase)))
	require.NotSame(t, hint.Catalog(), s.Hints())

	out, err := s.Exec(context.Background(), "CREATE DATABASE casa;")
	require.NoError(t, err)
	require.NotNil(t, out.Failed)
	require.False(t, out.Failed.Hint.Matched)
}

func TestExecEmptyScript(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), "  \n-- nada\n")
	require.NoError(t, err)
	require.True(t, out.OK())
	require.Empty(t, out.Statements)
}

func TestExecCancelled(t *testing.T) {
	s := openTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Exec(ctx, "SELECT 1;")
	require.ErrorIs(t, err, context.Canceled)
}

func TestReset(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), "DELETE FROM sensores; DROP TABLE sensores; CREATE TABLE lecturas (valor REAL);")
	require.NoError(t, err)
	require.True(t, out.OK())

	_, err = s.Rooms(context.Background())
	require.Error(t, err)

	require.NoError(t, s.Reset(context.Background()))
	require.True(t, s.Ready())

	rooms, err := s.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 4)
	for _, room := range rooms {
		require.Len(t, room.Sensors, 1)
	}

	schema, err := s.Schema(context.Background())
	require.NoError(t, err)
	require.Len(t, schema.Schemas[0].Tables, 2)
}

func TestClose(t *testing.T) {
	s, err := Open(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.False(t, s.Ready())
	require.Nil(t, s.DB())

	_, err = s.Exec(context.Background(), "SELECT 1")
	require.ErrorIs(t, err, ErrNotReady)
	_, err = s.Rooms(context.Background())
	require.ErrorIs(t, err, ErrNotReady)
	_, err = s.Schema(context.Background())
	require.ErrorIs(t, err, ErrNotReady)

	// Reset brings a closed session back.
	require.NoError(t, s.Reset(context.Background()))
	require.True(t, s.Ready())
	require.NoError(t, s.Close())
}

func TestOpenWithSeed(t *testing.T) {
	seed, err := LoadSeed(filepath.Join("testdata", "taller.toml"))
	require.NoError(t, err)
	s := openTestSession(t, WithSeed(seed))

	rooms, err := s.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, "taller", rooms[0].Name)
	require.Len(t, rooms[0].Sensors, 2)
	require.Equal(t, "Luz taller", rooms[0].Sensors[1].Name)
}

func TestFileDatabaseIsReseeded(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "sandbox.db") + "?_foreign_keys=on"
	ctx := context.Background()

	first, err := Open(ctx, WithDSN(dsn))
	require.NoError(t, err)
	out, err := first.Exec(ctx, `
INSERT INTO habitaciones (nombre) VALUES ('garaje');
CREATE TABLE lecturas (id INTEGER PRIMARY KEY, sensor_id INTEGER REFERENCES sensores(id), valor REAL);
INSERT INTO lecturas (sensor_id, valor) VALUES (1, 21.5);
CREATE VIEW luces AS SELECT nombre FROM sensores WHERE tipo = 'luz';
CREATE TRIGGER apagar AFTER DELETE ON habitaciones
BEGIN
  UPDATE sensores SET estado = 'apagado' WHERE habitacion_id = OLD.id;
END;`)
	require.NoError(t, err)
	require.True(t, out.OK())
	require.NoError(t, first.Close())

	// Opening the same file starts from the seed again.
	s := openTestSession(t, WithDSN(dsn))
	require.Equal(t, "4", countRows(t, s, "habitaciones"))
	schema, err := s.Schema(ctx)
	require.NoError(t, err)
	require.Len(t, schema.Schemas[0].Tables, 2)

	_, err = s.Exec(ctx, "INSERT INTO habitaciones (nombre) VALUES ('ático');")
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))
	require.Equal(t, "4", countRows(t, s, "habitaciones"))

	rooms, err := s.Rooms(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), rooms[0].ID)
}

func TestOpenWithBrokenSeed(t *testing.T) {
	_, err := Open(context.Background(), WithSeed(&Seed{Schema: "CREATE TABLA x;"}))
	require.Error(t, err)
}

func TestSchema(t *testing.T) {
	s := openTestSession(t)
	schema, err := s.Schema(context.Background())
	require.NoError(t, err)
	require.Len(t, schema.Schemas, 1)

	tables := schema.Schemas[0].Tables
	require.Len(t, tables, 2)
	require.Equal(t, "habitaciones", tables[0].Name)
	require.Equal(t, "sensores", tables[1].Name)

	sensores := tables[1]
	var columns []string
	for _, col := range sensores.Columns {
		columns = append(columns, col.Name+" "+col.Type)
	}
	require.Equal(t, []string{
		"id INTEGER",
		"nombre TEXT",
		"tipo TEXT",
		"estado TEXT",
		"habitacion_id INTEGER",
	}, columns)
	require.False(t, sensores.Columns[1].Nullable)
	require.True(t, sensores.Columns[4].Nullable)
	require.True(t, sensores.IsPrimaryKeyColumn("id"))
	require.False(t, sensores.IsPrimaryKeyColumn("nombre"))

	require.Len(t, sensores.ForeignKeys, 1)
	require.Equal(t, []string{"habitacion_id"}, sensores.ForeignKeys[0].Columns)
	require.Equal(t, "habitaciones", sensores.ForeignKeys[0].ReferencedTable)
	require.Equal(t, []string{"id"}, sensores.ForeignKeys[0].ReferencedColumns)
}

func TestSchemaFollowsChanges(t *testing.T) {
	s := openTestSession(t)
	_, err := s.Exec(context.Background(), `CREATE TABLE "lecturas del día" (sensor_id INTEGER, valor REAL DEFAULT 0, PRIMARY KEY (sensor_id, valor));`)
	require.NoError(t, err)

	schema, err := s.Schema(context.Background())
	require.NoError(t, err)
	tables := schema.Schemas[0].Tables
	require.Len(t, tables, 3)

	lecturas := tables[2]
	require.Equal(t, "lecturas del día", lecturas.Name)
	require.True(t, lecturas.Columns[1].HasDefault)
	require.Equal(t, "0", lecturas.Columns[1].DefaultString)
	require.Equal(t, []string{"sensor_id", "valor"}, lecturas.PrimaryKey().Expressions)
}

func TestSchemaEmpty(t *testing.T) {
	s := openTestSession(t)
	out, err := s.Exec(context.Background(), "DROP TABLE sensores; DROP TABLE habitaciones;")
	require.NoError(t, err)
	require.True(t, out.OK())

	schema, err := s.Schema(context.Background())
	require.NoError(t, err)
	require.Empty(t, schema.Schemas[0].Tables)

	_, err = s.Rooms(context.Background())
	require.Error(t, err)
}

func TestSessionConcurrentUse(t *testing.T) {
	s := openTestSession(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				out, err := s.Exec(context.Background(), "SELECT COUNT(*) FROM sensores;")
				if assert.NoError(t, err) {
					assert.Equal(t, "4", out.Statements[0].Rows[0][0])
				}
				_, err = s.Rooms(context.Background())
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
