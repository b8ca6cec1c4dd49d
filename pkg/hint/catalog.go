package hint

import "regexp"

// Rule types of the default catalog.
const (
	RuleCreateDatabase     = "dialect.create-database"
	RuleDropDatabase       = "dialect.drop-database"
	RuleUseDatabase        = "dialect.use-database"
	RuleTableEngine        = "dialect.table-engine"
	RuleCharsetCollation   = "dialect.charset-collation"
	RuleAutoIncrement      = "dialect.auto-increment"
	RuleUnsigned           = "dialect.unsigned"
	RuleAlterDropColumn    = "dialect.alter-drop-column"
	RuleAlterModifyColumn  = "dialect.alter-modify-column"
	RuleAlterAddPrimaryKey = "dialect.alter-add-primary-key"
	RuleAlterAddConstraint = "dialect.alter-add-constraint"
	RuleAlterAddForeignKey = "dialect.alter-add-foreign-key"
	RuleDropIndexOnTable   = "dialect.drop-index-on-table"
	RuleColumnType         = "dialect.column-type"
	RuleAlterRenameColumn  = "dialect.alter-rename-column"
	RuleShow               = "dialect.show"
	RuleDescribe           = "dialect.describe"
	RuleTruncate           = "dialect.truncate"
	RuleInsertIgnore       = "dialect.insert-ignore"
)

// Codes of the default catalog.
const (
	CreateDatabase     Code = 21001
	DropDatabase       Code = 21002
	UseDatabase        Code = 21003
	TableEngine        Code = 21004
	CharsetCollation   Code = 21005
	AutoIncrement      Code = 21006
	Unsigned           Code = 21007
	AlterDropColumn    Code = 21008
	AlterModifyColumn  Code = 21009
	AlterAddPrimaryKey Code = 21010
	AlterAddConstraint Code = 21011
	AlterAddForeignKey Code = 21012
	DropIndexOnTable   Code = 21013
	ColumnType         Code = 21014
	AlterRenameColumn  Code = 21015
	Show               Code = 21016
	Describe           Code = 21017
	Truncate           Code = 21018
	InsertIgnore       Code = 21019
)

const (
	// gap is any run of whitespace and comments.
	gap = `(?:\s+|--[^\n]*|#[^\n]*|/\*.*?\*/)*`
	// leading skips whitespace and comments before the first keyword.
	leading = `(?is)\A` + gap
	// ident matches a possibly quoted, possibly qualified identifier.
	ident = "(?:`[^`]+`|\"[^\"]+\"|\\[[^\\]]+\\]|[\\p{L}\\p{N}_$.]+)"

	alterTable = leading + `ALTER\s+TABLE\s+(?:IF\s+EXISTS\s+)?(?P<table>` + ident + `)\s+(?:[^;]*?,\s*)?`

	// columnTypes only fires where a column type is expected: after an
	// identifier that follows "(" or "," or ADD [COLUMN].
	columnTypes = `(?is)(?:[(,]|\bADD\s+(?:COLUMN\s+)?)` + gap + ident + `\s+` +
		`(?:(?P<type>ENUM|SET)\s*\(` +
		`|(?P<type>DATETIME|TIMESTAMP)\s*\(\s*\d` +
		`|(?P<type>MEDIUMINT|TINYINT|DOUBLE|DECIMAL|YEAR|TINYTEXT|MEDIUMTEXT|LONGTEXT|TINYBLOB|MEDIUMBLOB|LONGBLOB|GEOMETRY|POINT|JSONB|SERIAL|BIT)\b)`
)

var defaultCatalog = NewSet(DefaultRules()...)

// DefaultRules returns the rules of the default catalog in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Type:     RuleCreateDatabase,
			Title:    "CREATE DATABASE is not supported",
			Code:     CreateDatabase,
			Pattern:  regexp.MustCompile(leading + `CREATE\s+(?:DATABASE|SCHEMA)\b`),
			Template: "SQLite no usa <code>CREATE DATABASE</code>: la sesión trabaja sobre una única base de datos en memoria. Crea directamente las tablas con <code>CREATE TABLE</code>.",
		},
		{
			Type:     RuleDropDatabase,
			Title:    "DROP DATABASE is not supported",
			Code:     DropDatabase,
			Pattern:  regexp.MustCompile(leading + `DROP\s+(?:DATABASE|SCHEMA)\b`),
			Template: "SQLite no admite <code>DROP DATABASE</code>. Elimina cada tabla por separado con <code>DROP TABLE nombre_tabla;</code>.",
		},
		{
			Type:     RuleUseDatabase,
			Title:    "USE is not supported",
			Code:     UseDatabase,
			Pattern:  regexp.MustCompile(leading + `USE\s+` + ident),
			Template: "En SQLite no existe <code>USE</code>: no hay varias bases de datos entre las que cambiar. Trabaja directamente con las tablas, por ejemplo <code>SELECT * FROM habitaciones;</code>.",
		},
		{
			Type:     RuleTableEngine,
			Title:    "ENGINE table option is not supported",
			Code:     TableEngine,
			Pattern:  regexp.MustCompile(`(?is)\bENGINE\s*=`),
			Template: "La cláusula <code>ENGINE=...</code> es de MySQL; SQLite tiene un único motor de almacenamiento. Quita <code>ENGINE=...</code> de la sentencia.",
		},
		{
			Type:     RuleCharsetCollation,
			Title:    "CHARSET and COLLATE options are not supported",
			Code:     CharsetCollation,
			Pattern:  regexp.MustCompile(`(?is)\b(?:CHARSET|COLLATE)\s*=|\bCHARACTER\s+SET\b`),
			Template: "Las cláusulas <code>CHARSET=</code>, <code>CHARACTER SET</code> y <code>COLLATE=</code> no existen en SQLite, que guarda el texto siempre en UTF-8. Elimínalas; para comparar sin distinguir mayúsculas usa <code>COLLATE NOCASE</code> en la columna.",
		},
		{
			Type:     RuleAutoIncrement,
			Title:    "AUTO_INCREMENT is not supported",
			Code:     AutoIncrement,
			Pattern:  regexp.MustCompile(`(?i)AUTO_INCREMENT`),
			Template: "SQLite no reconoce <code>AUTO_INCREMENT</code>. Declara la columna como <code>id INTEGER PRIMARY KEY AUTOINCREMENT</code> (o simplemente <code>INTEGER PRIMARY KEY</code>).",
		},
		{
			Type:     RuleUnsigned,
			Title:    "UNSIGNED is not supported",
			Code:     Unsigned,
			Pattern:  regexp.MustCompile(`(?is)\bUNSIGNED\b`),
			Template: "SQLite no tiene el modificador <code>UNSIGNED</code>. Quítalo y, si necesitas impedir valores negativos, añade <code>CHECK (columna &gt;= 0)</code>.",
		},
		{
			Type:     RuleAlterDropColumn,
			Title:    "ALTER TABLE ... DROP COLUMN is not supported",
			Code:     AlterDropColumn,
			Pattern:  regexp.MustCompile(alterTable + `DROP\s+COLUMN\b`),
			Template: "SQLite no permite eliminar columnas de <code>{{table}}</code> directamente. Crea una tabla nueva sin esa columna, copia los datos con <code>INSERT INTO nueva (...) SELECT ... FROM {{table}};</code>, elimina <code>{{table}}</code> y renombra la nueva con <code>ALTER TABLE nueva RENAME TO {{table}};</code>.",
		},
		{
			Type:     RuleAlterModifyColumn,
			Title:    "ALTER TABLE ... MODIFY/CHANGE COLUMN is not supported",
			Code:     AlterModifyColumn,
			Pattern:  regexp.MustCompile(alterTable + `(?:(?:MODIFY|CHANGE)(?:\s+COLUMN)?|ALTER\s+COLUMN)\s+`),
			Template: "SQLite no permite cambiar la definición de una columna de <code>{{table}}</code> (<code>MODIFY</code> / <code>CHANGE</code>). Crea una tabla nueva con la definición correcta, copia los datos con <code>INSERT INTO nueva (...) SELECT ... FROM {{table}};</code>, elimina <code>{{table}}</code> y renombra la nueva tabla.",
		},
		{
			Type:     RuleAlterAddPrimaryKey,
			Title:    "ALTER TABLE ... ADD PRIMARY KEY is not supported",
			Code:     AlterAddPrimaryKey,
			Pattern:  regexp.MustCompile(alterTable + `ADD\s+PRIMARY\s+KEY\b`),
			Template: "En SQLite la clave primaria se declara al crear la tabla, por ejemplo <code>CREATE TABLE {{table}} (id INTEGER PRIMARY KEY, ...)</code>. No se puede añadir con <code>ALTER TABLE</code>: recrea la tabla y copia los datos.",
		},
		{
			Type:     RuleAlterAddConstraint,
			Title:    "ALTER TABLE ... ADD CONSTRAINT is not supported",
			Code:     AlterAddConstraint,
			Pattern:  regexp.MustCompile(alterTable + `ADD\s+CONSTRAINT\b`),
			Template: "SQLite no permite añadir restricciones a <code>{{table}}</code> con <code>ADD CONSTRAINT</code>. Decláralas dentro del <code>CREATE TABLE</code> (por ejemplo <code>CONSTRAINT nombre CHECK (...)</code>), recrea la tabla y copia los datos.",
		},
		{
			Type:     RuleAlterAddForeignKey,
			Title:    "ALTER TABLE ... ADD FOREIGN KEY is not supported",
			Code:     AlterAddForeignKey,
			Pattern:  regexp.MustCompile(alterTable + `ADD\s+FOREIGN\s+KEY\b`),
			Template: "En SQLite las claves foráneas se declaran al crear la tabla: <code>FOREIGN KEY (columna) REFERENCES otra_tabla(id)</code> dentro del <code>CREATE TABLE {{table}}</code>. Recrea la tabla y copia los datos.",
		},
		{
			Type:     RuleDropIndexOnTable,
			Title:    "DROP INDEX ... ON is not supported",
			Code:     DropIndexOnTable,
			Pattern:  regexp.MustCompile(leading + `DROP\s+INDEX\s+(?:IF\s+EXISTS\s+)?(?P<index>` + ident + `)\s+ON\s+(?P<table>` + ident + `)`),
			Template: "En SQLite el índice se elimina sin indicar la tabla: usa <code>DROP INDEX {{index}};</code> sin <code>ON {{table}}</code>.",
		},
		{
			Type:     RuleColumnType,
			Title:    "Column type is not a SQLite type",
			Code:     ColumnType,
			Pattern:  regexp.MustCompile(columnTypes),
			Template: "El tipo <code>{{type}}</code> no es un tipo de SQLite. SQLite trabaja con un conjunto reducido: <code>INTEGER</code>, <code>REAL</code>, <code>TEXT</code>, <code>BLOB</code> y <code>NUMERIC</code>. Usa <code>INTEGER</code> en lugar de <code>TINYINT</code>, <code>REAL</code> en lugar de <code>DOUBLE</code> o <code>DECIMAL</code>, <code>TEXT</code> para fechas y textos largos, y <code>TEXT CHECK (columna IN (...))</code> en lugar de <code>ENUM</code>.",
		},
		{
			Type:     RuleAlterRenameColumn,
			Title:    "ALTER TABLE ... RENAME COLUMN is not supported",
			Code:     AlterRenameColumn,
			Pattern:  regexp.MustCompile(alterTable + `RENAME\s+COLUMN\b`),
			Template: "Renombrar columnas de <code>{{table}}</code> directamente no está soportado. Crea una tabla nueva con el nombre correcto, copia los datos con <code>INSERT INTO nueva (...) SELECT ... FROM {{table}};</code>, elimina <code>{{table}}</code> y renombra la nueva tabla.",
		},
		{
			Type:     RuleShow,
			Title:    "SHOW is not supported",
			Code:     Show,
			Pattern:  regexp.MustCompile(leading + `SHOW\s+(?:FULL\s+)?(?:TABLES|DATABASES|SCHEMAS|COLUMNS|FIELDS|INDEX(?:ES)?|KEYS|CREATE\s+TABLE)\b`),
			Template: "SQLite no tiene sentencias <code>SHOW</code>. Consulta el catálogo con <code>SELECT name FROM sqlite_master WHERE type = 'table';</code> o las columnas con <code>PRAGMA table_info(nombre_tabla);</code>.",
		},
		{
			Type:     RuleDescribe,
			Title:    "DESCRIBE is not supported",
			Code:     Describe,
			Pattern:  regexp.MustCompile(leading + `(?:DESCRIBE|DESC)\s+(?P<table>` + ident + `)\s*;?\s*\z`),
			Template: "SQLite no tiene <code>DESCRIBE</code>. Para ver las columnas de <code>{{table}}</code> usa <code>PRAGMA table_info({{table}});</code>.",
		},
		{
			Type:     RuleTruncate,
			Title:    "TRUNCATE is not supported",
			Code:     Truncate,
			Pattern:  regexp.MustCompile(leading + `TRUNCATE\s+(?:TABLE\s+)?(?P<table>` + ident + `)`),
			Template: "SQLite no tiene <code>TRUNCATE</code>. Para vaciar <code>{{table}}</code> usa <code>DELETE FROM {{table}};</code>.",
		},
		{
			Type:     RuleInsertIgnore,
			Title:    "INSERT IGNORE is not supported",
			Code:     InsertIgnore,
			Pattern:  regexp.MustCompile(leading + `INSERT\s+IGNORE\b`),
			Template: "En SQLite se escribe <code>INSERT OR IGNORE INTO ...</code> en lugar de <code>INSERT IGNORE</code>.",
		},
	}
}
