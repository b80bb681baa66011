package db

// Table and column names of the dream table. The Portuguese names are kept so
// databases written by earlier releases of the app open unchanged.
const (
	TableDreams = "sonhos"

	ColumnID             = "id"
	ColumnTitle          = "titulo"
	ColumnDescription    = "sonho"
	ColumnDate           = "data"
	ColumnTime           = "hora"
	ColumnInterpretation = "significado"
)

const (
	// schemaV1 is the original table: no title, no interpretation.
	schemaV1 = `
CREATE TABLE IF NOT EXISTS sonhos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sonho TEXT,
    data TEXT,
    hora TEXT
);`

	addTitleColumnV2          = `ALTER TABLE sonhos ADD COLUMN titulo TEXT;`
	addInterpretationColumnV3 = `ALTER TABLE sonhos ADD COLUMN significado TEXT DEFAULT '';`
)
