package storage

// Table names shared by the loader and the web reader.
const (
	ProductionTable = "EnergyMix"
	LoadLogTable    = "load_log"
)

const productionColumns = `(
    date       TEXT PRIMARY KEY,   -- year-month, YYYY-MM
    coal       REAL NOT NULL DEFAULT 0,
    gas_dry    REAL NOT NULL DEFAULT 0,
    gas_liquid REAL NOT NULL DEFAULT 0,
    crude_oil  REAL NOT NULL DEFAULT 0,
    nuclear    REAL NOT NULL DEFAULT 0,
    hydro      REAL NOT NULL DEFAULT 0,
    geothermal REAL NOT NULL DEFAULT 0,
    solar      REAL NOT NULL DEFAULT 0,
    wind       REAL NOT NULL DEFAULT 0,
    biomass    REAL NOT NULL DEFAULT 0
)`

// bootSchema ensures both tables exist so a fresh web process can serve
// empty results before the first load. Replace recreates the production
// table inside its own transaction.
const bootSchema = `
CREATE TABLE IF NOT EXISTS ` + ProductionTable + ` ` + productionColumns + `;

-- Ingest audit trail: one row per successful load, appended in the same
-- transaction that replaces the production table.
CREATE TABLE IF NOT EXISTS ` + LoadLogTable + ` (
    load_id            INTEGER PRIMARY KEY AUTOINCREMENT,
    loaded_at          TEXT NOT NULL,
    record_count       INTEGER NOT NULL,
    coercion_fallbacks INTEGER NOT NULL
);
`

const createProductionTable = `CREATE TABLE ` + ProductionTable + ` ` + productionColumns

const (
	insertProduction = `INSERT INTO ` + ProductionTable + `
    (date, coal, gas_dry, gas_liquid, crude_oil, nuclear, hydro, geothermal, solar, wind, biomass)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectAllProduction = `SELECT date, coal, gas_dry, gas_liquid, crude_oil, nuclear, hydro, geothermal, solar, wind, biomass
    FROM ` + ProductionTable + ` ORDER BY date`

	countProduction = `SELECT COUNT(*) FROM ` + ProductionTable

	insertLoadLog = `INSERT INTO ` + LoadLogTable + ` (loaded_at, record_count, coercion_fallbacks) VALUES (?, ?, ?)`

	selectLatestLoad = `SELECT load_id, loaded_at, record_count, coercion_fallbacks
    FROM ` + LoadLogTable + ` ORDER BY load_id DESC LIMIT 1`

	selectLoadHistory = `SELECT load_id, loaded_at, record_count, coercion_fallbacks
    FROM ` + LoadLogTable + ` ORDER BY load_id DESC LIMIT ?`
)
