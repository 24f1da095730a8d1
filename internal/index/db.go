package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS years (
    year      INTEGER PRIMARY KEY,
    file_path TEXT NOT NULL,
    shape     TEXT NOT NULL DEFAULT '',
    mtime     INTEGER NOT NULL DEFAULT 0,
    size      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sessions (
    year        INTEGER NOT NULL,
    session_id  TEXT NOT NULL,
    position    INTEGER NOT NULL,
    title       TEXT NOT NULL,
    description TEXT NOT NULL,
    track       TEXT NOT NULL,
    url         TEXT,
    PRIMARY KEY (year, session_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS sessions_fts USING fts5(
    title,
    description,
    content=sessions,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS sessions_ai AFTER INSERT ON sessions BEGIN
    INSERT INTO sessions_fts(rowid, title, description) VALUES (new.rowid, new.title, new.description);
END;

CREATE TRIGGER IF NOT EXISTS sessions_ad AFTER DELETE ON sessions BEGIN
    INSERT INTO sessions_fts(sessions_fts, rowid, title, description) VALUES('delete', old.rowid, old.title, old.description);
END;

CREATE TRIGGER IF NOT EXISTS sessions_au AFTER UPDATE ON sessions BEGIN
    INSERT INTO sessions_fts(sessions_fts, rowid, title, description) VALUES('delete', old.rowid, old.title, old.description);
    INSERT INTO sessions_fts(rowid, title, description) VALUES (new.rowid, new.title, new.description);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// schemaVersion should be bumped whenever decoding or url derivation changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	// force re-index by resetting all year mtime/size to 0
	if _, err := d.db.Exec("UPDATE years SET mtime = 0, size = 0"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type YearInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetYearInfo(year uint) (*YearInfo, error) {
	var info YearInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM years WHERE year = ?",
		year,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllYears() (map[uint]struct{}, error) {
	rows, err := d.db.Query("SELECT year FROM years")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	years := make(map[uint]struct{})
	for rows.Next() {
		var y uint
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years[y] = struct{}{}
	}
	return years, rows.Err()
}

func (d *DB) DeleteYear(year uint) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteYearTx(tx, year); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteYearTx(tx *sql.Tx, year uint) error {
	if _, err := tx.Exec("DELETE FROM sessions WHERE year = ?", year); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM years WHERE year = ?", year)
	return err
}

func (d *DB) YearCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM years").Scan(&n)
	return n, err
}

func (d *DB) SessionCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

type SessionRow struct {
	Year        uint
	SessionID   string
	Title       string
	Description string
	Track       string
	URL         sql.NullString
}

func (d *DB) GetSession(year uint, sessionID string) (*SessionRow, error) {
	var s SessionRow
	err := d.db.QueryRow(
		"SELECT year, session_id, title, description, track, url FROM sessions WHERE year = ? AND session_id = ?",
		year, sessionID,
	).Scan(&s.Year, &s.SessionID, &s.Title, &s.Description, &s.Track, &s.URL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetYearSessions returns a year's sessions in document order.
func (d *DB) GetYearSessions(year uint) ([]SessionRow, error) {
	rows, err := d.db.Query(
		"SELECT year, session_id, title, description, track, url FROM sessions WHERE year = ? ORDER BY position",
		year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		var s SessionRow
		if err := rows.Scan(&s.Year, &s.SessionID, &s.Title, &s.Description, &s.Track, &s.URL); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
