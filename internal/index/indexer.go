package index

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/wwdc-sessions/internal/events"
	"github.com/Zuo-Peng/wwdc-sessions/internal/parse"
	"github.com/Zuo-Peng/wwdc-sessions/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

type Options struct {
	URLBase string
	Logger  zerolog.Logger
}

// IndexAll loads every year under root into db. Years whose file did not
// change since the last run are skipped; years that disappeared are pruned.
// Decode failures are counted and logged, the year keeps its previous rows.
func IndexAll(db *DB, root string, opts Options) (Stats, error) {
	var stats Stats

	years, err := scan.ScanYears(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(years)

	for _, fi := range years.Sorted() {
		needs, err := needsUpdate(db, fi.Year, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		result, err := parse.ParseFile(fi.Year, fi.Path)
		if err != nil {
			stats.Errors++
			opts.Logger.Warn().Err(err).Uint("year", fi.Year).Str("path", fi.Path).Msg("parse")
			continue
		}

		if err := indexYear(db, fi, result, opts.URLBase); err != nil {
			stats.Errors++
			opts.Logger.Warn().Err(err).Uint("year", fi.Year).Str("path", fi.Path).Msg("index")
			continue
		}
		stats.Updated++
	}

	pruned, err := pruneYears(db, years)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func needsUpdate(db *DB, year uint, mtime, size int64) (bool, error) {
	info, err := db.GetYearInfo(year)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new year
	}
	return info.Mtime != mtime || info.Size != size, nil
}

func indexYear(db *DB, fi scan.FileInfo, result *parse.ParseResult, urlBase string) error {
	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// old rows go in the same transaction so a failed insert keeps them
	if err := deleteYearTx(tx, fi.Year); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO years (year, file_path, shape, mtime, size) VALUES (?, ?, ?, ?, ?)`,
		fi.Year, fi.Path, result.Shape.String(), fi.Mtime, fi.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO sessions (year, session_id, position, title, description, track, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range result.Sessions {
		var url any
		if u, ok := events.SessionURL(urlBase, fi.Year, s.ID); ok {
			url = u
		}
		if _, err := stmt.Exec(fi.Year, s.ID, i, s.Title, s.Description, s.Track, url); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneYears(db *DB, seen scan.Years) (int, error) {
	all, err := db.AllYears()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for year := range all {
		if _, ok := seen[year]; !ok {
			if err := db.DeleteYear(year); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
