package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/wwdc-sessions/internal/index"
)

type Result struct {
	Year      uint
	SessionID string
	Title     string
	Track     string
	URL       string
	Snippet   string
	Rank      float64
}

type Options struct {
	Query string
	Year  uint   // 0 = all years
	Track string // "" = all tracks, matched case-insensitively
	Limit int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 || len(lower) != len(text) {
		// no match (or case folding changed byte offsets), return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qLen := len([]rune(query))
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + qLen + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+qLen]) + "<<<" +
		string(runes[runePos+qLen:end])
	return prefix + snippet + suffix
}

// Search returns sessions matching opts.Query, best match first. An empty
// query lists sessions by year and document order.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	switch {
	case strings.TrimSpace(opts.Query) == "":
		return ListAll(db, opts)
	case containsCJK(opts.Query):
		return searchLike(db, opts)
	default:
		return searchFTS(db, opts)
	}
}

func filters(opts Options) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	if opts.Year != 0 {
		conditions = append(conditions, "s.year = ?")
		args = append(args, opts.Year)
	}
	if opts.Track != "" {
		conditions = append(conditions, "s.track = ? COLLATE NOCASE")
		args = append(args, opts.Track)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filters(opts)
	conditions = append([]string{"sessions_fts MATCH ?"}, conditions...)
	args = append([]interface{}{opts.Query}, args...)

	query := fmt.Sprintf(`
		SELECT
			s.year,
			s.session_id,
			s.title,
			s.track,
			COALESCE(s.url, ''),
			snippet(sessions_fts, 1, '>>>', '<<<', '...', 16) AS snip,
			bm25(sessions_fts, 10.0, 1.0) AS rank
		FROM sessions_fts
		JOIN sessions s ON sessions_fts.rowid = s.rowid
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filters(opts)
	conditions = append([]string{"(s.title LIKE ? OR s.description LIKE ?)"}, conditions...)
	pattern := "%" + opts.Query + "%"
	args = append([]interface{}{pattern, pattern}, args...)

	query := fmt.Sprintf(`
		SELECT s.year, s.session_id, s.title, s.track, COALESCE(s.url, ''), s.description
		FROM sessions s
		WHERE %s
		ORDER BY s.year DESC, s.position
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var description string
		if err := rows.Scan(&r.Year, &r.SessionID, &r.Title, &r.Track, &r.URL, &description); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(description, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll returns sessions newest year first, in document order within a year.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	conditions, args := filters(opts)
	where := "1 = 1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT s.year, s.session_id, s.title, s.track, COALESCE(s.url, ''), substr(s.description, 1, 120), 0
		FROM sessions s
		WHERE %s
		ORDER BY s.year DESC, s.position
		LIMIT ?
	`, where)
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.Year, &r.SessionID, &r.Title, &r.Track,
			&r.URL, &r.Snippet, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
