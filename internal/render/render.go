package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wwdc-sessions/internal/index"
)

const (
	colorReset   = "\033[0m"
	colorTitle   = "\033[1;34m" // bold blue
	colorTrack   = "\033[1;32m" // bold green
	colorDim     = "\033[2m"
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting
	NoColor bool
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	var filtered []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"*()`)
		if t != "" && !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			if pos+len(term) > len(text) {
				break
			}
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// stripANSI removes the escape sequences this package emits.
func stripANSI(s string) string {
	for _, c := range []string{colorReset, colorTitle, colorTrack, colorDim, colorBoldRed} {
		s = strings.ReplaceAll(s, c, "")
	}
	return s
}

// Session renders a single session as a short text card.
func Session(s index.SessionRow, opts Options) string {
	var b strings.Builder

	writeLine := func(line string) {
		for _, wl := range wrapLine(line, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
		}
	}

	url := "(no url)"
	if s.URL.Valid {
		url = s.URL.String
	}

	writeLine(fmt.Sprintf("%s--- WWDC%d #%s ---%s", colorDim, s.Year, s.SessionID, colorReset))
	writeLine(colorTitle + highlightKeywords(s.Title, opts.Query) + colorReset)
	writeLine(fmt.Sprintf("%s%s%s  %s%s%s", colorTrack, s.Track, colorReset, colorDim, url, colorReset))
	writeLine("")

	desc := strings.TrimRight(s.Description, "\n")
	desc = highlightKeywords(desc, opts.Query)
	for _, l := range strings.Split(indentLines(desc, "  "), "\n") {
		writeLine(l)
	}

	out := b.String()
	if opts.NoColor {
		out = stripANSI(out)
	}
	return out
}

// RenderSession looks up a session and renders it.
func RenderSession(db *index.DB, year uint, sessionID string, opts Options) (string, error) {
	s, err := db.GetSession(year, sessionID)
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if s == nil {
		return "", fmt.Errorf("session not found: %d/%s", year, sessionID)
	}
	return Session(*s, opts), nil
}
