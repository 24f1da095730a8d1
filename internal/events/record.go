// Package events bundles parsed sessions per year and serializes the
// aggregated document.
package events

import (
	"sort"

	"github.com/Zuo-Peng/wwdc-sessions/internal/parse"
)

// YearRecord is one year's worth of sessions.
type YearRecord struct {
	Year     uint
	Sessions []parse.Session
}

// NewYearRecord pairs a year with its sessions.
func NewYearRecord(year uint, sessions []parse.Session) YearRecord {
	return YearRecord{Year: year, Sessions: sessions}
}

// FromResult builds the record for a decoded year file.
func FromResult(r *parse.ParseResult) YearRecord {
	return NewYearRecord(r.Year, r.Sessions)
}

// Document is the full aggregated result of one run.
type Document struct {
	Events []YearRecord
}

// NewDocument collects records ordered by year. A repeated year replaces
// the earlier record.
func NewDocument(records ...YearRecord) Document {
	byYear := make(map[uint]YearRecord, len(records))
	for _, r := range records {
		byYear[r.Year] = r
	}

	doc := Document{Events: make([]YearRecord, 0, len(byYear))}
	for _, r := range byYear {
		doc.Events = append(doc.Events, r)
	}
	sort.Slice(doc.Events, func(i, j int) bool { return doc.Events[i].Year < doc.Events[j].Year })
	return doc
}

// SessionCount is the number of sessions across all years.
func (d Document) SessionCount() int {
	n := 0
	for _, r := range d.Events {
		n += len(r.Sessions)
	}
	return n
}
