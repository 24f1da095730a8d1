package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

// DefaultURLBase is the host session pages live on.
const DefaultURLBase = "https://developer.apple.com"

// sessionIDRe limits ids to a single unreserved URL path segment.
var sessionIDRe = regexp.MustCompile(`^[A-Za-z0-9._~-]+$`)

type jsonSession struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Track       string  `json:"track"`
	URL         *string `json:"url"`
}

type jsonDocument struct {
	Events map[string]map[string]jsonSession `json:"events"`
}

// EncodeOptions controls serialization.
type EncodeOptions struct {
	URLBase string // defaults to DefaultURLBase
}

// SessionURL derives the detail page of a session, e.g.
// https://developer.apple.com/wwdc21/104. It reports false when the year is
// not four digits or the id cannot be a single path segment.
func SessionURL(base string, year uint, id string) (string, bool) {
	if year < 1000 || year > 9999 {
		return "", false
	}
	if id == "." || id == ".." || !sessionIDRe.MatchString(id) {
		return "", false
	}
	if base == "" {
		base = DefaultURLBase
	}

	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	u = u.JoinPath(fmt.Sprintf("wwdc%02d", year%100), id)
	return u.String(), true
}

// Encode serializes the document as indented JSON with sorted keys and
// without HTML or slash escaping, so identical input yields identical bytes.
func Encode(doc Document, opts EncodeOptions) ([]byte, error) {
	out := jsonDocument{Events: make(map[string]map[string]jsonSession, len(doc.Events))}

	for _, r := range doc.Events {
		sessions := make(map[string]jsonSession, len(r.Sessions))
		for _, s := range r.Sessions {
			js := jsonSession{
				Title:       s.Title,
				Description: s.Description,
				Track:       s.Track,
			}
			if u, ok := SessionURL(opts.URLBase, r.Year, s.ID); ok {
				js.URL = &u
			}
			sessions[s.ID] = js
		}
		out.Events[strconv.FormatUint(uint64(r.Year), 10)] = sessions
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode events: %w", err)
	}
	return buf.Bytes(), nil
}
