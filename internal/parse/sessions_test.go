package parse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keyedYAML = `
"104":
  :title: Meet async/await
  :description: Learn how to use async/await in Swift.
  :track: Swift
"10019":
  :title: "What's new in SwiftUI"
  :description: >
    Folded
    description
  :track: SwiftUI
`

const listYAML = `
- - 7
  - :title: X
    :description: Y
    :track: Z
- [12, {":title": A, ":description": B, ":track": C}]
`

func TestDecode_KeyedMapping(t *testing.T) {
	sessions, shape, err := Decode([]byte(keyedYAML))
	require.NoError(t, err)
	assert.Equal(t, ShapeKeyed, shape)
	require.Len(t, sessions, 2)

	assert.Equal(t, Session{
		ID:          "104",
		Title:       "Meet async/await",
		Description: "Learn how to use async/await in Swift.",
		Track:       "Swift",
	}, sessions[0])
	assert.Equal(t, "10019", sessions[1].ID)
	assert.Equal(t, "What's new in SwiftUI", sessions[1].Title)
	assert.Equal(t, "Folded description\n", sessions[1].Description)
}

func TestDecode_ListOfPairs(t *testing.T) {
	sessions, shape, err := Decode([]byte(listYAML))
	require.NoError(t, err)
	assert.Equal(t, ShapeList, shape)
	require.Len(t, sessions, 2)

	assert.Equal(t, Session{ID: "7", Title: "X", Description: "Y", Track: "Z"}, sessions[0])
	assert.Equal(t, Session{ID: "12", Title: "A", Description: "B", Track: "C"}, sessions[1])
}

func TestDecode_BareFieldNames(t *testing.T) {
	sessions, shape, err := Decode([]byte(`- [7, {title: "X", description: "Y", track: "Z"}]`))
	require.NoError(t, err)
	assert.Equal(t, ShapeList, shape)
	assert.Equal(t, []Session{{ID: "7", Title: "X", Description: "Y", Track: "Z"}}, sessions)
}

func TestDecode_ListIDIsStringifiedInteger(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want string
	}{
		{"0", "0"},
		{"42", "42"},
		{"18446744073709551615", "18446744073709551615"},
	} {
		t.Run(tc.raw, func(t *testing.T) {
			doc := "- [" + tc.raw + ", {title: a, description: b, track: c}]"
			sessions, shape, err := Decode([]byte(doc))
			require.NoError(t, err)
			assert.Equal(t, ShapeList, shape)
			require.Len(t, sessions, 1)
			assert.Equal(t, tc.want, sessions[0].ID)
		})
	}
}

func TestDecode_KeyedNumericLookingTitleIsString(t *testing.T) {
	sessions, _, err := Decode([]byte("\"1\":\n  :title: 2021\n  :description: true\n  :track: 3.5\n"))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "2021", sessions[0].Title)
	assert.Equal(t, "true", sessions[0].Description)
	assert.Equal(t, "3.5", sessions[0].Track)
}

func TestDecode_MissingTrackFailsBothShapes(t *testing.T) {
	doc := `
"104":
  :title: T
  :description: D
`
	_, shape, err := Decode([]byte(doc))
	require.Error(t, err)
	assert.Equal(t, ShapeUnknown, shape)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.ErrorIs(t, de.Keyed, ErrMissingField)
	assert.Contains(t, de.Keyed.Error(), ":track")
	assert.Error(t, de.List)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDecode_MistypedField(t *testing.T) {
	doc := `
"1":
  :title: [not, a, string]
  :description: D
  :track: T
`
	_, _, err := Decode([]byte(doc))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Keyed.Error(), "want a string")
}

func TestDecode_NullField(t *testing.T) {
	_, _, err := Decode([]byte("\"1\":\n  :title: ~\n  :description: D\n  :track: T\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")
}

func TestDecode_ListWithBadID(t *testing.T) {
	_, _, err := Decode([]byte(`- [-3, {title: a, description: b, track: c}]`))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.List.Error(), "not an unsigned integer")
	assert.Contains(t, de.Keyed.Error(), "want a mapping")
}

func TestDecode_ListEntryNotAPair(t *testing.T) {
	_, _, err := Decode([]byte(`- [1, {title: a, description: b, track: c}, extra]`))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.List.Error(), "[id, fields] pair")
}

func TestDecode_Syntax(t *testing.T) {
	_, _, err := Decode([]byte("\"1\": [unclosed"))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Error(t, de.Err)
	assert.Nil(t, de.Keyed)
	assert.Nil(t, de.List)
}

func TestDecode_Empty(t *testing.T) {
	_, _, err := Decode(nil)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, err.Error(), "empty document")
}

func TestDecode_EmptyMappingHasNoSessions(t *testing.T) {
	sessions, shape, err := Decode([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, ShapeKeyed, shape)
	assert.Empty(t, sessions)
}

func TestDecode_RepeatedListIDLastWriteWins(t *testing.T) {
	doc := `
- [1, {title: first, description: d, track: t}]
- [2, {title: other, description: d, track: t}]
- [1, {title: second, description: d, track: t}]
`
	sessions, _, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "1", sessions[0].ID)
	assert.Equal(t, "second", sessions[0].Title)
	assert.Equal(t, "2", sessions[1].ID)
}

func TestDecode_RepeatedKeyedIDLastWriteWins(t *testing.T) {
	doc := `
"1":
  :title: first
  :description: d
  :track: t
"2":
  :title: other
  :description: d
  :track: t
"1":
  :title: second
  :description: d2
  :track: t2
`
	sessions, shape, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, ShapeKeyed, shape)
	require.Len(t, sessions, 2)
	assert.Equal(t, Session{ID: "1", Title: "second", Description: "d2", Track: "t2"}, sessions[0])
	assert.Equal(t, "2", sessions[1].ID)
}

func TestDecode_Aliases(t *testing.T) {
	doc := `
"1": &s
  :title: T
  :description: D
  :track: Trk
"2": *s
`
	sessions, _, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "2", sessions[1].ID)
	assert.Equal(t, "Trk", sessions[1].Track)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SessionsFileName)
	require.NoError(t, os.WriteFile(path, []byte(keyedYAML), 0o644))

	res, err := ParseFile(2021, path)
	require.NoError(t, err)
	assert.Equal(t, uint(2021), res.Year)
	assert.Equal(t, path, res.FilePath)
	assert.Equal(t, ShapeKeyed, res.Shape)
	assert.Len(t, res.Sessions, 2)
}

func TestParseFile_DecodeErrorNamesYearAndPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SessionsFileName)
	require.NoError(t, os.WriteFile(path, []byte("\"1\":\n  :title: T\n  :description: D\n"), 0o644))

	_, err := ParseFile(2019, path)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, uint(2019), de.Year)
	assert.Equal(t, path, de.Path)
	assert.Contains(t, err.Error(), "year 2019")
	assert.Contains(t, err.Error(), path)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(2020, filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "keyed-mapping", ShapeKeyed.String())
	assert.Equal(t, "list-of-pairs", ShapeList.String())
	assert.Equal(t, "unknown", ShapeUnknown.String())
}
