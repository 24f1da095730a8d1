package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wwdc-sessions/internal/parse"
)

func TestSessionURL(t *testing.T) {
	u, ok := SessionURL("", 2021, "104")
	require.True(t, ok)
	assert.Equal(t, "https://developer.apple.com/wwdc21/104", u)

	u, ok = SessionURL("https://example.com/", 2009, "a-b_c")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/wwdc09/a-b_c", u)
}

func TestSessionURL_FailsClosed(t *testing.T) {
	for _, tc := range []struct {
		name string
		base string
		year uint
		id   string
	}{
		{"empty id", "", 2021, ""},
		{"slash", "", 2021, "1/2"},
		{"space", "", 2021, "1 2"},
		{"query", "", 2021, "1?x"},
		{"dot dot", "", 2021, ".."},
		{"short year", "", 21, "104"},
		{"long year", "", 20210, "104"},
		{"bad base", "not a url", 2021, "104"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := SessionURL(tc.base, tc.year, tc.id)
			assert.False(t, ok)
		})
	}
}

func TestNewDocument_SortsAndDedupes(t *testing.T) {
	doc := NewDocument(
		NewYearRecord(2021, nil),
		NewYearRecord(2019, []parse.Session{{ID: "1"}}),
		NewYearRecord(2021, []parse.Session{{ID: "2"}, {ID: "3"}}),
	)
	require.Len(t, doc.Events, 2)
	assert.Equal(t, uint(2019), doc.Events[0].Year)
	assert.Equal(t, uint(2021), doc.Events[1].Year)
	assert.Len(t, doc.Events[1].Sessions, 2)
	assert.Equal(t, 3, doc.SessionCount())
}

func TestFromResult(t *testing.T) {
	r := FromResult(&parse.ParseResult{Year: 2020, Sessions: []parse.Session{{ID: "9"}}})
	assert.Equal(t, uint(2020), r.Year)
	assert.Equal(t, "9", r.Sessions[0].ID)
}

func TestEncode(t *testing.T) {
	doc := NewDocument(
		NewYearRecord(2021, []parse.Session{
			{ID: "7", Title: "X", Description: "Y & <Z>", Track: "Z"},
			{ID: "bad/id", Title: "T", Description: "D", Track: "K"},
		}),
		NewYearRecord(2019, []parse.Session{
			{ID: "42", Title: "T", Description: "D", Track: "Trk"},
		}),
	)

	data, err := Encode(doc, EncodeOptions{})
	require.NoError(t, err)

	want := `{
  "events": {
    "2019": {
      "42": {
        "title": "T",
        "description": "D",
        "track": "Trk",
        "url": "https://developer.apple.com/wwdc19/42"
      }
    },
    "2021": {
      "7": {
        "title": "X",
        "description": "Y & <Z>",
        "track": "Z",
        "url": "https://developer.apple.com/wwdc21/7"
      },
      "bad/id": {
        "title": "T",
        "description": "D",
        "track": "K",
        "url": null
      }
    }
  }
}
`
	assert.Equal(t, want, string(data))
	assert.NoError(t, Validate(data))
}

func TestEncode_PreservesSessionTuples(t *testing.T) {
	in := []parse.Session{
		{ID: "104", Title: "Meet async/await", Description: "d1", Track: "Swift"},
		{ID: "10019", Title: "SwiftUI", Description: "d2", Track: "UI"},
	}
	data, err := Encode(NewDocument(NewYearRecord(2021, in)), EncodeOptions{})
	require.NoError(t, err)

	var out struct {
		Events map[string]map[string]struct {
			Title       string  `json:"title"`
			Description string  `json:"description"`
			Track       string  `json:"track"`
			URL         *string `json:"url"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(data, &out))

	year := out.Events["2021"]
	require.Len(t, year, len(in))
	for _, s := range in {
		got, ok := year[s.ID]
		require.True(t, ok, s.ID)
		assert.Equal(t, s.Title, got.Title)
		assert.Equal(t, s.Description, got.Description)
		assert.Equal(t, s.Track, got.Track)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	doc := NewDocument(
		NewYearRecord(2020, []parse.Session{{ID: "b"}, {ID: "a"}, {ID: "c"}}),
		NewYearRecord(2018, []parse.Session{{ID: "z"}}),
	)
	first, err := Encode(doc, EncodeOptions{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Encode(doc, EncodeOptions{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(NewDocument(), EncodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"events\": {}\n}\n", string(data))
	assert.NoError(t, Validate(data))
}

func TestValidate_Rejects(t *testing.T) {
	assert.Error(t, Validate([]byte(`{"events": []}`)))
	assert.Error(t, Validate([]byte(`{"events": {"2021": {"1": {"title": "t"}}}}`)))
	assert.Error(t, Validate([]byte(`{"events": {"twenty": {}}}`)))
	assert.Error(t, Validate([]byte(`not json`)))
}
