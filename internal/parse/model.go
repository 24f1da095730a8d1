package parse

// Session is one conference talk as it appears in a year's _sessions.yml.
type Session struct {
	ID          string
	Title       string
	Description string
	Track       string
}

// Shape identifies which of the two supported document layouts a
// _sessions.yml file was decoded with.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeKeyed         // session id -> fields mapping
	ShapeList          // sequence of [id, fields] pairs
)

func (s Shape) String() string {
	switch s {
	case ShapeKeyed:
		return "keyed-mapping"
	case ShapeList:
		return "list-of-pairs"
	default:
		return "unknown"
	}
}

// ParseResult is the outcome of decoding one year's file.
type ParseResult struct {
	Year     uint
	FilePath string
	Shape    Shape
	Sessions []Session
}
