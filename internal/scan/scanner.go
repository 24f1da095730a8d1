package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/wwdc-sessions/internal/parse"
)

// FileInfo is one year's session source found under the root.
type FileInfo struct {
	Year  uint
	Path  string
	Mtime int64
	Size  int64
}

// Years maps a year to the session file found for it.
type Years map[uint]FileInfo

// Sorted returns the entries ordered by year.
func (y Years) Sorted() []FileInfo {
	files := make([]FileInfo, 0, len(y))
	for _, fi := range y {
		files = append(files, fi)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Year < files[j].Year })
	return files
}

// ScanError is returned when part of the tree cannot be read.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// yearContext is the year of the nearest enclosing year directory.
type yearContext struct {
	year  uint
	valid bool
}

// ScanYears walks root looking for _sessions.yml files inside year
// directories. Hidden entries are skipped. When a year directory holds
// several session files, the last one visited wins.
func ScanYears(root string) (Years, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Path: root, Err: fmt.Errorf("not a directory")}
	}

	return walk(root, yearContext{}, Years{})
}

func walk(dir string, ctx yearContext, acc Years) (Years, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return acc, &ScanError{Path: dir, Err: err}
	}

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if e.IsDir() {
			child := ctx
			if year, ok := parseYear(name); ok {
				child = yearContext{year: year, valid: true}
			}
			if acc, err = walk(path, child, acc); err != nil {
				return acc, err
			}
			continue
		}

		if name != parse.SessionsFileName || !ctx.valid {
			continue
		}

		info, err := e.Info()
		if err != nil {
			return acc, &ScanError{Path: path, Err: err}
		}
		acc[ctx.year] = FileInfo{
			Year:  ctx.year,
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		}
	}

	return acc, nil
}

func parseYear(name string) (uint, bool) {
	n, err := strconv.ParseUint(name, 10, 0)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
