// Package loc identifies the source positions that elaborated terms,
// solver obligations, and diagnostics are attributed to.
package loc

import "fmt"

// Loc compactly identifies a byte range in a set of source files.
// Offsets begin at 1; the zero value indicates no location,
// which is what terms synthesized by the core itself carry.
type Loc [2]int

// IsZero returns whether l is the no-location value.
func (l Loc) IsZero() bool { return l == Loc{} }

// Join returns the smallest Loc covering both l and o.
// Joining with the zero Loc returns the other Loc.
func (l Loc) Join(o Loc) Loc {
	switch {
	case l.IsZero():
		return o
	case o.IsZero():
		return l
	}
	if o[0] < l[0] {
		l[0] = o[0]
	}
	if o[1] > l[1] {
		l[1] = o[1]
	}
	return l
}

// A Locer is anything with a source location.
type Locer interface {
	Loc() Loc
}

// A Location is a human-readable Loc: a path with line and column ranges.
// The zero value indicates no location.
type Location struct {
	Path string
	Line [2]int
	Col  [2]int
}

func (l Location) String() string {
	switch {
	case l == Location{}:
		return "<no location>"
	case l.Line[0] == l.Line[1] && l.Col[0] == l.Col[1]:
		return fmt.Sprintf("%s:%d.%d", l.Path, l.Line[0], l.Col[0])
	default:
		return fmt.Sprintf("%s:%d.%d-%d.%d", l.Path, l.Line[0], l.Col[0], l.Line[1], l.Col[1])
	}
}

// File describes a source file by its path, length, and newline offsets.
type File interface {
	Path() string
	Len() int
	NewLines() []int
}

// Files maps Locs to Locations within an ordered set of files.
// File i begins at the offset following the end of file i-1.
type Files []File

// Len returns the total length of all files.
func (fs Files) Len() int {
	var n int
	for _, f := range fs {
		n += f.Len()
	}
	return n
}

// Location returns the Location of l.
// The zero Loc maps to the zero Location.
// Location panics if l is out of range or spans multiple files.
func (fs Files) Location(l Loc) Location {
	switch {
	case l.IsZero():
		return Location{}
	case len(fs) == 0:
		panic("no files")
	case l[0] < 1 || l[1]-1 > fs.Len():
		panic("out of range")
	case l[0] > l[1]:
		panic("bad Loc")
	}
	path0, line0, col0 := fs.position(l[0])
	path1, line1, col1 := fs.position(l[1])
	if path0 != path1 {
		panic("multi-file Loc")
	}
	return Location{Path: path0, Line: [2]int{line0, line1}, Col: [2]int{col0, col1}}
}

func (fs Files) position(off int) (string, int, int) {
	off-- // Locs are 1-based.
	var start int
	f := fs[len(fs)-1]
	for i, file := range fs {
		if off < start+file.Len() || i == len(fs)-1 {
			f = file
			break
		}
		start += file.Len()
	}
	line, lineStart := 1, start-1
	for _, nl := range f.NewLines() {
		if start+nl >= off {
			break
		}
		lineStart = start + nl
		line++
	}
	return f.Path(), line, off - lineStart
}
