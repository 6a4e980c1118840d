package loc

import "testing"

type testFile struct {
	path string
	text string
}

func (f testFile) Path() string { return f.path }
func (f testFile) Len() int     { return len(f.text) }

func (f testFile) NewLines() []int {
	var nls []int
	for i, r := range f.text {
		if r == '\n' {
			nls = append(nls, i)
		}
	}
	return nls
}

func TestJoin(t *testing.T) {
	tests := []struct {
		a, b, want Loc
	}{
		{a: Loc{}, b: Loc{}, want: Loc{}},
		{a: Loc{}, b: Loc{2, 3}, want: Loc{2, 3}},
		{a: Loc{2, 3}, b: Loc{}, want: Loc{2, 3}},
		{a: Loc{2, 3}, b: Loc{5, 9}, want: Loc{2, 9}},
		{a: Loc{5, 9}, b: Loc{1, 6}, want: Loc{1, 9}},
		{a: Loc{1, 10}, b: Loc{3, 4}, want: Loc{1, 10}},
	}
	for _, test := range tests {
		if got := test.a.Join(test.b); got != test.want {
			t.Errorf("%v.Join(%v)=%v, want %v", test.a, test.b, got, test.want)
		}
	}
}

func TestLocation(t *testing.T) {
	files := Files{
		testFile{path: "a.dtt", text: "ab\ncd"},
		testFile{path: "b.dtt", text: "xy"},
	}
	tests := []struct {
		loc  Loc
		want string
	}{
		{loc: Loc{}, want: "<no location>"},
		{loc: Loc{1, 1}, want: "a.dtt:1.1"},
		{loc: Loc{1, 2}, want: "a.dtt:1.1-1.2"},
		{loc: Loc{4, 5}, want: "a.dtt:2.1-2.2"},
		{loc: Loc{2, 4}, want: "a.dtt:1.2-2.1"},
		{loc: Loc{6, 7}, want: "b.dtt:1.1-1.2"},
	}
	for _, test := range tests {
		if got := files.Location(test.loc).String(); got != test.want {
			t.Errorf("Location(%v)=%q, want %q", test.loc, got, test.want)
		}
	}
	if n := files.Len(); n != 7 {
		t.Errorf("Len()=%d, want 7", n)
	}
}

func TestLocationPanics(t *testing.T) {
	files := Files{testFile{path: "a.dtt", text: "abc"}, testFile{path: "b.dtt", text: "d"}}
	for _, l := range []Loc{{0, 2}, {3, 2}, {3, 4}, {1, 9}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Location(%v) did not panic", l)
				}
			}()
			files.Location(l)
		}()
	}
}
