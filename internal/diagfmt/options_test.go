package diagfmt

import "testing"

func TestParsePathMode(t *testing.T) {
	cases := []struct {
		in   string
		want PathMode
		ok   bool
	}{
		{"", PathModeAuto, true},
		{"auto", PathModeAuto, true},
		{"abs", PathModeAbsolute, true},
		{"absolute", PathModeAbsolute, true},
		{"rel", PathModeRelative, true},
		{"base", PathModeBasename, true},
		{"basename", PathModeBasename, true},
		{"a", PathModeAuto, false},
		{"full", PathModeAuto, false},
	}
	for _, tc := range cases {
		got, ok := ParsePathMode(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParsePathMode(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
	if PathModeRelative.String() != "relative" || PathMode(9).String() != "auto" {
		t.Fatal("unexpected String()")
	}
}
