package catalog

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fiction", "fiction"},
		{"Science Fiction", "science-fiction"},
		{"  The Go Programming Language  ", "the-go-programming-language"},
		{"C++ & Beyond!", "c-beyond"},
		{"1984", "1984"},
		{"---", ""},
		{"", ""},
		{"Crème Brûlée", "crème-brûlée"},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
