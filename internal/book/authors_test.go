package book

import "testing"

func TestNormalizeAuthors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single author", "Frank Herbert", "frank herbert"},
		{"case and whitespace", "  Frank   HERBERT ", "frank herbert"},
		{"comma separated", "Terry Pratchett, Neil Gaiman", "neil gaiman, terry pratchett"},
		{"order insensitive", "Neil Gaiman, Terry Pratchett", "neil gaiman, terry pratchett"},
		{"ampersand", "Terry Pratchett & Neil Gaiman", "neil gaiman, terry pratchett"},
		{"literal and", "Terry Pratchett and Neil Gaiman", "neil gaiman, terry pratchett"},
		{"and inside a name", "Hans Christian Andersen", "hans christian andersen"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAuthors(tt.in); got != tt.want {
				t.Errorf("NormalizeAuthors(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$12.99", 12.99},
		{"USD 7.50", 7.50},
		{"1,299.00", 1299.00},
		{"free", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := ParsePrice(tt.in); got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
