package text

import "testing"

func TestUTF16Len(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "empty", in: "", want: 0},
		{name: "ascii", in: "hello", want: 5},
		{name: "latin accents", in: "ééé", want: 3},
		{name: "bmp symbol", in: "•", want: 1},
		{name: "astral emoji", in: "🤖", want: 2},
		{name: "reply prefix", in: "🤖 ", want: 3},
		{name: "invalid utf8", in: "a\xffb", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := UTF16Len(tt.in); got != tt.want {
				t.Errorf("UTF16Len(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
