package text

import "testing"

func TestPlain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain text untouched", input: "Hello Asha, how are you?", want: "Hello Asha, how are you?"},
		{name: "bold", input: "**Hello** there", want: "Hello there"},
		{name: "italic", input: "a *quick* fox", want: "a quick fox"},
		{name: "adjacent italics", input: "*one* *two*", want: "one two"},
		{name: "underscore italic", input: "it is _very_ good", want: "it is very good"},
		{name: "snake case kept", input: "call snake_case_name here", want: "call snake_case_name here"},
		{name: "arithmetic kept", input: "2 * 3 * 4 = 24", want: "2 * 3 * 4 = 24"},
		{name: "strike", input: "~~old~~ new", want: "old new"},
		{name: "header", input: "## Title ##\nBody", want: "Title\n\nBody"},
		{name: "link", input: "See [Go](https://go.dev).", want: "See Go (https://go.dev)."},
		{name: "bare link", input: "[https://go.dev](https://go.dev)", want: "https://go.dev"},
		{name: "image", input: "![logo](https://go.dev/logo.png)", want: "https://go.dev/logo.png"},
		{name: "bullets", input: "- one\n- two\n  - nested", want: "• one\n• two\n  • nested"},
		{name: "ordered list", input: "Steps:\n\n3. boil\n4. pour", want: "Steps:\n\n3. boil\n4. pour"},
		{name: "inline code", input: "run `go test ./...` now", want: "run go test ./... now"},
		{name: "fenced code", input: "Try:\n```go\nfmt.Println(1)\n```\nDone.", want: "Try:\n\nfmt.Println(1)\n\nDone."},
		{name: "quote", input: "> quoted line\nreply", want: "quoted line\nreply"},
		{name: "rule", input: "above\n\n***\n\nbelow", want: "above\n\nbelow"},
		{name: "escaped markup", input: "\\*not italic\\*", want: "*not italic*"},
		{name: "entity", input: "AT&amp;T", want: "AT&T"},
		{name: "inline html", input: "say <b>hi</b> now", want: "say hi now"},
		{name: "html block", input: "<div>hello &amp; bye</div>", want: "hello & bye"},
		{name: "blank lines collapsed", input: "a\n\n\n\n\nb", want: "a\n\nb"},
		{name: "crlf and trailing spaces", input: "a  \r\nb\t", want: "a\nb"},
		{name: "invisible and control", input: "zero\u200bwidth\x07 bell", want: "zerowidth bell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Plain(tt.input); got != tt.want {
				t.Errorf("Plain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
