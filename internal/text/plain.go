// Package text converts model output to plain text for Telegram messages
// sent without a parse mode.
package text

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gtext "github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	htmlText = bluemonday.StrictPolicy()

	invisibleReplacer = strings.NewReplacer(
		"\r\n", "\n", "\r", "\n",
		"\u200b", "", "\u200c", "", "\u200d", "", "\u2060", "", "\ufeff", "",
		"\u00ad", "", "\u202a", "", "\u202b", "", "\u202c", "", "\u202d", "", "\u202e", "",
		"\u2028", "\n", "\u2029", "\n\n",
	)

	controlRe    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	trailingRe   = regexp.MustCompile(`(?m)[ \t]+$`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// Plain renders markdown in s as plain text, keeping the text it decorates.
// Links become "label (url)", list items get "•" or their number, code is
// kept verbatim and HTML tags are dropped. Control and zero-width characters
// are removed and runs of blank lines are collapsed.
func Plain(s string) string {
	s = invisibleReplacer.Replace(s)
	s = controlRe.ReplaceAllString(s, "")
	if strings.TrimSpace(s) == "" {
		return ""
	}

	src := []byte(s)
	doc := markdown.Parser().Parse(gtext.NewReader(src))

	r := &plainRenderer{src: src}
	if err := ast.Walk(doc, r.walk); err != nil {
		return strings.TrimSpace(s)
	}

	out := trailingRe.ReplaceAllString(r.buf.String(), "")
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

type plainRenderer struct {
	src       []byte
	buf       strings.Builder
	lists     int
	linkStart int
}

func (r *plainRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering && node.Type() == ast.TypeBlock {
		r.separate(node)
	}

	switch n := node.(type) {
	case *ast.Text:
		if !entering {
			break
		}
		value := n.Segment.Value(r.src)
		if !n.IsRaw() {
			value = resolve(value)
		}
		r.buf.Write(value)
		if n.SoftLineBreak() || n.HardLineBreak() {
			r.buf.WriteByte('\n')
		}

	case *ast.String:
		if entering {
			r.buf.Write(n.Value)
		}

	case *ast.CodeSpan:
		if entering {
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					r.buf.Write(t.Segment.Value(r.src))
				}
			}
			return ast.WalkSkipChildren, nil
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.buf.WriteString(strings.TrimRight(r.lines(n), "\n"))
			return ast.WalkSkipChildren, nil
		}

	case *ast.HTMLBlock:
		if entering {
			raw := r.lines(n)
			if n.HasClosure() {
				raw += string(n.ClosureLine.Value(r.src))
			}
			r.buf.Write(resolve([]byte(htmlText.Sanitize(raw))))
			return ast.WalkSkipChildren, nil
		}

	case *ast.RawHTML:
		return ast.WalkSkipChildren, nil

	case *ast.AutoLink:
		if entering {
			r.buf.Write(n.URL(r.src))
			return ast.WalkSkipChildren, nil
		}

	case *ast.Image:
		if entering {
			r.buf.Write(n.Destination)
			return ast.WalkSkipChildren, nil
		}

	case *ast.Link:
		if entering {
			r.linkStart = r.buf.Len()
			break
		}
		dest := string(n.Destination)
		label := r.buf.String()[r.linkStart:]
		switch {
		case dest == "" || label == dest:
		case strings.TrimSpace(label) == "":
			r.buf.WriteString(dest)
		default:
			r.buf.WriteString(" (" + dest + ")")
		}

	case *ast.List:
		if entering {
			r.lists++
		} else {
			r.lists--
		}

	case *ast.ListItem:
		if entering {
			r.buf.WriteString(strings.Repeat("  ", max(r.lists-1, 0)))
			r.buf.WriteString(marker(n))
		}
	}
	return ast.WalkContinue, nil
}

// separate writes the break between a block and its previous sibling. Items
// and lists nested in items sit on the next line; other blocks are separated
// by a blank line.
func (r *plainRenderer) separate(node ast.Node) {
	if node.PreviousSibling() == nil {
		return
	}
	_, item := node.(*ast.ListItem)
	_, inItem := node.Parent().(*ast.ListItem)
	if item || inItem {
		r.buf.WriteByte('\n')
		return
	}
	r.buf.WriteString("\n\n")
}

func (r *plainRenderer) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(r.src))
	}
	return sb.String()
}

func marker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "• "
	}
	n := list.Start
	for s := item.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		n++
	}
	return strconv.Itoa(n) + ". "
}

func resolve(b []byte) []byte {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	return util.ResolveEntityNames(b)
}
