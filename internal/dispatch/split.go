package dispatch

import (
	"strings"
	"unicode"

	"github.com/edgard/relaybot/internal/text"
)

// SplitMessage breaks s into ordered chunks of at most limit UTF-16 code
// units, the length Telegram enforces. Cuts prefer the last newline inside
// the window, then the last space, and fall back to a hard cut. The separator
// at a cut is dropped. A non-positive limit returns s as a single chunk.
func SplitMessage(s string, limit int) []string {
	runes := []rune(s)
	remaining := units(runes)
	if limit <= 0 || remaining <= limit {
		return []string{s}
	}

	var chunks []string
	for remaining > limit {
		fit := fitting(runes, limit)
		// A separator right after the window still yields a full chunk.
		window := runes[:min(fit+1, len(runes))]
		cut := lastIndex(window, '\n')
		if cut <= 0 {
			cut = lastSpace(window)
		}
		if cut <= 0 {
			cut = fit
		}

		chunk := strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		rest := runes[cut:]
		for len(rest) > 0 && unicode.IsSpace(rest[0]) {
			rest = rest[1:]
		}
		remaining -= units(runes[:len(runes)-len(rest)])
		runes = rest
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// fitting returns how many leading runes fit in limit code units. It is at
// least one so a limit smaller than a single rune still makes progress.
func fitting(runes []rune, limit int) int {
	n, used := 0, 0
	for _, r := range runes {
		u := text.RuneUnits(r)
		if used+u > limit {
			break
		}
		used += u
		n++
	}
	return max(n, 1)
}

func units(runes []rune) int {
	n := 0
	for _, r := range runes {
		n += text.RuneUnits(r)
	}
	return n
}

func lastIndex(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
