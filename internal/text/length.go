package text

import "unicode/utf16"

// UTF16Len returns the length of s in UTF-16 code units, the unit Telegram
// counts message limits in.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += RuneUnits(r)
	}
	return n
}

// RuneUnits returns the UTF-16 code units r takes. Runes UTF-16 cannot encode
// are sent as U+FFFD and count as one.
func RuneUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
