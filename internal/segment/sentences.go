package segment

import "unicode"

// abbreviations that commonly precede a period without ending a sentence.
var abbreviations = map[string]bool{
	"no":   true,
	"inc":  true,
	"ltd":  true,
	"llc":  true,
	"co":   true,
	"corp": true,
	"mr":   true,
	"mrs":  true,
	"ms":   true,
	"dr":   true,
	"e.g":  true,
	"i.e":  true,
	"etc":  true,
	"vs":   true,
	"art":  true,
	"sec":  true,
	"cl":   true,
}

// sentenceEnds returns byte offsets just past each sentence terminator in
// text. A terminator counts only when followed by whitespace or the end
// of input, and when the preceding token is not a known abbreviation or a
// bare section number like "3.".
func sentenceEnds(text string) []int {
	var ends []int
	runes := []rune(text)
	// Track byte offset alongside rune index.
	byteOff := 0
	for i, r := range runes {
		size := len(string(r))
		if r == '.' || r == '!' || r == '?' {
			atEnd := i == len(runes)-1
			followedBySpace := !atEnd && unicode.IsSpace(runes[i+1])
			if (atEnd || followedBySpace) && !isAbbreviation(runes, i) {
				ends = append(ends, byteOff+size)
			}
		}
		byteOff += size
	}
	return ends
}

// isAbbreviation reports whether the token ending at the terminator at
// rune index i is an abbreviation or a bare number ("1.", "3.2.").
func isAbbreviation(runes []rune, i int) bool {
	if runes[i] != '.' {
		return false
	}
	// Walk back to the start of the preceding token.
	j := i - 1
	for j >= 0 && !unicode.IsSpace(runes[j]) {
		j--
	}
	token := string(runes[j+1 : i])
	if token == "" {
		return false
	}
	lower := make([]rune, 0, len(token))
	for _, r := range token {
		lower = append(lower, unicode.ToLower(r))
	}
	if abbreviations[string(lower)] {
		return true
	}
	// Single letters ("A.") and bare numbers ("3", "3.2") do not end sentences.
	if len(token) == 1 {
		return true
	}
	numeric := true
	for _, r := range token {
		if !unicode.IsDigit(r) && r != '.' {
			numeric = false
			break
		}
	}
	return numeric
}
