package model

import (
	"strings"
	"unicode"
)

// labelAcronyms are clinical abbreviations kept in their written form.
var labelAcronyms = map[string]string{
	"tmj": "TMJ",
	"sq":  "SQ",
	"mm":  "mm",
}

// DefaultLabeler turns the last segment of a label key into a sentence-case
// label: "e4.maxUnassisted.familiarHeadache" reads "Familiar headache",
// "tmjLateralPole" reads "TMJ lateral pole" and item codes such as "SQ1" or
// section ids such as "e9" are upper-cased whole.
func DefaultLabeler(key string) string {
	if idx := strings.LastIndexByte(key, '.'); idx >= 0 {
		key = key[idx+1:]
	}
	words := labelWords(key)
	for i, word := range words {
		lower := strings.ToLower(word)
		switch {
		case labelAcronyms[lower] != "":
			words[i] = labelAcronyms[lower]
		case strings.IndexFunc(word, unicode.IsDigit) >= 0:
			words[i] = strings.ToUpper(word)
		case i == 0:
			runes := []rune(lower)
			runes[0] = unicode.ToUpper(runes[0])
			words[i] = string(runes)
		default:
			words[i] = lower
		}
	}
	return strings.Join(words, " ")
}

// labelWords splits a model key on separators and on lower-to-upper case
// changes. Digits stay with the word they follow.
func labelWords(key string) []string {
	var (
		words   []string
		current []rune
		prev    rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}
	for _, r := range key {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
		prev = r
	}
	flush()
	return words
}
