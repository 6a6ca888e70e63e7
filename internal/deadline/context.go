package deadline

import (
	"strings"
	"unicode/utf8"
)

const (
	contextRadius  = 60
	fallbackLength = 160
)

// NoContext is what callers show when LocateContext returns "".
const NoContext = "(no additional context found)"

// LocateContext returns the text around the first case-insensitive occurrence
// of candidate in the lowercased haystack summary+" "+body+" "+snippet: up to
// 60 characters either side, whitespace collapsed. When candidate does not
// occur, the first 160 characters of the haystack are returned instead.
func LocateContext(summary, body, snippet, candidate string) string {
	haystack := strings.ToLower(summary + " " + body + " " + snippet)
	needle := strings.ToLower(candidate)

	var window string
	if i := strings.Index(haystack, needle); i != -1 {
		runes := []rune(haystack)
		at := utf8.RuneCountInString(haystack[:i])
		start := max(0, at-contextRadius)
		end := min(len(runes), at+utf8.RuneCountInString(needle)+contextRadius)
		window = string(runes[start:end])
	} else {
		window = firstRunes(haystack, fallbackLength)
	}
	return strings.Join(strings.Fields(window), " ")
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
