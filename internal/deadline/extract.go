// Package deadline finds date, time and deadline mentions in free text.
//
// Extraction is a fixed sequence of independent regular-expression passes
// feeding one order-preserving, deduplicating set. Nothing is parsed into a
// time.Time: a candidate is the matched text exactly as it appears.
package deadline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxCandidates caps how many candidates ExtractCandidates returns.
const MaxCandidates = 6

const (
	monthNames = `Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|` +
		`Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?`
	weekdays = `mon|tue|wed|thu|fri|sat|sun|monday|tuesday|wednesday|thursday|friday|saturday|sunday`

	// space matches what mail clients treat as whitespace, including the
	// no-break and em/en spaces that HTML-derived text is full of. RE2's \s
	// is ASCII only.
	space = `[\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]`
)

// fold makes every ASCII letter in a plain alternation match either case.
// (?i) would also fold in non-ASCII letters such as ſ for s or the Kelvin
// sign for k.
func fold(words string) string {
	var b strings.Builder
	for _, r := range words {
		lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
		if r < utf8.RuneSelf && lower != upper {
			b.WriteByte('[')
			b.WriteRune(upper)
			b.WriteRune(lower)
			b.WriteByte(']')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pass is one pattern family. group selects the capture kept as the
// candidate; 0 keeps the whole match.
type pass struct {
	name  string
	regex *regexp.Regexp
	group int
}

var (
	months   = fold(monthNames)
	days     = fold(weekdays)
	meridiem = fold(`AM|PM`)
)

// passes run in this order; earlier passes win ties for the first slots.
var passes = []pass{
	{name: "iso_datetime", regex: regexp.MustCompile(`\b(20\d{2}-\d{2}-\d{2}T\d{2}:\d{2})\b`), group: 1},
	{name: "iso_date", regex: regexp.MustCompile(`\b(20\d{2}-\d{1,2}-\d{1,2})\b`), group: 1},
	{name: "numeric_dmy", regex: regexp.MustCompile(`\b(\d{1,2}[/\-]\d{1,2}[/\-]20\d{2})\b`), group: 1},
	{name: "day_month", regex: regexp.MustCompile(`\b(\d{1,2}(?:` + fold(`st|nd|rd|th`) + `)?` + space + `+(` + months + `)(?:,?` + space + `*20\d{2})?)\b`)},
	{name: "month_day", regex: regexp.MustCompile(`\b(` + months + `)` + space + `+(\d{1,2})(?:,?` + space + `*(20\d{2}))?\b`)},
	{name: "clock", regex: regexp.MustCompile(`\b(\d{1,2}:\d{2}` + space + `*(?:` + meridiem + `)?)\b`), group: 1},
	{name: "hour_ampm", regex: regexp.MustCompile(`\b(\d{1,2}` + space + `*(?:` + meridiem + `))\b`), group: 1},
	{name: "relative", regex: regexp.MustCompile(`\b(` + fold(`tomorrow|today|this`) + ` (?:` + fold(`week|month`) + `)|` +
		fold(`next`) + ` (?:` + days + `)|` + fold(`by`) + space + `+(?:` + days + `))\b`)},
}

// ExtractCandidates returns up to MaxCandidates distinct date-like substrings
// of text, in first-seen order across the passes. Matching may ignore case
// but each candidate keeps the casing it has in text, so "Next Friday" and
// "next friday" are two candidates.
func ExtractCandidates(text string) []string {
	if text == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range passes {
		for _, m := range p.regex.FindAllStringSubmatch(text, -1) {
			c := m[p.group]
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}
