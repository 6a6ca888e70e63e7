package deadline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCandidates_Examples(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"iso datetime", "Meeting on 2025-10-31T17:00", []string{"2025-10-31T17:00"}},
		{"iso date short parts", "Due by 2025-11-3", []string{"2025-11-3"}},
		{"numeric day month year", "Deadline: 03/11/2025", []string{"03/11/2025"}},
		{"dashed numeric", "Pay before 3-11-2025 please", []string{"3-11-2025"}},
		{"relative tomorrow", "Call me tomorrow", []string{"tomorrow"}},
		{"relative week", "Sometime this week or this month", []string{"this week", "this month"}},
		{"by weekday", "Send it by  Thursday", []string{"by  Thursday"}},
		{"day month ordinal", "Party on 21st March, 2026", []string{"21st March, 2026"}},
		{"month day year", "Closes Dec 25, 2025", []string{"Dec 25, 2025"}},
		{"bare hour", "Standup at 9am", []string{"9am"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractCandidates(tc.text))
		})
	}
}

func TestExtractCandidates_NextWeekdayAndClock(t *testing.T) {
	got := ExtractCandidates("See you next friday at 3:30 PM")
	assert.Contains(t, got, "next friday")
	assert.Contains(t, got, "3:30 PM")
	// passes run in order, so the clock pass lands before the relative pass
	assert.Equal(t, []string{"3:30 PM", "30 PM", "next friday"}, got)
}

func TestExtractCandidates_Empty(t *testing.T) {
	assert.Empty(t, ExtractCandidates(""))
	assert.Empty(t, ExtractCandidates("nothing to see here"))
}

func TestExtractCandidates_LoneMonthIsNotACandidate(t *testing.T) {
	assert.Empty(t, ExtractCandidates("See you in December"))
	assert.Empty(t, ExtractCandidates("Plans for May 2025"))
}

func TestExtractCandidates_ISODateTimeDoesNotLeakParts(t *testing.T) {
	got := ExtractCandidates("Starts 2025-10-31T17:00 sharp")
	assert.Equal(t, []string{"2025-10-31T17:00"}, got)
}

func TestExtractCandidates_CasingIsPreserved(t *testing.T) {
	got := ExtractCandidates("Next Friday works, or next friday after")
	assert.Equal(t, []string{"Next Friday", "next friday"}, got)
}

func TestExtractCandidates_DeduplicatesAcrossPasses(t *testing.T) {
	got := ExtractCandidates("today, today and TODAY at 10:00, again 10:00")
	assert.Equal(t, []string{"10:00", "today", "TODAY"}, got)
}

func TestExtractCandidates_TruncatesAfterAllPasses(t *testing.T) {
	text := "2025-01-01 2025-01-02 2025-01-03 2025-01-04 2025-01-05 2025-01-06 2025-01-07 tomorrow"
	got := ExtractCandidates(text)
	require.Len(t, got, MaxCandidates)
	assert.Equal(t, "2025-01-01", got[0])
	assert.NotContains(t, got, "tomorrow")
}

func TestExtractCandidates_Invariants(t *testing.T) {
	inputs := []string{
		"",
		"Meeting on 2025-10-31T17:00, follow-up 2025-11-03 and 04/11/2025",
		"1 Jan 2026, Jan 2, Feb 3rd, 5pm, 6 PM, 7:15am, 8:00, today, tomorrow, next mon, by sun",
		strings.Repeat("next tue 10am ", 50),
		"Café on 12 mai? Not English, but 12:30 works",
	}
	for _, in := range inputs {
		first := ExtractCandidates(in)
		assert.LessOrEqual(t, len(first), MaxCandidates)

		seen := map[string]bool{}
		for _, c := range first {
			assert.False(t, seen[c], "duplicate candidate %q", c)
			seen[c] = true
		}
		assert.Equal(t, first, ExtractCandidates(in), "extraction must be deterministic")
	}
}

func TestExtractCandidates_UnicodeSpaces(t *testing.T) {
	got := ExtractCandidates("Meet 3:30\u00a0PM on 21\u00a0March, by\u00a0Friday")
	assert.Equal(t, []string{"21\u00a0March", "3:30\u00a0PM", "30\u00a0PM", "by\u00a0Friday"}, got)

	got = ExtractCandidates("\u2003tomorrow 5\u2002pm")
	assert.Equal(t, []string{"5\u2002pm", "tomorrow"}, got)

	got = ExtractCandidates("Closes Dec\u00a025,\u202f2025")
	assert.Equal(t, []string{"Dec\u00a025,\u202f2025"}, got)
}

func TestExtractCandidates_ASCIICaseFoldingOnly(t *testing.T) {
	// Under Unicode folding U+017F matches s and U+212A matches k.
	assert.Empty(t, ExtractCandidates("next \u017fun"))
	assert.Empty(t, ExtractCandidates("this wee\u212a"))
	assert.Equal(t, []string{"6 Pm", "NEXT SUN"}, ExtractCandidates("NEXT SUN at 6 Pm"))
}
