// Package extract parses free-text customer utterances into typed booking
// fields. Extraction is stateless and deterministic: unparseable input yields
// an empty patch, never an error. Each rule runs independently, so a single
// utterance may fill several slots at once.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bookline-ai/booking-engine/internal/model"
)

// Extractor holds the reference data extraction rules match against.
type Extractor struct {
	// Activities is the agent's catalog; utterances are matched against
	// activity names by case-insensitive substring.
	Activities []model.Activity

	// TimeSlots is the fixed grid of offerable times ("2:30 PM"). A clock
	// time that matches no slot yields no time.
	TimeSlots []string

	// Now supplies the clock used to resolve relative dates. Defaults to
	// time.Now when nil.
	Now func() time.Time
}

// New creates an extractor for the given agent configuration.
func New(agent *model.AgentConfig) *Extractor {
	return &Extractor{
		Activities: agent.Activities,
		TimeSlots:  agent.TimeSlots,
	}
}

var (
	timePattern      = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)\b`)
	bareHourPattern  = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})\b`)
	partyPattern     = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:people|persons?|guests?|players?|adults?|kids?|pax)\b`)
	partyOfPattern   = regexp.MustCompile(`(?i)\b(?:party|group|table)\s+of\s+(\d{1,3})\b`)
	partyForPattern  = regexp.MustCompile(`(?i)\bfor\s+(\d{1,3})\b`)
	bareIntPattern   = regexp.MustCompile(`^\s*(\d{1,3})\s*$`)
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	monthDayPattern  = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
)

// Fixed order keeps extraction deterministic when two weekday names appear.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"sunday", time.Sunday},
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// Extract parses one utterance into a slot patch. expected carries the slot
// the most recent assistant prompt asked for, enabling the bare-integer
// party-size rule; pass "" when no slot is expected.
func (e *Extractor) Extract(utterance string, expected model.SlotName) model.BookingSlots {
	var patch model.BookingSlots

	if id, ok := e.matchActivity(utterance); ok {
		patch.ActivityID = id
	}
	if date, ok := e.matchDate(utterance); ok {
		patch.Date = date
	}
	if slot, ok := e.matchTime(utterance); ok {
		patch.Time = slot
	}
	if n, ok := matchPartySize(utterance, expected); ok {
		patch.PartySize = n
	}
	if email, ok := matchEmail(utterance); ok {
		patch.CustomerEmail = email
	}

	return patch
}

// matchActivity finds the catalog activity whose name occurs earliest in the
// utterance. When several names are mentioned, the first occurrence in
// reading order wins; change the comparison below to alter the tie-break.
func (e *Extractor) matchActivity(utterance string) (string, bool) {
	lower := strings.ToLower(utterance)

	bestID := ""
	bestIdx := -1
	for _, act := range e.Activities {
		name := strings.ToLower(act.Name)
		if name == "" {
			continue
		}
		idx := strings.Index(lower, name)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			bestID = act.ID
			bestIdx = idx
		}
	}
	return bestID, bestIdx >= 0
}

func (e *Extractor) matchDate(utterance string) (string, bool) {
	lower := strings.ToLower(utterance)
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if strings.Contains(lower, "today") || strings.Contains(lower, "tonight") {
		return today.Format("2006-01-02"), true
	}
	if strings.Contains(lower, "tomorrow") {
		return today.AddDate(0, 0, 1).Format("2006-01-02"), true
	}
	for _, wd := range weekdays {
		if !containsWord(lower, wd.name) {
			continue
		}
		// Next occurrence of the weekday; the same weekday means a week out.
		ahead := (int(wd.day) - int(today.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return today.AddDate(0, 0, ahead).Format("2006-01-02"), true
	}

	if m := isoDatePattern.FindStringSubmatch(utterance); m != nil {
		if t, err := time.Parse("2006-01-02", m[0]); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	if m := slashDatePattern.FindStringSubmatch(utterance); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			y, _ := strconv.Atoi(m[3])
			if y < 100 {
				y += 2000
			}
			year = y
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location())
			if t.Day() == day {
				return t.Format("2006-01-02"), true
			}
		}
	}
	if m := monthDayPattern.FindStringSubmatch(lower); m != nil {
		month, ok := months[strings.TrimSuffix(m[1], ".")]
		if ok {
			day, _ := strconv.Atoi(m[2])
			if day >= 1 && day <= 31 {
				t := time.Date(today.Year(), month, day, 0, 0, 0, 0, today.Location())
				if t.Day() == day {
					// A month/day already behind us rolls into next year.
					if t.Before(today) {
						t = t.AddDate(1, 0, 0)
					}
					return t.Format("2006-01-02"), true
				}
			}
		}
	}

	return "", false
}

// matchTime recognizes clock times and resolves them against the offered slot
// grid; a time matching no known slot yields nothing.
func (e *Extractor) matchTime(utterance string) (string, bool) {
	if m := timePattern.FindStringSubmatch(utterance); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		meridiem := "AM"
		if strings.HasPrefix(strings.ToLower(m[3]), "p") {
			meridiem = "PM"
		}
		if hour >= 1 && hour <= 12 && minute >= 0 && minute <= 59 {
			candidate := strings.ToLower(strconv.Itoa(hour) + ":" + pad2(minute) + " " + meridiem)
			for _, slot := range e.TimeSlots {
				if normalizeSlot(slot) == candidate {
					return slot, true
				}
			}
		}
		return "", false
	}

	// Bare hour ("at 2"): match by hour against the grid, first slot wins.
	if m := bareHourPattern.FindStringSubmatch(utterance); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour >= 1 && hour <= 12 {
			prefix := strconv.Itoa(hour) + ":"
			for _, slot := range e.TimeSlots {
				if strings.HasPrefix(normalizeSlot(slot), prefix) {
					return slot, true
				}
			}
		}
	}

	return "", false
}

func matchPartySize(utterance string, expected model.SlotName) (int, bool) {
	for _, re := range []*regexp.Regexp{partyPattern, partyOfPattern} {
		if m := re.FindStringSubmatch(utterance); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n, true
			}
		}
	}
	// "for 4", unless the number is really a clock time ("for 2:30", "for 4pm").
	if m := partyForPattern.FindStringSubmatchIndex(utterance); m != nil {
		rest := strings.ToLower(strings.TrimLeft(utterance[m[3]:], " "))
		if !strings.HasPrefix(utterance[m[3]:], ":") &&
			!strings.HasPrefix(rest, "am") && !strings.HasPrefix(rest, "pm") {
			if n, err := strconv.Atoi(utterance[m[2]:m[3]]); err == nil && n > 0 {
				return n, true
			}
		}
	}
	// A bare integer counts only when the assistant just asked for a size.
	if expected == model.SlotPartySize {
		if m := bareIntPattern.FindStringSubmatch(utterance); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}

// matchEmail accepts any token containing "@" with a dotted domain suffix.
// Deliberately loose; stricter validation belongs to the checkout flow.
func matchEmail(utterance string) (string, bool) {
	for _, token := range strings.Fields(utterance) {
		token = strings.Trim(token, ".,;:!?()<>\"'")
		at := strings.Index(token, "@")
		if at <= 0 || at == len(token)-1 {
			continue
		}
		domain := token[at+1:]
		dot := strings.LastIndex(domain, ".")
		if dot <= 0 || dot == len(domain)-1 {
			continue
		}
		return token, true
	}
	return "", false
}

func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isLetter(s[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(s) || !isLetter(s[afterIdx])
		if before && after {
			return true
		}
		idx = i + len(word)
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// normalizeSlot lowercases a grid entry and strips the zero-pad on the hour
// so "02:30 PM" and "2:30pm" compare equal.
func normalizeSlot(slot string) string {
	s := strings.ToLower(strings.TrimSpace(slot))
	s = strings.TrimPrefix(s, "0")
	if i := strings.IndexAny(s, "ap"); i > 0 && !strings.Contains(s[:i], " ") {
		s = s[:i] + " " + s[i:]
	}
	s = strings.Join(strings.Fields(s), " ")
	return s
}
