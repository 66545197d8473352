package perturb

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/perturbia/perturbia/internal/model"
)

// Date surface forms. Numeric dates accept /, - and . separators and
// two-digit years; spelled dates accept ordinal day suffixes and an
// optional comma before the year.
var (
	numericDateRe = regexp.MustCompile(`\b(0?[1-9]|1[0-2])([/\-.])(0?[1-9]|[12][0-9]|3[01])([/\-.])((?:19|20)\d{2}|\d{2})\b`)
	spelledDateRe = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(0?[1-9]|[12][0-9]|3[01])(?:st|nd|rd|th)?,?\s+((?:19|20)\d{2})\b`)
)

var monthName = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthIndex = func() map[string]int {
	m := make(map[string]int, len(monthName))
	for i, name := range monthName {
		m[strings.ToLower(name)] = i + 1
	}
	return m
}()

// dateMatch is one regex-level date candidate; calendar validity is checked
// separately so an impossible date falls through to the next candidate
type dateMatch struct {
	start, end int
	numeric    bool
	month      int
	day        int
	year       int
}

// findDates collects date candidates of both forms, leftmost first.
// A numeric candidate wins a tie at the same offset.
func findDates(text string) []dateMatch {
	var matches []dateMatch

	for _, m := range numericDateRe.FindAllStringSubmatchIndex(text, -1) {
		// Mixed separators like 12/31-2023 are not a date
		if text[m[4]:m[5]] != text[m[8]:m[9]] {
			continue
		}
		year := atoi(text[m[10]:m[11]])
		if m[11]-m[10] == 2 {
			year += 2000 // Two-digit years read as 20YY
		}
		matches = append(matches, dateMatch{
			start:   m[0],
			end:     m[1],
			numeric: true,
			month:   atoi(text[m[2]:m[3]]),
			day:     atoi(text[m[6]:m[7]]),
			year:    year,
		})
	}

	for _, m := range spelledDateRe.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, dateMatch{
			start: m[0],
			end:   m[1],
			month: monthIndex[strings.ToLower(text[m[2]:m[3]])],
			day:   atoi(text[m[4]:m[5]]),
			year:  atoi(text[m[6]:m[7]]),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].numeric && !matches[j].numeric
	})

	return matches
}

// validCalendarDate rejects candidates like February 30
func validCalendarDate(year, month, day int) bool {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && t.Month() == time.Month(month) && t.Day() == day
}

// DatePerturber rewrites one date between numeric MM/DD/YYYY and spelled
// "MonthName D, YYYY" forms.
type DatePerturber struct{}

// NewDatePerturber creates a new date format perturber
func NewDatePerturber() *DatePerturber {
	return &DatePerturber{}
}

// Kind identifies the perturbation
func (p *DatePerturber) Kind() model.PerturbationKind {
	return model.KindDateFormat
}

// Perturb rewrites the leftmost valid date. The choice among multiple dates
// is positional and deterministic; the RNG is never consulted.
func (p *DatePerturber) Perturb(_ context.Context, text string, _ *Rand) (Edit, bool) {
	for _, m := range findDates(text) {
		if !validCalendarDate(m.year, m.month, m.day) {
			continue
		}

		var to string
		if m.numeric {
			to = fmt.Sprintf("%s %d, %d", monthName[m.month-1], m.day, m.year)
		} else {
			to = fmt.Sprintf("%02d/%02d/%04d", m.month, m.day, m.year)
		}

		return Edit{
			From:  text[m.start:m.end],
			To:    to,
			Start: m.start,
			End:   m.end,
		}, true
	}

	return Edit{}, false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
