package perturb

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/perturbia/perturbia/internal/model"
)

// Money surface forms. Compact is a decimal with a scale word and optional
// currency markers; expanded is a comma-separated figure of at least 1,000.
var (
	compactNumberRe  = regexp.MustCompile(`(?i)(\$\s*)?\b(\d+(?:\.\d+)?)\s*(thousand|million|billion|trillion)\b(\s+dollars\b)?`)
	expandedNumberRe = regexp.MustCompile(`(\$\s*)?\b(\d{1,3}(?:,\d{3})+)(\.\d+)?\b`)
)

var scaleFactor = map[string]int64{
	"thousand": 1_000,
	"million":  1_000_000,
	"billion":  1_000_000_000,
	"trillion": 1_000_000_000_000,
}

// scalesDesc orders scales largest first for compacting expanded figures
var scalesDesc = []struct {
	word   string
	factor int64
}{
	{"trillion", 1_000_000_000_000},
	{"billion", 1_000_000_000},
	{"million", 1_000_000},
	{"thousand", 1_000},
}

// numberMatch is one regex-level money candidate
type numberMatch struct {
	start, end int
	compact    bool
	currency   bool   // $ prefix or "dollars" suffix present
	mantissa   string // Compact form: decimal before the scale word
	scale      int64  // Compact form: scale word factor
	value      string // Expanded form: digits with separators removed
	fraction   string // Expanded form: digits after the decimal point
}

// findNumbers collects money candidates of both forms, leftmost first
func findNumbers(text string) []numberMatch {
	var matches []numberMatch

	for _, m := range compactNumberRe.FindAllStringSubmatchIndex(text, -1) {
		if digitAdjacent(text, m[0], m[2] >= 0) {
			continue
		}
		matches = append(matches, numberMatch{
			start:    m[0],
			end:      m[1],
			compact:  true,
			currency: m[2] >= 0 || m[8] >= 0,
			mantissa: text[m[4]:m[5]],
			scale:    scaleFactor[strings.ToLower(text[m[6]:m[7]])],
		})
	}

	for _, m := range expandedNumberRe.FindAllStringSubmatchIndex(text, -1) {
		if digitAdjacent(text, m[0], m[2] >= 0) {
			continue
		}
		if followedByScaleWord(text, m[1]) {
			continue
		}
		var frac string
		if m[6] >= 0 {
			frac = text[m[6]+1 : m[7]] // Skip the point itself
		}
		matches = append(matches, numberMatch{
			start:    m[0],
			end:      m[1],
			currency: m[2] >= 0,
			value:    strings.ReplaceAll(text[m[4]:m[5]], ",", ""),
			fraction: frac,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].start < matches[j].start
	})

	return matches
}

// digitAdjacent reports whether a bare-number match starts mid-number,
// like the "500" inside "14,500". A $ prefix breaks adjacency.
func digitAdjacent(text string, start int, hasDollar bool) bool {
	if hasDollar || start == 0 {
		return false
	}
	c := text[start-1]
	return c == ',' || c == '.' || (c >= '0' && c <= '9')
}

// followedByScaleWord detects thousands-denominated figures such as
// "$32,253 thousand", whose comma part must never be rewritten alone
func followedByScaleWord(text string, end int) bool {
	i := end
	for i < len(text) && text[i] == ' ' {
		i++
	}
	j := i
	for j < len(text) && isASCIILetter(text[j]) {
		j++
	}
	_, ok := scaleFactor[strings.ToLower(text[i:j])]
	return ok
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// NumberPerturber rewrites one money figure between compact scale-word
// notation and expanded comma-separated notation.
type NumberPerturber struct{}

// NewNumberPerturber creates a new number rephrase perturber
func NewNumberPerturber() *NumberPerturber {
	return &NumberPerturber{}
}

// Kind identifies the perturbation
func (p *NumberPerturber) Kind() model.PerturbationKind {
	return model.KindNumberRephrase
}

// Perturb rewrites the leftmost convertible figure. Conversions use integer
// arithmetic only; any candidate that cannot convert exactly is skipped.
func (p *NumberPerturber) Perturb(_ context.Context, text string, _ *Rand) (Edit, bool) {
	for _, m := range findNumbers(text) {
		var to string
		var ok bool
		if m.compact {
			to, ok = expandCompact(m)
		} else {
			to, ok = compactExpanded(m)
		}
		if !ok {
			continue
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

// expandCompact turns "14.5 million" into "14,500,000".
// The mantissa is treated as scaled integer digits so no precision is lost.
func expandCompact(m numberMatch) (string, bool) {
	intPart, fracPart, _ := strings.Cut(m.mantissa, ".")
	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" || len(digits) > 18 {
		return "", false
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", false
	}
	if n > math.MaxInt64/m.scale {
		return "", false
	}

	total := n * m.scale
	den := pow10(len(fracPart))
	whole := total / den
	rem := total % den

	// A figure below 1,000 has no expanded form worth writing
	if whole < 1000 {
		return "", false
	}

	out := addThousands(strconv.FormatInt(whole, 10))
	if rem != 0 {
		cents := (rem*100 + den/2) / den // Round half up to two decimals
		if cents >= 100 {
			whole++
			cents -= 100
			out = addThousands(strconv.FormatInt(whole, 10))
		}
		out = fmt.Sprintf("%s.%02d", out, cents)
	}

	if m.currency {
		out = "$" + out
	}
	return out, true
}

// compactExpanded turns "$14,500,000" into "$14.5 million": the largest
// scale whose mantissa is at least 1, has at most one decimal place, and
// round-trips exactly. Anything else stays as written.
func compactExpanded(m numberMatch) (string, bool) {
	// Cents never divide into scale words exactly
	if strings.Trim(m.fraction, "0") != "" {
		return "", false
	}

	value, err := strconv.ParseInt(m.value, 10, 64)
	if err != nil || value > math.MaxInt64/10 {
		return "", false
	}

	for _, s := range scalesDesc {
		if value*10%s.factor != 0 {
			continue
		}
		tenths := value * 10 / s.factor
		if tenths < 10 {
			continue
		}

		mantissa := strconv.FormatInt(tenths/10, 10)
		if tenths%10 != 0 {
			mantissa = fmt.Sprintf("%d.%d", tenths/10, tenths%10)
		}

		out := mantissa + " " + s.word
		if m.currency {
			out = "$" + out
		}
		return out, true
	}

	return "", false
}

func pow10(n int) int64 {
	out := int64(1)
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}

// addThousands inserts comma separators into a digit string
func addThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
