// Package datefmt resolves the loosely formatted dates found in comment exports
package datefmt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	ptime "github.com/maurolguin1/ig-moderation/internal/platform/time"
)

// Diagnostic notes attached to a Resolution
const (
	NoteMissing    = "missing field: Date"
	NoteNormalized = "date normalized"
)

// Resolution is the outcome of resolving one raw cell
// Instant is nil when the value could not be understood
type Resolution struct {
	Instant  *time.Time
	Original string
	Note     string
}

// Resolver turns a raw cell into an instant
type Resolver interface {
	Resolve(raw any) Resolution
}

var (
	isoPrefix   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	slashPrefix = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})`)
	// five digit day counts cover 1927 to 2173; shorter numbers are more likely years or ids
	serialText = regexp.MustCompile(`^\d{5}(\.\d+)?$`)
)

// isoLayouts are tried in order for values with a YYYY-MM-DD prefix
// Fractional seconds after the seconds field are accepted by every layout with seconds
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// looseLayouts back the last resort parse
var looseLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
	"January 2, 2006",
	"January 2, 2006 15:04",
	"Jan 2, 2006",
	"Jan 2, 2006 15:04",
	"2 January 2006",
	"2 Jan 2006",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"2006.01.02",
}

// excelEpoch is day zero for spreadsheet serial dates (1900 system, leap bug included)
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Heuristic is the default Resolver
// Slash dates are read day first unless the second field can only be a day
type Heuristic struct{}

var _ Resolver = Heuristic{}

// New returns the default heuristic resolver
func New() Heuristic { return Heuristic{} }

// Resolve applies, in order: blank check, ISO prefix, slash heuristic, serial day count, loose parse
func (Heuristic) Resolve(raw any) Resolution {
	original := stringify(raw)
	if strings.TrimSpace(original) == "" {
		return Resolution{Original: original, Note: NoteMissing}
	}

	switch v := raw.(type) {
	case time.Time:
		return Resolution{Instant: ptime.UTC(v), Original: original}
	case float64, float32, int, int64, int32:
		return Resolution{Instant: fromSerial(toFloat(v)), Original: original}
	}

	if isoPrefix.MatchString(original) {
		return Resolution{Instant: parseLayouts(strings.TrimSpace(original), isoLayouts), Original: original}
	}

	if m := slashPrefix.FindStringSubmatch(original); m != nil {
		return Resolution{Instant: fromSlash(m[1], m[2], m[3]), Original: original, Note: NoteNormalized}
	}

	s := strings.TrimSpace(original)
	if serialText.MatchString(s) {
		f, _ := strconv.ParseFloat(s, 64)
		return Resolution{Instant: fromSerial(f), Original: original}
	}
	return Resolution{Instant: parseLayouts(s, looseLayouts), Original: original}
}

// fromSlash builds UTC midnight from a/b/c.
// a is the day unless a<=12 and b>12, in which case the fields were month first
func fromSlash(as, bs, cs string) *time.Time {
	a, _ := strconv.Atoi(as)
	b, _ := strconv.Atoi(bs)
	year, _ := strconv.Atoi(cs)

	day, month := a, b
	if a <= 12 && b > 12 {
		day, month = b, a
	}
	if year < 100 {
		year += 2000
	}
	return calendarDate(year, month, day)
}

// calendarDate rejects values time.Date would silently roll over
func calendarDate(year, month, day int) *time.Time {
	if month < 1 || month > 12 || day < 1 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return nil
	}
	return &t
}

func parseLayouts(s string, layouts []string) *time.Time {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ptime.UTC(t)
		}
	}
	return nil
}

func fromSerial(f float64) *time.Time {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f > 2958465 {
		return nil
	}
	days := math.Floor(f)
	frac := f - days
	t := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(math.Round(frac*86400)) * time.Second)
	return &t
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	}
	return math.NaN()
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(raw)
}
