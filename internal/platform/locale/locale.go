// Package locale formats dates, numbers and file names for Brazilian
// Portuguese readers.
package locale

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DayLayout is the wire layout of a calendar day.
const DayLayout = "2006-01-02"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Today returns the current calendar day in loc as YYYY-MM-DD.
func Today(loc *time.Location) string {
	return Day(time.Now(), loc)
}

// Day formats t as YYYY-MM-DD in loc.
func Day(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DayLayout)
}

// ValidDay reports whether s is a YYYY-MM-DD calendar day.
func ValidDay(s string) bool {
	_, err := time.Parse(DayLayout, s)
	return err == nil
}

// Date renders a YYYY-MM-DD day as dd/mm/yyyy. Other input is returned as is.
func Date(day string) string {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return day
	}
	return t.Format("02/01/2006")
}

// DateTime renders t as dd/mm/yyyy hh:mm.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}

// Clock renders t as hh:mm.
func Clock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04")
}

// Quantity renders v with pt-BR separators, e.g. 1.250,5.
func Quantity(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FileSafe strips accents and path separators so s can be used in a
// Content-Disposition file name.
func FileSafe(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || unicode.IsSpace(r):
			return '-'
		case r > unicode.MaxASCII || r == '"' || unicode.IsControl(r):
			return -1
		}
		return r
	}, out)
	return out
}
