// Package plural renders counts with locale-correct unit labels.
package plural

import "strconv"

// Form indexes into a Titles set.
type Form int

const (
	One Form = iota
	Few
	Many
)

// Titles holds the unit label for each Form, in One, Few, Many order.
type Titles [3]string

// Rule maps a count to its plural form.
type Rule func(n int) Form

// Russian is the East Slavic rule: 1, 21, 31… take One; 2–4, 22–24… take Few;
// everything else, including 11–19, takes Many.
func Russian(n int) Form {
	n = abs(n)
	if mod100 := n % 100; mod100 >= 11 && mod100 <= 19 {
		return Many
	}
	switch mod10 := n % 10; {
	case mod10 == 1:
		return One
	case mod10 >= 2 && mod10 <= 4:
		return Few
	default:
		return Many
	}
}

// English uses One for exactly 1 and Many otherwise.
func English(n int) Form {
	if abs(n) == 1 {
		return One
	}
	return Many
}

// Decline picks the title matching n under rule.
func Decline(n int, titles Titles, rule Rule) string {
	return titles[rule(n)]
}

// Locale bundles a rule with the unit titles the API renders.
type Locale struct {
	Tag   string
	Rule  Rule
	Hours Titles
}

var locales = map[string]Locale{
	"ru": {Tag: "ru", Rule: Russian, Hours: Titles{" час", " часа", " часов"}},
	"en": {Tag: "en", Rule: English, Hours: Titles{" hour", " hours", " hours"}},
}

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "ru"

// Lookup returns the locale registered under tag.
func Lookup(tag string) (Locale, bool) {
	l, ok := locales[tag]
	return l, ok
}

// FormatHours renders n followed by its declined hour unit, e.g. "5 часов".
func (l Locale) FormatHours(n int) string {
	return strconv.Itoa(n) + Decline(n, l.Hours, l.Rule)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
