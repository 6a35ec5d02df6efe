// Package normalize contains the pure field parsers shared by all source
// adapters. Every function works on literal strings, does no I/O, and turns
// unparseable input into a zero value rather than an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Address is the structured form of the legacy composite address column.
type Address struct {
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
}

// HobbyEntry is one parsed hobby with an optional 0-100 rating.
type HobbyEntry struct {
	Name   string
	Rating *int
}

var (
	streetRe = regexp.MustCompile(`^(.+?)\s+(\d+.*)$`)
	cityRe   = regexp.MustCompile(`^(\d+)\s+(.+)$`)
	hobbyRe  = regexp.MustCompile(`^(.+?)\s*%(\d+)%$`)
)

// serialEpoch is the spreadsheet serial-day base (1899-12-30, which absorbs
// the fictitious 1900-02-29 of the original Lotus date system).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Email canonicalizes an email for identity resolution: trimmed and
// lowercased, since the legacy sources disagree on casing.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitName splits a "Nachname, Vorname" composite. Without a comma the
// whole string is treated as the last name.
func SplitName(s string) (first, last string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	parts := strings.SplitN(s, ",", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])
	}
	return "", s
}

// ParseAddress splits a "Straße Nr, PLZ Ort" composite. Degraded inputs keep
// whatever could be recognized: a missing comma yields street-only, a city
// segment without a leading digit run yields city-only.
func ParseAddress(s string) Address {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}
	}

	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Address{Street: s}
	}

	addr := Address{}

	streetPart := strings.TrimSpace(parts[0])
	if m := streetRe.FindStringSubmatch(streetPart); m != nil {
		addr.Street = strings.TrimSpace(m[1])
		addr.HouseNumber = strings.TrimSpace(m[2])
	} else {
		addr.Street = streetPart
	}

	cityPart := strings.TrimSpace(parts[1])
	if m := cityRe.FindStringSubmatch(cityPart); m != nil {
		addr.PostalCode = m[1]
		addr.City = strings.TrimSpace(m[2])
	} else {
		addr.City = cityPart
	}

	return addr
}

// ParseHobbies parses a semicolon-delimited hobby list. Each entry may carry
// a "%NN%" suffix interpreted as a 0-100 rating; entries without one (or
// with an out-of-range value) get a nil rating.
func ParseHobbies(s string) []HobbyEntry {
	var hobbies []HobbyEntry
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if m := hobbyRe.FindStringSubmatch(part); m != nil {
			entry := HobbyEntry{Name: strings.TrimSpace(m[1])}
			if v, err := strconv.Atoi(m[2]); err == nil && v <= 100 {
				entry.Rating = &v
			}
			hobbies = append(hobbies, entry)
			continue
		}

		hobbies = append(hobbies, HobbyEntry{Name: part})
	}
	return hobbies
}

// FromSerial converts a spreadsheet serial-day number to a date.
func FromSerial(serial float64) time.Time {
	return serialEpoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
}

// ParseDate parses the date formats seen in the legacy dumps: "DD.MM.YYYY"
// first, then a best-effort free-form parse. Unparseable input yields nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if t, err := time.ParseInLocation("02.01.2006", s, time.UTC); err == nil {
		return &t
	}

	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return &t
	}
	return nil
}

// ParseExcelDate handles a raw spreadsheet cell: a plain number is a
// serial-day value, anything else goes through ParseDate.
func ParseExcelDate(cell string) *time.Time {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(cell, 64); err == nil {
		t := FromSerial(serial)
		return &t
	}
	return ParseDate(cell)
}

// Gender maps the legacy German gender markers onto the canonical values.
// Unknown markers pass through lowercased.
func Gender(s string) string {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "":
		return ""
	case "m", "männlich":
		return "male"
	case "w", "weiblich":
		return "female"
	case "nonbinary", "nb":
		return "nonbinary"
	default:
		return v
	}
}

// PreferredGender maps the "Interessiert an" column. "alle"/"both" collapse
// to "both"; everything else follows Gender.
func PreferredGender(s string) string {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "alle", "both", "beide":
		return "both"
	default:
		return Gender(s)
	}
}
