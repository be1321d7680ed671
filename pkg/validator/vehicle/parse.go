// Package vehicle validates vehicle identity answers against a vehicle registry
// (NHTSA vPIC compatible), either by VIN or by year, make and model.
package vehicle

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// DefaultMaxYear is the latest model year accepted.
const DefaultMaxYear = 2026

const minYear = 1900

// Query is a parsed vehicle identity answer. Either VIN or Year/Make is set.
type Query struct {
	VIN   string
	Year  int
	Make  string
	Model string // optional
}

// Key normalizes the query for caching.
func (q Query) Key() string {
	if q.VIN != "" {
		return "vin:" + strings.ToUpper(q.VIN)
	}
	return strings.ToLower(fmt.Sprintf("ymm:%d:%s:%s", q.Year, q.Make, q.Model))
}

// InputError is a user-facing rejection produced while parsing.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// Parse applies the identity grammar: 17 alphanumerics (spaces and dashes ignored)
// are a VIN; anything else must be "YEAR MAKE [MODEL...]".
func Parse(input string, maxYear int) (Query, error) {
	if maxYear <= 0 {
		maxYear = DefaultMaxYear
	}

	cleaned := strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(input))
	if len(cleaned) == 17 && isAlnum(cleaned) {
		return Query{VIN: strings.ToUpper(cleaned)}, nil
	}

	parts := strings.Fields(strings.ReplaceAll(input, ",", " "))
	if len(parts) < 2 {
		return Query{}, &InputError{"Please provide either a VIN or at least the Year and Make of your vehicle."}
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Query{}, &InputError{"Please start with the year (e.g., '2020 Honda Civic')."}
	}
	if year < minYear || year > maxYear {
		return Query{}, &InputError{fmt.Sprintf("%d doesn't seem like a valid year. Please provide a year between %d-%d.", year, minYear, maxYear)}
	}

	return Query{
		Year:  year,
		Make:  parts[1],
		Model: strings.Join(parts[2:], " "),
	}, nil
}

func isAlnum(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
