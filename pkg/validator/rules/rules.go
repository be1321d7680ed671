// Package rules is an offline answer validator for the default catalog.
// It needs no network and is deterministic, which makes it the validator of
// choice for replay runs, demos and end-to-end tests.
package rules

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
)

// Rule judges one trimmed answer.
type Rule func(input string) domain.Verdict

var (
	zipPattern   = regexp.MustCompile(`\b(\d{5})\b`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	numberToken  = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)
)

// Validator dispatches on question ID and falls back to accepting any non-empty answer.
type Validator struct {
	rules map[string]Rule
}

// Option configures a Validator.
type Option func(*Validator)

// WithRule overrides or adds the rule for a question.
func WithRule(questionID string, r Rule) Option {
	return func(v *Validator) {
		v.rules[questionID] = r
	}
}

// New returns a validator preloaded with rules for the default catalog.
func New(opts ...Option) *Validator {
	v := &Validator{rules: map[string]Rule{
		catalog.ZipCode:            ZipCode,
		catalog.FullName:           FullName,
		catalog.Email:              Email,
		catalog.AddVehiclePrompt:   YesNo,
		catalog.VehicleIdentifier:  NonEmpty,
		catalog.VehicleUse:         OneOf("commuting", "commercial", "farming", "business"),
		catalog.BlindSpotWarning:   YesNo,
		catalog.CommuteDaysPerWeek: IntBetween(1, 7),
		catalog.CommuteOneWayMiles: IntBetween(1, 500),
		catalog.AnnualMileage:      IntBetween(1, 500000),
		catalog.AddAnotherVehicle:  YesNo,
		catalog.LicenseType:        OneOf("Foreign", "Personal", "Commercial"),
		catalog.LicenseStatus:      OneOf("Valid", "Suspended"),
	}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate implements ports.AnswerValidator.
func (v *Validator) Validate(_ context.Context, input string, q domain.QuestionSpec, _ map[string]any) (domain.Verdict, error) {
	rule, ok := v.rules[q.ID]
	if !ok {
		rule = NonEmpty
	}
	verdict := rule(strings.TrimSpace(input))
	if !verdict.Accepted && verdict.Feedback == "" {
		verdict.Feedback = q.RetryPrompt
	}
	return verdict, nil
}

func accepted(value string) domain.Verdict {
	v := domain.Accept(value)
	v.Feedback = "Got it!"
	return v
}

// NonEmpty accepts any answer with content.
func NonEmpty(input string) domain.Verdict {
	if input == "" {
		return domain.Reject("")
	}
	return accepted(input)
}

// ZipCode accepts the first 5-digit group in the answer.
func ZipCode(input string) domain.Verdict {
	m := zipPattern.FindStringSubmatch(input)
	if m == nil {
		return domain.Reject("")
	}
	return accepted(m[1])
}

// FullName wants at least two words.
func FullName(input string) domain.Verdict {
	name := input
	for _, prefix := range []string{"my name is ", "i am ", "i'm ", "it's "} {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}
	words := strings.Fields(name)
	if len(words) < 2 || len(name) > 50 {
		return domain.Reject("")
	}
	return accepted(strings.Join(words, " "))
}

// Email extracts the first address in the answer.
func Email(input string) domain.Verdict {
	addr := emailPattern.FindString(input)
	if addr == "" {
		return domain.Reject("")
	}
	return accepted(strings.ToLower(addr))
}

var (
	affirmative = map[string]bool{"yes": true, "y": true, "yeah": true, "yep": true, "sure": true, "ok": true, "okay": true, "true": true}
	negative    = map[string]bool{"no": true, "n": true, "nope": true, "nah": true, "false": true}
)

// YesNo normalizes to "yes" or "no".
func YesNo(input string) domain.Verdict {
	for _, w := range strings.FieldsFunc(strings.ToLower(input), notLetter) {
		switch {
		case affirmative[w]:
			return accepted("yes")
		case negative[w]:
			return accepted("no")
		}
	}
	return domain.Reject("")
}

// OneOf accepts an answer naming exactly one of the choices, returned in its canonical spelling.
func OneOf(choices ...string) Rule {
	return func(input string) domain.Verdict {
		words := strings.FieldsFunc(strings.ToLower(input), notLetter)
		var found []string
		for _, c := range choices {
			for _, w := range words {
				if w == strings.ToLower(c) {
					found = append(found, c)
					break
				}
			}
		}
		if len(found) != 1 {
			return domain.Reject(fmt.Sprintf("Please choose one: %s.", strings.Join(choices, ", ")))
		}
		return accepted(found[0])
	}
}

// IntBetween accepts the first number in the answer when it lies in [lo, hi].
func IntBetween(lo, hi int) Rule {
	return func(input string) domain.Verdict {
		tok := numberToken.FindString(input)
		if tok == "" {
			return domain.Reject("")
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
		if err != nil {
			return domain.Reject("")
		}
		n := int(f)
		if n < lo || n > hi {
			return domain.Reject(fmt.Sprintf("Please provide a number between %d and %d.", lo, hi))
		}
		return accepted(strconv.Itoa(n))
	}
}

func notLetter(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
}
