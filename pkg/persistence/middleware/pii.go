package middleware

import (
	"fmt"
	"regexp"

	"github.com/aretw0/intake/pkg/domain"
)

// Mask replaces personal answers on inspection and transcript surfaces.
const Mask = "***"

// DefaultPIIPatterns match the personal fields of the default catalog.
var DefaultPIIPatterns = []string{"^full_name$", "^email$"}

// Masker hides answers whose question ID matches any pattern.
// It works on copies for outbound surfaces only. The state a driver keeps
// working from must stay intact, or the compiled document would carry the mask.
// A nil Masker masks nothing.
type Masker struct {
	patterns []*regexp.Regexp
}

// NewMasker compiles the patterns. It returns nil when there are none.
func NewMasker(patternStrings []string) (*Masker, error) {
	if len(patternStrings) == 0 {
		return nil, nil
	}
	m := &Masker{patterns: make([]*regexp.Regexp, len(patternStrings))}
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PII pattern %q: %w", p, err)
		}
		m.patterns[i] = re
	}
	return m, nil
}

// Matches reports whether answers to questionID are personal.
func (m *Masker) Matches(questionID string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.patterns {
		if p.MatchString(questionID) {
			return true
		}
	}
	return false
}

// State returns a copy of s with personal answers and turns masked.
func (m *Masker) State(s *domain.State) *domain.State {
	if s == nil {
		return nil
	}
	masked := s.Clone()
	if m == nil {
		return masked
	}
	m.maskMap(masked.Answers)
	m.maskMap(masked.CurrentVehicle)
	for _, v := range masked.CompletedVehicles {
		m.maskMap(v)
	}
	for i, turn := range masked.RecentTurns {
		if m.Matches(turn.QuestionID) {
			masked.RecentTurns[i].Input = Mask
		}
	}
	return masked
}

func (m *Masker) maskMap(values map[string]string) {
	for k := range values {
		if m.Matches(k) {
			values[k] = Mask
		}
	}
}
