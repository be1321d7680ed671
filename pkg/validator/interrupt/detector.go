// Package interrupt detects users who want out of the survey and answers them
// instead of the current question.
package interrupt

import (
	"context"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
)

// DefaultKeywords trigger an interrupt when found anywhere in the answer.
var DefaultKeywords = []string{
	"frustrated", "angry", "annoyed", "upset", "irritated",
	"speak to human", "talk to human", "human", "real person",
	"agent", "representative", "help", "this is not working",
	"i give up", "forget it", "never mind", "this sucks",
	"terrible", "awful", "useless", "stop", "quit",
}

// Responder produces the message shown when an interrupt is detected.
type Responder interface {
	Respond(ctx context.Context) string
}

// Detector is a keyword interceptor for the validator chain.
type Detector struct {
	keywords  []string
	responder Responder
}

// Option configures a Detector.
type Option func(*Detector)

// WithKeywords replaces the keyword list.
func WithKeywords(keywords ...string) Option {
	return func(d *Detector) {
		d.keywords = d.keywords[:0]
		for _, k := range keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				d.keywords = append(d.keywords, k)
			}
		}
	}
}

// WithResponder sets how the interrupt is answered.
func WithResponder(r Responder) Option {
	return func(d *Detector) {
		d.responder = r
	}
}

// NewDetector creates a detector using DefaultKeywords and the canned response.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		keywords:  append([]string(nil), DefaultKeywords...),
		responder: Static(CannedResponse),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the first keyword contained in input.
func (d *Detector) Detect(input string) (string, bool) {
	lower := strings.ToLower(input)
	for _, k := range d.keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

// Intercept implements validator.Interceptor.
func (d *Detector) Intercept(ctx context.Context, input string, q domain.QuestionSpec) (domain.Verdict, bool, error) {
	if _, ok := d.Detect(input); !ok {
		return domain.Verdict{}, false, nil
	}
	return domain.InterruptVerdict(d.responder.Respond(ctx)), true, nil
}
