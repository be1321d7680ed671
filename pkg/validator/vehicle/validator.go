package vehicle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of cached lookups.
const DefaultCacheSize = 256

// Registry is the lookup surface the validator needs.
type Registry interface {
	DecodeVIN(ctx context.Context, vin string) (DecodedVIN, error)
	ModelsForMakeYear(ctx context.Context, manufacturer string, year int) ([]string, error)
}

// Validator is a ports.AnswerValidator for the vehicle identity question.
// Registry outages reject the answer rather than failing, so the user can retry.
type Validator struct {
	registry Registry
	cache    *lru.Cache[string, domain.Verdict]
	maxYear  int
	logger   *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithMaxYear sets the latest accepted model year.
func WithMaxYear(year int) Option {
	return func(v *Validator) {
		v.maxYear = year
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// NewValidator creates a vehicle validator with an LRU cache of cacheSize lookups.
func NewValidator(registry Registry, cacheSize int, opts ...Option) (*Validator, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, domain.Verdict](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create lookup cache: %w", err)
	}
	v := &Validator{
		registry: registry,
		cache:    cache,
		maxYear:  DefaultMaxYear,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Validate implements ports.AnswerValidator.
func (v *Validator) Validate(ctx context.Context, input string, q domain.QuestionSpec, vctx map[string]any) (domain.Verdict, error) {
	query, err := Parse(input, v.maxYear)
	if err != nil {
		return domain.Reject(err.Error()), nil
	}

	key := query.Key()
	if cached, ok := v.cache.Get(key); ok {
		v.logger.Debug("vehicle lookup cache hit", "key", key)
		return cached, nil
	}

	var verdict domain.Verdict
	if query.VIN != "" {
		verdict, err = v.byVIN(ctx, query.VIN)
	} else {
		verdict, err = v.byYearMakeModel(ctx, query)
	}
	if err != nil {
		v.logger.Warn("vehicle registry lookup failed", "key", key, "err", err)
		return domain.Reject(outageMessage(err, query)), nil
	}

	v.cache.Add(key, verdict)
	return verdict, nil
}

func (v *Validator) byVIN(ctx context.Context, vin string) (domain.Verdict, error) {
	d, err := v.registry.DecodeVIN(ctx, vin)
	if err != nil {
		return domain.Verdict{}, err
	}
	if d.ErrorCode != "" && d.ErrorCode != "0" {
		if d.ErrorText != "" {
			return domain.Reject("Invalid VIN: " + d.ErrorText), nil
		}
		return domain.Reject("This VIN does not appear to be valid."), nil
	}
	if d.Make == "" || d.Model == "" || d.ModelYear == "" {
		return domain.Reject("Unable to verify this VIN. Please provide Year, Make, and Model instead."), nil
	}

	info := fmt.Sprintf("%s %s %s", d.ModelYear, d.Make, d.Model)
	if d.BodyClass != "" {
		info += " (" + d.BodyClass + ")"
	}
	return accepted(info), nil
}

func (v *Validator) byYearMakeModel(ctx context.Context, q Query) (domain.Verdict, error) {
	models, err := v.registry.ModelsForMakeYear(ctx, q.Make, q.Year)
	if err != nil {
		return domain.Verdict{}, err
	}
	if len(models) == 0 {
		return domain.Reject(fmt.Sprintf("I couldn't find any %d %s vehicles. Please check the year and make and try again.", q.Year, q.Make)), nil
	}
	if q.Model == "" {
		return accepted(fmt.Sprintf("%d %s", q.Year, q.Make)), nil
	}

	want := strings.ToLower(q.Model)
	for _, m := range models {
		if strings.Contains(strings.ToLower(m), want) {
			return accepted(fmt.Sprintf("%d %s %s", q.Year, q.Make, m)), nil
		}
	}

	candidates := models
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}
	return domain.Reject(fmt.Sprintf("I couldn't find a %d %s %s. Did you mean one of these: %s?",
		q.Year, q.Make, q.Model, strings.Join(candidates, ", "))), nil
}

func accepted(info string) domain.Verdict {
	verdict := domain.Accept(info)
	verdict.Feedback = "Great! I've verified your vehicle: " + info
	return verdict
}

func outageMessage(err error, q Query) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "Request timed out. Please try again."
	}
	if q.VIN != "" {
		return "Unable to validate VIN at this time."
	}
	return "Unable to validate vehicle at this time."
}
