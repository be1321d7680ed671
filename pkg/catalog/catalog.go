package catalog

import (
	"fmt"
	"slices"

	"github.com/aretw0/intake/pkg/domain"
)

// Catalog is an ordered, validated list of questions.
type Catalog struct {
	questions []domain.QuestionSpec
	index     map[string]int

	restartMarker string
	exitMarker    string
	restartAt     int
	exitAt        int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRestartMarker sets the question ID the vehicle sub-flow restarts from.
func WithRestartMarker(id string) Option {
	return func(c *Catalog) {
		c.restartMarker = id
	}
}

// WithExitMarker sets the first question asked after the vehicle sub-flow is declined.
func WithExitMarker(id string) Option {
	return func(c *Catalog) {
		c.exitMarker = id
	}
}

// New builds a catalog and checks its structure.
func New(questions []domain.QuestionSpec, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		questions:     slices.Clone(questions),
		index:         make(map[string]int, len(questions)),
		restartMarker: VehicleIdentifier,
		exitMarker:    LicenseType,
		restartAt:     -1,
		exitAt:        -1,
	}
	for _, opt := range opts {
		opt(c)
	}

	for i := range c.questions {
		if c.questions[i].Role == "" {
			c.questions[i].Role = domain.RoleNormal
		}
		v := &c.questions[i].Visibility
		if v.Kind == "" {
			*v = domain.Always()
		}
		// An unscoped field rule reads from wherever the question itself stores.
		if v.Kind == domain.VisibilityFieldEquals && v.Scope == "" {
			v.Scope = domain.ScopeTopLevel
			if c.questions[i].VehicleScoped {
				v.Scope = domain.ScopeCurrentVehicle
			}
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is like New but panics on an invalid catalog.
func MustNew(questions []domain.QuestionSpec, opts ...Option) *Catalog {
	c, err := New(questions, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// At returns the question at position i.
func (c *Catalog) At(i int) (domain.QuestionSpec, bool) {
	if i < 0 || i >= len(c.questions) {
		return domain.QuestionSpec{}, false
	}
	return c.questions[i], true
}

// Get returns the question with the given ID.
func (c *Catalog) Get(id string) (domain.QuestionSpec, error) {
	i, ok := c.index[id]
	if !ok {
		return domain.QuestionSpec{}, fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, id)
	}
	return c.questions[i], nil
}

// IndexOf returns the position of the question with the given ID, or -1.
func (c *Catalog) IndexOf(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Questions returns a copy of the ordered questions.
func (c *Catalog) Questions() []domain.QuestionSpec {
	return slices.Clone(c.questions)
}

// RestartTarget is the cursor the vehicle sub-flow jumps back to.
func (c *Catalog) RestartTarget() int {
	return c.restartAt
}

// ExitTarget is the cursor the flow jumps to when no vehicle is added.
func (c *Catalog) ExitTarget() int {
	return c.exitAt
}

// Markers returns the restart and exit marker IDs.
func (c *Catalog) Markers() (restart, exit string) {
	return c.restartMarker, c.exitMarker
}
