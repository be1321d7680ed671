package dsl

import (
	"fmt"

	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
)

// Builder manages the catalog construction.
type Builder struct {
	questions []*QuestionBuilder
	index     map[string]*QuestionBuilder
	opts      []catalog.Option
}

// New creates a new catalog builder.
func New() *Builder {
	return &Builder{
		index: make(map[string]*QuestionBuilder),
	}
}

// Add appends a question to the catalog.
// If the question already exists, it returns the existing builder.
func (b *Builder) Add(id string) *QuestionBuilder {
	if qb, ok := b.index[id]; ok {
		return qb
	}
	qb := &QuestionBuilder{
		question: domain.QuestionSpec{
			ID:         id,
			Role:       domain.RoleNormal,
			Visibility: domain.Always(),
		},
		builder: b,
	}
	b.questions = append(b.questions, qb)
	b.index[id] = qb
	return qb
}

// RestartAt sets the question a "yes, another vehicle" answer jumps back to.
func (b *Builder) RestartAt(id string) *Builder {
	b.opts = append(b.opts, catalog.WithRestartMarker(id))
	return b
}

// ExitAt sets the question a "no vehicle" answer jumps to.
func (b *Builder) ExitAt(id string) *Builder {
	b.opts = append(b.opts, catalog.WithExitMarker(id))
	return b
}

// Build validates the questions and compiles them into a Catalog.
func (b *Builder) Build() (*catalog.Catalog, error) {
	questions := make([]domain.QuestionSpec, 0, len(b.questions))
	for _, qb := range b.questions {
		questions = append(questions, qb.question)
	}

	c, err := catalog.New(questions, b.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return c, nil
}
