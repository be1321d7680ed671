package catalog

import (
	"fmt"
	"os"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// File is the on-disk representation of a catalog.
// It uses "mapstructure" tags so raw YAML maps decode with weak typing
// (a single conditional value becomes a one-element set).
type File struct {
	RestartMarker string             `yaml:"restart_marker,omitempty" json:"restart_marker,omitempty" mapstructure:"restart_marker"`
	ExitMarker    string             `yaml:"exit_marker,omitempty" json:"exit_marker,omitempty" mapstructure:"exit_marker"`
	Questions     []QuestionMetadata `yaml:"questions" json:"questions" mapstructure:"questions"`
}

// QuestionMetadata is one question entry of a catalog file.
type QuestionMetadata struct {
	ID              string       `yaml:"id" json:"id" mapstructure:"id"`
	Text            string       `yaml:"text" json:"text" mapstructure:"text"`
	ExpectedFormat  string       `yaml:"expected_format,omitempty" json:"expected_format,omitempty" mapstructure:"expected_format"`
	ValidationRules string       `yaml:"validation_rules,omitempty" json:"validation_rules,omitempty" mapstructure:"validation_rules"`
	RetryPrompt     string       `yaml:"retry_prompt,omitempty" json:"retry_prompt,omitempty" mapstructure:"retry_prompt"`
	VehicleQuestion bool         `yaml:"vehicle_question,omitempty" json:"vehicle_question,omitempty" mapstructure:"vehicle_question"`
	Type            string       `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type"`
	Conditional     *Conditional `yaml:"conditional,omitempty" json:"conditional,omitempty" mapstructure:"conditional"`
}

// Conditional describes a visibility rule.
// Type "vehicle_question" means "asked while a vehicle is being collected";
// otherwise Field/Value describe a field_equals rule.
type Conditional struct {
	Type  string   `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type"`
	Field string   `yaml:"field,omitempty" json:"field,omitempty" mapstructure:"field"`
	Value []string `yaml:"value,omitempty" json:"value,omitempty" mapstructure:"value"`
	Scope string   `yaml:"scope,omitempty" json:"scope,omitempty" mapstructure:"scope"`
}

const (
	typeVehicleStart    = "vehicle_start"
	typeVehicleEnd      = "vehicle_end"
	condVehicleQuestion = "vehicle_question"
)

// Load reads and validates a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	var file File
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &file,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return file.Build()
}

// Build converts the file representation into a validated Catalog.
func (f File) Build() (*Catalog, error) {
	questions := make([]domain.QuestionSpec, 0, len(f.Questions))
	for _, m := range f.Questions {
		q := domain.QuestionSpec{
			ID:              m.ID,
			PromptText:      m.Text,
			ExpectedFormat:  m.ExpectedFormat,
			ValidationRules: m.ValidationRules,
			RetryPrompt:     m.RetryPrompt,
			VehicleScoped:   m.VehicleQuestion,
			Role:            domain.RoleNormal,
			Visibility:      domain.Always(),
		}
		switch m.Type {
		case typeVehicleStart:
			q.Role = domain.RoleVehicleFlowStart
		case typeVehicleEnd:
			q.Role = domain.RoleVehicleFlowEnd
		case "":
		default:
			q.Role = domain.Role(m.Type) // rejected by validation
		}
		if c := m.Conditional; c != nil {
			switch {
			case c.Type == condVehicleQuestion:
				q.Visibility = domain.WhenVehicleFlowActive()
			case c.Field != "":
				q.Visibility = domain.WhenFieldEquals(c.Field, domain.Scope(c.Scope), c.Value...)
			default:
				q.Visibility = domain.Visibility{Kind: domain.VisibilityKind(c.Type)}
			}
		}
		questions = append(questions, q)
	}

	var opts []Option
	if f.RestartMarker != "" {
		opts = append(opts, WithRestartMarker(f.RestartMarker))
	}
	if f.ExitMarker != "" {
		opts = append(opts, WithExitMarker(f.ExitMarker))
	}
	return New(questions, opts...)
}

// ToFile converts the catalog back to its file representation.
func (c *Catalog) ToFile() File {
	f := File{
		RestartMarker: c.restartMarker,
		ExitMarker:    c.exitMarker,
		Questions:     make([]QuestionMetadata, 0, len(c.questions)),
	}
	for _, q := range c.questions {
		m := QuestionMetadata{
			ID:              q.ID,
			Text:            q.PromptText,
			ExpectedFormat:  q.ExpectedFormat,
			ValidationRules: q.ValidationRules,
			RetryPrompt:     q.RetryPrompt,
			VehicleQuestion: q.VehicleScoped,
		}
		switch q.Role {
		case domain.RoleVehicleFlowStart:
			m.Type = typeVehicleStart
		case domain.RoleVehicleFlowEnd:
			m.Type = typeVehicleEnd
		}
		switch q.Visibility.Kind {
		case domain.VisibilityVehicleFlowActive:
			m.Conditional = &Conditional{Type: condVehicleQuestion}
		case domain.VisibilityFieldEquals:
			m.Conditional = &Conditional{
				Field: q.Visibility.Field,
				Value: q.Visibility.Expected,
				Scope: string(q.Visibility.Scope),
			}
		}
		f.Questions = append(f.Questions, m)
	}
	return f
}

// MarshalYAML renders the catalog as a YAML document.
func (c *Catalog) MarshalYAML() (any, error) {
	return c.ToFile(), nil
}
