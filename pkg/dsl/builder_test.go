package dsl

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
)

func TestBuilder_DefaultSurvey(t *testing.T) {
	// Rebuild the built-in survey with the DSL.
	want := catalog.Default().Questions()
	b := New()
	for _, q := range want {
		qb := b.Add(q.ID).
			Prompt(q.PromptText).
			Format(q.ExpectedFormat).
			Rules(q.ValidationRules).
			Retry(q.RetryPrompt)

		switch {
		case q.Role == domain.RoleVehicleFlowStart:
			qb.StartsVehicleFlow()
		case q.Role == domain.RoleVehicleFlowEnd:
			qb.EndsVehicleFlow()
		case q.VehicleScoped:
			qb.Vehicle()
		}
		if q.Visibility.Kind == domain.VisibilityFieldEquals {
			qb.When(q.Visibility.Field, q.Visibility.Scope, q.Visibility.Expected...)
		}
	}

	// Compile to a Catalog.
	got, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	// It must match question for question.
	if !reflect.DeepEqual(got.Questions(), want) {
		t.Errorf("DSL catalog differs from the default one:\n got: %+v\nwant: %+v", got.Questions(), want)
	}
	if got.RestartTarget() != catalog.Default().RestartTarget() {
		t.Errorf("Expected restart target %d, got %d", catalog.Default().RestartTarget(), got.RestartTarget())
	}
}

func TestBuilder_Chaining(t *testing.T) {
	cat, err := New().
		RestartAt("plate").
		ExitAt("done").
		Add("name").Prompt("Name?").
		Then("own_car").Prompt("Do you own a car?").YesNo().StartsVehicleFlow().
		Then("plate").Prompt("Plate?").Vehicle().
		Then("another").Prompt("Another?").YesNo().EndsVehicleFlow().
		Then("done").Prompt("Anything else?").
		builder.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if cat.Len() != 5 {
		t.Fatalf("Expected 5 questions, got %d", cat.Len())
	}
	if cat.RestartTarget() != 2 {
		t.Errorf("Expected restart target 2, got %d", cat.RestartTarget())
	}
	if cat.ExitTarget() != 4 {
		t.Errorf("Expected exit target 4, got %d", cat.ExitTarget())
	}

	q, err := cat.Get("own_car")
	if err != nil {
		t.Fatalf("Get('own_car') failed: %v", err)
	}
	if q.RetryPrompt != "Please answer yes or no." {
		t.Errorf("Expected yes/no retry prompt, got %q", q.RetryPrompt)
	}
}

func TestBuilder_AddIsIdempotent(t *testing.T) {
	b := New()
	first := b.Add("q1").Prompt("First?")
	second := b.Add("q1")

	if first != second {
		t.Error("Expected Add to return the existing builder")
	}
	if second.Build().PromptText != "First?" {
		t.Errorf("Expected prompt to survive, got %q", second.Build().PromptText)
	}
}

func TestBuilder_InvalidCatalog(t *testing.T) {
	b := New()
	b.Add("orphan").Prompt("Another vehicle?").EndsVehicleFlow()

	_, err := b.Build()
	var verr *catalog.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected a catalog.ValidationError, got %v", err)
	}
}
