package catalog

import "github.com/aretw0/intake/pkg/domain"

// Question IDs of the default insurance catalog.
const (
	ZipCode            = "zip_code"
	FullName           = "full_name"
	Email              = "email"
	AddVehiclePrompt   = "add_vehicle_prompt"
	VehicleIdentifier  = "vehicle_identifier"
	VehicleUse         = "vehicle_use"
	BlindSpotWarning   = "blind_spot_warning"
	CommuteDaysPerWeek = "commute_days_per_week"
	CommuteOneWayMiles = "commute_one_way_miles"
	AnnualMileage      = "annual_mileage"
	AddAnotherVehicle  = "add_another_vehicle"
	LicenseType        = "license_type"
	LicenseStatus      = "license_status"
)

// DefaultQuestions returns the insurance survey questions in asking order.
func DefaultQuestions() []domain.QuestionSpec {
	yesNo := func(q domain.QuestionSpec) domain.QuestionSpec {
		q.ExpectedFormat = "yes or no"
		q.ValidationRules = "Must be yes or no"
		q.RetryPrompt = "Please answer yes or no."
		return q
	}
	commuting := domain.WhenFieldEquals(VehicleUse, domain.ScopeCurrentVehicle, "commuting")

	return []domain.QuestionSpec{
		{
			ID:              ZipCode,
			PromptText:      "What is your zip code?",
			ExpectedFormat:  "5-digit US zip code",
			ValidationRules: "Must be exactly 5 digits",
			RetryPrompt:     "Please provide a valid 5-digit zip code.",
			Role:            domain.RoleNormal,
			Visibility:      domain.Always(),
		},
		{
			ID:              FullName,
			PromptText:      "What is your full name?",
			ExpectedFormat:  "First and Last name",
			ValidationRules: "Must contain at least 2-50 characters",
			RetryPrompt:     "Please provide your full name (first and last).",
			Role:            domain.RoleNormal,
			Visibility:      domain.Always(),
		},
		{
			ID:              Email,
			PromptText:      "What is your email address?",
			ExpectedFormat:  "valid email format (user@domain.com)",
			ValidationRules: "Must be a valid email format",
			RetryPrompt:     "That doesn't look like a valid email. Please provide a valid email address.",
			Role:            domain.RoleNormal,
			Visibility:      domain.Always(),
		},
		yesNo(domain.QuestionSpec{
			ID:         AddVehiclePrompt,
			PromptText: "Now let's add your vehicles. Would you like to add a vehicle? (yes/no)",
			Role:       domain.RoleVehicleFlowStart,
			Visibility: domain.Always(),
		}),
		{
			ID:              VehicleIdentifier,
			PromptText:      "Please provide either the VIN number OR the Year, Make, and Model of your vehicle.",
			ExpectedFormat:  "VIN (17 characters) OR 'Year Make Model' (e.g., '2020 Toyota Camry')",
			ValidationRules: "Either a 17-character VIN or Year (4 digits) + Make + Model",
			RetryPrompt:     "Please provide either a VIN or the year, make, and model of your vehicle.",
			VehicleScoped:   true,
			Role:            domain.RoleNormal,
			Visibility:      domain.WhenVehicleFlowActive(),
		},
		{
			ID:              VehicleUse,
			PromptText:      "How is this vehicle used? (commuting, commercial, farming, or business)",
			ExpectedFormat:  "one of: commuting, commercial, farming, business",
			ValidationRules: "Must be exactly one of these: commuting, commercial, farming, business",
			RetryPrompt:     "Please choose one: commuting, commercial, farming, or business.",
			VehicleScoped:   true,
			Role:            domain.RoleNormal,
			Visibility:      domain.WhenVehicleFlowActive(),
		},
		yesNo(domain.QuestionSpec{
			ID:            BlindSpotWarning,
			PromptText:    "Is this vehicle equipped with blind spot warning? (yes/no)",
			VehicleScoped: true,
			Role:          domain.RoleNormal,
			Visibility:    domain.WhenVehicleFlowActive(),
		}),
		{
			ID:              CommuteDaysPerWeek,
			PromptText:      "How many days per week do you use this vehicle for commuting?",
			ExpectedFormat:  "number between 1-7",
			ValidationRules: "Must be a number between 1 and 7",
			RetryPrompt:     "Please provide a number between 1 and 7.",
			VehicleScoped:   true,
			Role:            domain.RoleNormal,
			Visibility:      commuting,
		},
		{
			ID:              CommuteOneWayMiles,
			PromptText:      "How many miles is your one-way trip to work/school?",
			ExpectedFormat:  "number (miles)",
			ValidationRules: "Must be a positive number, typically between 1-200",
			RetryPrompt:     "Please provide the one-way distance in miles.",
			VehicleScoped:   true,
			Role:            domain.RoleNormal,
			Visibility:      commuting,
		},
		{
			ID:              AnnualMileage,
			PromptText:      "What is the annual mileage for this vehicle?",
			ExpectedFormat:  "number (miles per year)",
			ValidationRules: "Must be a positive number, typically between 1,000-200,000",
			RetryPrompt:     "Please provide the annual mileage.",
			VehicleScoped:   true,
			Role:            domain.RoleNormal,
			Visibility:      domain.WhenFieldEquals(VehicleUse, domain.ScopeCurrentVehicle, "commercial", "farming", "business"),
		},
		yesNo(domain.QuestionSpec{
			ID:            AddAnotherVehicle,
			PromptText:    "Would you like to add another vehicle? (yes/no)",
			VehicleScoped: true,
			Role:          domain.RoleVehicleFlowEnd,
			Visibility:    domain.WhenVehicleFlowActive(),
		}),
		{
			ID:              LicenseType,
			PromptText:      "What type of US driver's license do you have? (Foreign, Personal, or Commercial)",
			ExpectedFormat:  "one of: Foreign, Personal, Commercial",
			ValidationRules: "Must be exactly one of these: Foreign, Personal, Commercial",
			RetryPrompt:     "Please choose one: Foreign, Personal, or Commercial.",
			Role:            domain.RoleNormal,
			Visibility:      domain.Always(),
		},
		{
			ID:              LicenseStatus,
			PromptText:      "What is your license status? (Valid or Suspended)",
			ExpectedFormat:  "Valid or Suspended",
			ValidationRules: "Must be either Valid or Suspended",
			RetryPrompt:     "Please answer Valid or Suspended.",
			Role:            domain.RoleNormal,
			Visibility:      domain.Always(),
		},
	}
}

// Default returns the built-in insurance survey catalog.
func Default() *Catalog {
	return MustNew(DefaultQuestions())
}
