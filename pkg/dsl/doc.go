/*
Package dsl provides a fluent Go builder for question catalogs.

It allows developers to define a survey in code instead of a YAML file, which is
handy for tests, generated surveys and IDE autocompletion. Questions are asked
in the order they are added.

Example usage:

	b := dsl.New()

	b.Add("zip_code").
		Prompt("What is your zip code?").
		Format("5-digit US zip code").
		Retry("Please provide a valid 5-digit zip code.")

	b.Add("add_vehicle").
		Prompt("Would you like to add a vehicle? (yes/no)").
		StartsVehicleFlow()

	b.Add("vehicle_use").
		Prompt("How is this vehicle used?").
		Vehicle()

	b.Add("add_another").
		Prompt("Would you like to add another vehicle? (yes/no)").
		EndsVehicleFlow()

	b.Add("license_status").
		Prompt("What is your license status?")

	// The default restart and exit markers can be overridden with RestartAt and ExitAt.
	cat, err := b.RestartAt("vehicle_use").ExitAt("license_status").Build()
*/
package dsl
