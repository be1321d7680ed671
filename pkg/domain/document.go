package domain

// Document is the compiled, stable-shape survey output.
type Document struct {
	PersonalInfo PersonalInfo `json:"personal_info"`
	Vehicles     []Vehicle    `json:"vehicles"`
	License      License      `json:"license"`
}

type PersonalInfo struct {
	ZipCode  *string `json:"zip_code"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

// Vehicle is one completed vehicle. Keys are the vehicle-scoped question IDs.
type Vehicle map[string]string

type License struct {
	Type   *string `json:"type"`
	Status *string `json:"status"`
}
