// Package compiler assembles collected session answers into the survey Document.
package compiler

import (
	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
)

// Compile builds the output document for a session.
// The in-progress vehicle is left out until the sub-flow end question appends it.
// The result shares no memory with s and is identical for identical states.
func Compile(s *domain.State) domain.Document {
	doc := domain.Document{
		Vehicles: make([]domain.Vehicle, 0),
	}
	if s == nil {
		return doc
	}

	doc.PersonalInfo = domain.PersonalInfo{
		ZipCode:  lookup(s.Answers, catalog.ZipCode),
		FullName: lookup(s.Answers, catalog.FullName),
		Email:    lookup(s.Answers, catalog.Email),
	}
	doc.License = domain.License{
		Type:   lookup(s.Answers, catalog.LicenseType),
		Status: lookup(s.Answers, catalog.LicenseStatus),
	}
	for _, v := range s.CompletedVehicles {
		vehicle := make(domain.Vehicle, len(v))
		for k, val := range v {
			vehicle[k] = val
		}
		doc.Vehicles = append(doc.Vehicles, vehicle)
	}
	return doc
}

func lookup(m map[string]string, key string) *string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	return &v
}
