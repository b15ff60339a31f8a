// internal/workers/providers/match-clinics/catalog.go
package matchclinics

import (
	"context"

	"dental-claims/internal/models"
)

// Catalog returns clinics that may accept tier and offer specialty, in
// catalog order. An empty specialty means any.
type Catalog interface {
	Query(ctx context.Context, tier models.PlanTier, specialty string) ([]models.ClinicRecord, error)
}

// StaticCatalog serves a fixed in-memory clinic list.
type StaticCatalog struct {
	clinics []models.ClinicRecord
}

func NewStaticCatalog(clinics []models.ClinicRecord) *StaticCatalog {
	return &StaticCatalog{clinics: clinics}
}

// Query returns a copy of the whole list; Matcher applies the filter.
func (c *StaticCatalog) Query(_ context.Context, _ models.PlanTier, _ string) ([]models.ClinicRecord, error) {
	out := make([]models.ClinicRecord, len(c.clinics))
	copy(out, c.clinics)
	return out, nil
}

var both = []models.PlanTier{models.PlanBasic, models.PlanPremium}

// DefaultClinics is the reference provider network used when no search
// index is configured.
func DefaultClinics() []models.ClinicRecord {
	return []models.ClinicRecord{
		{
			Name:          "Healthy Smile Dental Clinic",
			Address:       "123 Main Street - Downtown",
			Phone:         "(11) 3333-4444",
			Specialties:   []string{"general", "orthodontics"},
			AcceptedPlans: both,
			Distance:      "1.2 km",
		},
		{
			Name:          "Bright Teeth Family Dentistry",
			Address:       "456 Oak Avenue - Garden District",
			Phone:         "(11) 3555-1020",
			Specialties:   []string{"general", "pediatric dentistry"},
			AcceptedPlans: both,
			Distance:      "2.4 km",
		},
		{
			Name:          "Premier Oral Surgery Center",
			Address:       "789 Pine Road - Medical Park",
			Phone:         "(11) 3777-8899",
			Specialties:   []string{"oral surgery", "implants"},
			AcceptedPlans: []models.PlanTier{models.PlanPremium},
			Distance:      "3.1 km",
		},
		{
			Name:          "Root Care Endodontics",
			Address:       "22 Elm Street - North Side",
			Phone:         "(11) 3444-2211",
			Specialties:   []string{"general", "endodontics"},
			AcceptedPlans: both,
			Distance:      "3.8 km",
		},
		{
			Name:          "Gentle Gums Periodontal Clinic",
			Address:       "9 Harbor Lane - East End",
			Phone:         "(11) 3222-6677",
			Specialties:   []string{"periodontics"},
			AcceptedPlans: []models.PlanTier{models.PlanPremium},
			Distance:      "4.5 km",
		},
		{
			Name:          "Community Dental Care",
			Address:       "310 Market Square - Old Town",
			Phone:         "(11) 3111-0909",
			Specialties:   []string{"general"},
			AcceptedPlans: []models.PlanTier{models.PlanBasic},
			Distance:      "5.0 km",
		},
		{
			Name:          "Aligned Orthodontics Studio",
			Address:       "77 River Walk - West Bank",
			Phone:         "(11) 3888-4545",
			Specialties:   []string{"orthodontics"},
			AcceptedPlans: both,
			Distance:      "6.3 km",
		},
	}
}
