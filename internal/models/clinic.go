package models

// ClinicRecord is read-only provider reference data.
type ClinicRecord struct {
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Phone         string     `json:"phone"`
	Specialties   []string   `json:"specialties"`
	AcceptedPlans []PlanTier `json:"accepted_plans"`
	Distance      string     `json:"distance"`
}

// Accepts reports whether the clinic takes the plan tier.
func (c ClinicRecord) Accepts(tier PlanTier) bool {
	for _, p := range c.AcceptedPlans {
		if p == tier {
			return true
		}
	}
	return false
}

// Offers reports whether the clinic lists the specialty.
func (c ClinicRecord) Offers(specialty string) bool {
	for _, s := range c.Specialties {
		if s == specialty {
			return true
		}
	}
	return false
}
