package models

// PlanRule is one row of the plan coverage table.
type PlanRule struct {
	Tier              PlanTier
	CoveredCategories []string
	MaxCoverage       float64
	Percentage        float64
}

var planRules = map[PlanTier]PlanRule{
	PlanBasic: {
		Tier:              PlanBasic,
		CoveredCategories: []string{"consult", "prophylaxis", "radiograph"},
		MaxCoverage:       300.00,
		Percentage:        0.70,
	},
	PlanPremium: {
		Tier:              PlanPremium,
		CoveredCategories: []string{"consult", "prophylaxis", "radiograph", "restoration", "extraction"},
		MaxCoverage:       1000.00,
		Percentage:        0.90,
	},
}

// RuleFor returns the rule row for tier. Unknown tiers get the basic row.
func RuleFor(tier PlanTier) PlanRule {
	rule, ok := planRules[tier]
	if !ok {
		rule = planRules[PlanBasic]
	}
	rule.CoveredCategories = append([]string(nil), rule.CoveredCategories...)
	return rule
}
