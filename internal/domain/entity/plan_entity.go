package entity

import (
	"fmt"
	"math"
)

// Plan is the closed set of subscription tiers.
type Plan int

const (
	PlanNone Plan = iota
	PlanStarter
	PlanProfessional
	PlanPremium
	PlanBuilder
)

// UnlimitedProjects is stored as the project limit of builder plans.
const UnlimitedProjects = math.MaxInt32

// PlanSpec is one row of the plan catalog.
type PlanSpec struct {
	Plan          Plan   `json:"-"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	ProjectsLimit int    `json:"projects_limit"`
	Unlimited     bool   `json:"unlimited"`
	DurationDays  int    `json:"duration_days"`
}

var planCatalog = [...]PlanSpec{
	PlanNone:         {Plan: PlanNone, ID: "", Name: "No Plan"},
	PlanStarter:      {Plan: PlanStarter, ID: "starter", Name: "Starter", ProjectsLimit: 5, DurationDays: 7},
	PlanProfessional: {Plan: PlanProfessional, ID: "professional", Name: "Professional", ProjectsLimit: 10, DurationDays: 15},
	PlanPremium:      {Plan: PlanPremium, ID: "premium", Name: "Premium", ProjectsLimit: 15, DurationDays: 30},
	PlanBuilder:      {Plan: PlanBuilder, ID: "builder", Name: "Builder", ProjectsLimit: UnlimitedProjects, Unlimited: true, DurationDays: 30},
}

// Spec returns the catalog entry of p. Unknown values map to PlanNone.
func (p Plan) Spec() PlanSpec {
	if p < PlanNone || int(p) >= len(planCatalog) {
		return planCatalog[PlanNone]
	}
	return planCatalog[p]
}

// String returns the display name.
func (p Plan) String() string { return p.Spec().Name }

// IsNone reports whether p grants nothing.
func (p Plan) IsNone() bool { return p.Spec().Plan == PlanNone }

func (p Plan) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Plan) UnmarshalText(b []byte) error {
	plan, ok := ParsePlanName(string(b))
	if !ok {
		return fmt.Errorf("%q: unknown plan name", string(b))
	}
	*p = plan
	return nil
}

// LookupSubscribable resolves a plan id a user may buy directly.
// The builder plan is activated through its own operation and is not listed here.
func LookupSubscribable(id string) (PlanSpec, bool) {
	switch id {
	case "starter":
		return planCatalog[PlanStarter], true
	case "professional":
		return planCatalog[PlanProfessional], true
	case "premium":
		return planCatalog[PlanPremium], true
	}
	return PlanSpec{}, false
}

// ParsePlanName maps a stored display name back to a plan. Empty and
// "No Plan" both mean PlanNone.
func ParsePlanName(name string) (Plan, bool) {
	if name == "" {
		return PlanNone, true
	}
	for _, spec := range planCatalog {
		if spec.Name == name {
			return spec.Plan, true
		}
	}
	return PlanNone, false
}

// Catalog lists every purchasable plan, builder last.
func Catalog() []PlanSpec {
	return []PlanSpec{
		planCatalog[PlanStarter],
		planCatalog[PlanProfessional],
		planCatalog[PlanPremium],
		planCatalog[PlanBuilder],
	}
}
