package catalog

// The four ordered crystallization phases. Order matters: phase-name
// overrides during classification are resolved first match wins.
const (
	PhaseUnsaturated  = "unsaturated"
	PhaseLabile       = "labile"
	PhaseIntermediate = "intermediate"
	PhaseMetastable   = "metastable"
)

// Phases returns the phase names in canonical order.
func Phases() []string {
	return []string{PhaseUnsaturated, PhaseLabile, PhaseIntermediate, PhaseMetastable}
}

// IsPhase reports whether name is one of the four phases.
func IsPhase(name string) bool {
	for _, p := range Phases() {
		if p == name {
			return true
		}
	}
	return false
}

// ProcessStage describes one stage of the batch pan operation.
type ProcessStage struct {
	Order       int
	Phase       string
	Description string
}

// ProcessStages maps industrial stage names to their phase and ordering,
// from charging through cleaning.
func ProcessStages() map[string]ProcessStage {
	return map[string]ProcessStage{
		"charging":      {Order: 1, Phase: PhaseUnsaturated, Description: "Initial syrup feeding into vacuum pan"},
		"concentration": {Order: 2, Phase: PhaseUnsaturated, Description: "Evaporation to reach supersaturation"},
		"seeding":       {Order: 3, Phase: PhaseLabile, Description: "Introduction of seed crystals/nucleation"},
		"graining":      {Order: 4, Phase: PhaseLabile, Description: "Initial grain establishment"},
		"boiling":       {Order: 5, Phase: PhaseIntermediate, Description: "Active crystal growth phase"},
		"boiling_hold":  {Order: 6, Phase: PhaseIntermediate, Description: "Controlled growth maintenance"},
		"boiling_end":   {Order: 7, Phase: PhaseIntermediate, Description: "Final crystal growth completion"},
		"tightening":    {Order: 8, Phase: PhaseMetastable, Description: "Density increase and final solidification"},
		"discharge":     {Order: 9, Phase: PhaseMetastable, Description: "Batch completion and crystal extraction"},
		"cleaning":      {Order: 10, Phase: "complete", Description: "Pan cleaning and preparation for next batch"},
	}
}

// Materials maps category directory names to display names.
func Materials() map[string]string {
	return map[string]string{
		"phy_sugar_db":  "Physical Sugar (Dense Batch)",
		"phy_sugar_opr": "Physical Sugar (Operation)",
		"vir_polymer":   "Virtual Polymer",
	}
}

// GrowthStage describes expected crystal growth for a phase.
type GrowthStage struct {
	Phase            string
	GrowthMin        int // percent
	GrowthMax        int
	CumulativeGrowth int
	NextStep         string
}

// GrowthStages returns the growth model keyed by phase.
func GrowthStages() map[string]GrowthStage {
	return map[string]GrowthStage{
		PhaseUnsaturated:  {Phase: PhaseUnsaturated, GrowthMin: 0, GrowthMax: 5, CumulativeGrowth: 0, NextStep: "Seeding (Labile phase)"},
		PhaseLabile:       {Phase: PhaseLabile, GrowthMin: 5, GrowthMax: 20, CumulativeGrowth: 15, NextStep: "Boiling (Intermediate phase)"},
		PhaseIntermediate: {Phase: PhaseIntermediate, GrowthMin: 20, GrowthMax: 70, CumulativeGrowth: 50, NextStep: "Tightening (Metastable phase)"},
		PhaseMetastable:   {Phase: PhaseMetastable, GrowthMin: 70, GrowthMax: 100, CumulativeGrowth: 90, NextStep: "Batch Complete (Discharge/Cleaning)"},
	}
}
