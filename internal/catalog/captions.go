package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Per-phase caption templates. Placeholders: {material}, {process_stages},
// {growth_pct}, {next_step}.
var captionTemplates = map[string]string{
	PhaseUnsaturated: "Microscopic view of an unsaturated {material} solution during {process_stages}. " +
		"Crystal growth progress: {growth_pct}%. " +
		"The image displays a uniform, featureless background indicating a homogeneous liquid phase. " +
		"No crystal structures are visible. Next milestone: {next_step}.",
	PhaseLabile: "Microscopic view of the labile phase in {material} ({process_stages}). " +
		"Crystal growth progress: {growth_pct}%. " +
		"The image shows initial nucleation with sparse, minute bright specks emerging on a dark field. " +
		"These isolated points represent seed crystals forming. Next milestone: {next_step}.",
	PhaseIntermediate: "Microscopic view of the intermediate crystallization phase in {material} during {process_stages}. " +
		"Crystal growth progress: {growth_pct}%. " +
		"Distinct rectangular and prismatic crystal shapes are clearly visible with varying sizes. " +
		"Active growth is occurring with separation between structures. Next milestone: {next_step}.",
	PhaseMetastable: "Microscopic view of the metastable phase in {material} ({process_stages}). " +
		"Crystal growth progress: {growth_pct}%. " +
		"The image shows dense crystal packing with fully formed faceted crystals in an interlocking pattern. " +
		"Little background remains visible. Next milestone: {next_step}.",
}

// RenderCaption produces the expected caption for a material/phase pair by
// pure substitution over the static tables. Unknown phases yield an error;
// unknown materials fall back to the raw category name.
func RenderCaption(categoryID, phase string) (string, error) {
	tmpl, ok := captionTemplates[phase]
	if !ok {
		return "", fmt.Errorf("no caption template for phase %q", phase)
	}

	material := categoryID
	if display, ok := Materials()[categoryID]; ok {
		material = display
	}

	growth := GrowthStages()[phase]
	r := strings.NewReplacer(
		"{material}", material,
		"{process_stages}", stagesForPhase(phase),
		"{growth_pct}", strconv.Itoa(growth.CumulativeGrowth),
		"{next_step}", growth.NextStep,
	)
	return r.Replace(tmpl), nil
}

// stagesForPhase lists the process stages mapped to a phase, in order.
func stagesForPhase(phase string) string {
	type stage struct {
		name  string
		order int
	}
	var stages []stage
	for name, s := range ProcessStages() {
		if s.Phase == phase {
			stages = append(stages, stage{name, s.Order})
		}
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i].order < stages[j].order })

	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return strings.Join(names, "/")
}
