package scoring

import "github.com/FACorreiaa/go-trip-planner/internal/types"

// Tables holds the immutable lookup data the scorer consults. Built once at
// startup and passed by reference; never mutated afterwards.
type Tables struct {
	// TravelStyleMatch maps (user travel style, POI activity style) to the
	// match bonus: 6 exact, 3 partial/compatible, 0 mismatch.
	TravelStyleMatch map[types.TravelStyle]map[types.TravelStyle]float64

	// PreferenceMappings maps a user preference tag to its canonical
	// category type and the POI tags that satisfy it.
	PreferenceMappings map[string]PreferenceMapping

	// PerceivedCostMultipliers lists higher-cost categories whose ticket
	// price hits harder for lower-budget travelers.
	PerceivedCostMultipliers map[string]float64

	// WarmCategories, WarmTags and ColdTags classify POIs for body-state
	// transitions.
	WarmCategories map[string]bool
	WarmTags       map[string]bool
	ColdTags       map[string]bool
}

type PreferenceMapping struct {
	Category string
	Tags     map[string]bool
}

const (
	perceivedCostBasePenalty     = 8.0
	perceivedCostBudgetThreshold = 2
)

// DefaultTables returns the production lookup tables.
func DefaultTables() *Tables {
	return &Tables{
		TravelStyleMatch: map[types.TravelStyle]map[types.TravelStyle]float64{
			types.StyleActive: {
				types.StyleActive:    6.0,
				types.StyleAdventure: 6.0,
				types.StyleBalanced:  3.0,
				types.StyleRelax:     0.0,
			},
			types.StyleAdventure: {
				types.StyleAdventure: 6.0,
				types.StyleActive:    6.0,
				types.StyleBalanced:  3.0,
				types.StyleRelax:     0.0,
			},
			types.StyleRelax: {
				types.StyleRelax:     6.0,
				types.StyleBalanced:  3.0,
				types.StyleActive:    0.0,
				types.StyleAdventure: 0.0,
			},
			types.StyleBalanced: {
				types.StyleBalanced:  6.0,
				types.StyleActive:    3.0,
				types.StyleRelax:     3.0,
				types.StyleAdventure: 3.0,
			},
		},
		PreferenceMappings: map[string]PreferenceMapping{
			"wellness": {
				Category: "thermal_bath",
				Tags:     tagSet("spa", "sauna", "thermal", "hot_spring", "wellness", "swimming"),
			},
			"history": {
				Category: "museum",
				Tags:     tagSet("castle", "ruins", "heritage", "monument", "fortress"),
			},
			"nature": {
				Category: "nature_park",
				Tags:     tagSet("hike", "forest", "lake", "waterfall", "viewpoint", "cave"),
			},
			"adventure": {
				Category: "adventure_park",
				Tags:     tagSet("zipline", "rafting", "climbing", "via_ferrata", "bobsled"),
			},
			"food": {
				Category: "food_experience",
				Tags:     tagSet("wine", "tasting", "market", "gastronomy", "cheese"),
			},
			"culture": {
				Category: "gallery",
				Tags:     tagSet("theatre", "festival", "folk", "craft", "exhibition"),
			},
			"beach": {
				Category: "beach",
				Tags:     tagSet("swimming", "lido", "waterfront"),
			},
			"family": {
				Category: "zoo",
				Tags:     tagSet("playground", "petting_zoo", "aquarium", "mini_train"),
			},
		},
		PerceivedCostMultipliers: map[string]float64{
			"thermal_bath":   1.3,
			"spa":            1.3,
			"amusement_park": 1.4,
			"adventure_park": 1.4,
		},
		WarmCategories: tagSet("thermal_bath", "spa", "beach"),
		WarmTags:       tagSet("spa", "sauna", "thermal", "hot_spring", "wellness", "swimming"),
		ColdTags:       tagSet("cave", "ice", "winter", "ski"),
	}
}

func tagSet(tags ...string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}
