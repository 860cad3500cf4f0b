package similarity

import "github.com/FACorreiaa/go-trip-planner/internal/types"

// Tables holds the immutable lookup data for candidate matching.
type Tables struct {
	// CategoryGroups maps a category to its semantic group ("nature",
	// "water", "heritage", ...). Two categories in the same group count as
	// similar even when not identical.
	CategoryGroups map[string]string

	// VibesCompat is the activity-style compatibility matrix. Lookup is
	// deliberately one-directional (removed → candidate).
	VibesCompat map[types.TravelStyle]map[types.TravelStyle]float64

	// IntensityRank orders intensity levels for adjacency checks.
	IntensityRank map[types.Intensity]int
}

func DefaultTables() *Tables {
	return &Tables{
		CategoryGroups: map[string]string{
			"nature_park":     "nature",
			"botanical_garden": "nature",
			"viewpoint":       "nature",
			"cave":            "nature",
			"thermal_bath":    "water",
			"spa":             "water",
			"beach":           "water",
			"aqua_park":       "water",
			"museum":          "heritage",
			"castle":          "heritage",
			"gallery":         "heritage",
			"church":          "heritage",
			"amusement_park":  "entertainment",
			"adventure_park":  "entertainment",
			"zoo":             "entertainment",
			"food_experience": "gastronomy",
			"winery":          "gastronomy",
			"market":          "gastronomy",
		},
		VibesCompat: map[types.TravelStyle]map[types.TravelStyle]float64{
			types.StyleActive: {
				types.StyleAdventure: 0.8,
				types.StyleBalanced:  0.5,
			},
			types.StyleAdventure: {
				types.StyleActive:   0.8,
				types.StyleBalanced: 0.4,
			},
			types.StyleRelax: {
				types.StyleBalanced: 0.6,
			},
			types.StyleBalanced: {
				types.StyleActive: 0.5,
				types.StyleRelax:  0.5,
			},
		},
		IntensityRank: map[types.Intensity]int{
			types.IntensityLight:    0,
			types.IntensityModerate: 1,
			types.IntensityIntense:  2,
		},
	}
}
