package scoring

import (
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Scorer computes a POI's fit for a traveler in a given context. Every method
// is a pure function of its arguments and the immutable tables; the same
// inputs always yield the same score.
type Scorer struct {
	tables *Tables
}

func NewScorer(tables *Tables) *Scorer {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Scorer{tables: tables}
}

// Score sums every applicable term. Higher is better; the result is not
// normalized and can be negative. The caller carries state across the day.
func (s *Scorer) Score(poi types.POI, profile types.UserProfile, tctx types.TripContext, state types.BodyState) types.ScoreBreakdown {
	b := types.ScoreBreakdown{
		TargetGroup:   s.TargetGroupScore(poi, profile),
		Budget:        s.BudgetScore(poi, profile),
		Crowd:         s.CrowdScore(poi, profile),
		TravelStyle:   s.TravelStyleScore(poi, profile),
		Premium:       s.PremiumPenalty(poi, profile),
		Priority:      s.PriorityBonus(poi),
		TagPreference: s.TagPreferenceScore(poi, profile),
		BodyState:     s.BodyStateScore(poi, state),
	}
	b.Total = b.TargetGroup + b.Budget + b.Crowd + b.TravelStyle +
		b.Premium + b.Priority + b.TagPreference + b.BodyState
	return b
}

// TargetGroupScore rewards an exact target-group match (+20), stays neutral
// for POIs with no declared groups, and penalizes declared mismatches (−10).
// Families get a dedicated path: kids-only POIs score +8 outright, declared
// family POIs +6 with +2 more when the child's age fits the declared range.
func (s *Scorer) TargetGroupScore(poi types.POI, profile types.UserProfile) float64 {
	if profile.TargetGroup == types.TargetGroupFamilyKids {
		if poi.KidsOnly {
			return 8.0
		}
		if poi.HasTargetGroup(types.TargetGroupFamilyKids) {
			score := 6.0
			if profile.ChildAge != nil && poi.MinKidAge != nil && poi.MaxKidAge != nil {
				if *profile.ChildAge >= *poi.MinKidAge && *profile.ChildAge <= *poi.MaxKidAge {
					score += 2.0
				}
			}
			return score
		}
	}
	if len(poi.TargetGroups) == 0 {
		return 0.0
	}
	if poi.HasTargetGroup(profile.TargetGroup) {
		return 20.0
	}
	return -10.0
}

// BudgetScore penalizes POIs above the traveler's budget level by 10 points
// per level and rewards cheaper ones symmetrically. Higher-cost categories
// carry an extra perceived-cost penalty for budget levels at or below the
// threshold when the POI actually charges admission.
func (s *Scorer) BudgetScore(poi types.POI, profile types.UserProfile) float64 {
	score := -10.0 * float64(poi.BudgetLevel-profile.BudgetLevel)
	if poi.Tickets.Normal > 0 && profile.BudgetLevel <= perceivedCostBudgetThreshold {
		if mult, ok := s.tables.PerceivedCostMultipliers[poi.Category]; ok {
			score -= perceivedCostBasePenalty * mult
		}
	}
	return score
}

func (s *Scorer) CrowdScore(poi types.POI, profile types.UserProfile) float64 {
	return -5.0 * float64(poi.CrowdLevel-profile.CrowdTolerance)
}

// TravelStyleScore looks up the (user style, POI style) pair in the match
// matrix. Unset values on either side default to balanced before lookup.
func (s *Scorer) TravelStyleScore(poi types.POI, profile types.UserProfile) float64 {
	userStyle := profile.TravelStyle
	if userStyle == "" {
		userStyle = types.StyleBalanced
	}
	poiStyle := poi.Style
	if poiStyle == "" {
		poiStyle = types.StyleBalanced
	}
	row, ok := s.tables.TravelStyleMatch[userStyle]
	if !ok {
		return 0.0
	}
	return row[poiStyle]
}

func (s *Scorer) PremiumPenalty(poi types.POI, profile types.UserProfile) float64 {
	if !poi.PremiumExperience {
		return 0.0
	}
	switch profile.BudgetLevel {
	case 1:
		return -40.0
	case 2:
		return -20.0
	default:
		return 0.0
	}
}

func (s *Scorer) PriorityBonus(poi types.POI) float64 {
	switch poi.Priority {
	case types.PriorityCore:
		return 30.0
	case types.PrioritySecondary:
		return 10.0
	default:
		return 0.0
	}
}

// TagPreferenceScore grants +20 once per preference whose canonical category
// matches the POI and +15 for every POI tag in that preference's tag set.
// Preferences are ordered; entries past the top three count at half weight.
func (s *Scorer) TagPreferenceScore(poi types.POI, profile types.UserProfile) float64 {
	total := 0.0
	for i, pref := range profile.Preferences {
		mapping, ok := s.tables.PreferenceMappings[pref]
		if !ok {
			continue
		}
		weight := 1.0
		if i >= 3 {
			weight = 0.5
		}
		if mapping.Category == poi.Category {
			total += 20.0 * weight
		}
		for _, tag := range poi.Tags {
			if mapping.Tags[tag] {
				total += 15.0 * weight
			}
		}
	}
	return total
}

// BodyStateScore penalizes a warm→cold transition (−10) and rewards a
// cold→relax one (+8). Every other transition is neutral.
func (s *Scorer) BodyStateScore(poi types.POI, state types.BodyState) float64 {
	switch state {
	case types.BodyStateWarm:
		if s.IsChilling(poi) {
			return -10.0
		}
	case types.BodyStateCold:
		if s.IsWarming(poi) {
			return 8.0
		}
	}
	return 0.0
}

// IsWarming reports whether visiting the POI leaves the traveler warm
// (relax/spa/water experiences).
func (s *Scorer) IsWarming(poi types.POI) bool {
	if poi.Style == types.StyleRelax {
		return true
	}
	if s.tables.WarmCategories[poi.Category] {
		return true
	}
	for _, tag := range poi.Tags {
		if s.tables.WarmTags[tag] {
			return true
		}
	}
	return false
}

// IsChilling reports whether visiting the POI leaves the traveler cold
// (outdoor high-intensity activity or cold environments).
func (s *Scorer) IsChilling(poi types.POI) bool {
	if poi.Outdoor && poi.Intensity == types.IntensityIntense {
		return true
	}
	for _, tag := range poi.Tags {
		if s.tables.ColdTags[tag] {
			return true
		}
	}
	return false
}

// NextBodyState applies the transition rule after a visit: warming POIs set
// warm, chilling POIs set cold, everything else leaves the state untouched.
func (s *Scorer) NextBodyState(state types.BodyState, poi types.POI) types.BodyState {
	switch {
	case s.IsWarming(poi):
		return types.BodyStateWarm
	case s.IsChilling(poi):
		return types.BodyStateCold
	default:
		return state
	}
}
