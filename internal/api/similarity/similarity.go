package similarity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Factor weights for SMART_REPLACE candidate scoring.
const (
	weightCategory    = 0.30
	weightTargetGroup = 0.25
	weightIntensity   = 0.20
	weightDuration    = 0.15
	weightVibes       = 0.10

	// matchFloor is the sentinel below which the best candidate is still
	// reported as no match.
	matchFloor = 0.25
)

// Matcher finds the best substitute for a removed POI. Pure; all lookup data
// lives in the immutable tables.
type Matcher struct {
	tables *Tables
}

func NewMatcher(tables *Tables) *Matcher {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Matcher{tables: tables}
}

// Match holds the selected substitute and its similarity score.
type Match struct {
	POI   types.POI
	Score float64
}

// FindSubstitute scores every candidate not in the exclusion set against the
// removed POI and returns the best one. The boolean is false when no
// candidate clears the floor; callers turn that into ErrInfeasible. Ties are
// broken by candidate order (catalog order).
func (m *Matcher) FindSubstitute(removed types.POI, candidates []types.POI, exclude map[uuid.UUID]bool, targetTime *time.Time) (Match, bool) {
	best := Match{Score: -1}
	for _, cand := range candidates {
		if cand.ID == removed.ID || exclude[cand.ID] {
			continue
		}
		score := m.Similarity(removed, cand, targetTime)
		if score > best.Score {
			best = Match{POI: cand, Score: score}
		}
	}
	if best.Score <= matchFloor {
		return Match{}, false
	}
	return best, true
}

// Similarity combines the five weighted factors into a single 0..~1 score.
func (m *Matcher) Similarity(removed, cand types.POI, targetTime *time.Time) float64 {
	return weightCategory*m.CategorySimilarity(removed, cand) +
		weightTargetGroup*m.TargetGroupOverlap(removed, cand) +
		weightIntensity*m.IntensitySimilarity(removed, cand, targetTime) +
		weightDuration*m.DurationCloseness(removed, cand) +
		weightVibes*m.VibesSimilarity(removed, cand)
}

// CategorySimilarity: exact category 1.0, same semantic group 0.7, any shared
// keyword token 0.5, otherwise 0.
func (m *Matcher) CategorySimilarity(removed, cand types.POI) float64 {
	if removed.Category == cand.Category {
		return 1.0
	}
	ga, okA := m.tables.CategoryGroups[removed.Category]
	gb, okB := m.tables.CategoryGroups[cand.Category]
	if okA && okB && ga == gb {
		return 0.7
	}
	if sharesToken(removed.Category, cand.Category) {
		return 0.5
	}
	return 0.0
}

func sharesToken(a, b string) bool {
	for _, ta := range strings.Split(a, "_") {
		if ta == "" {
			continue
		}
		for _, tb := range strings.Split(b, "_") {
			if ta == tb {
				return true
			}
		}
	}
	return false
}

// TargetGroupOverlap is the fraction of the removed POI's target groups also
// declared on the candidate. A removed POI with no groups scores 0.
func (m *Matcher) TargetGroupOverlap(removed, cand types.POI) float64 {
	if len(removed.TargetGroups) == 0 {
		return 0.0
	}
	shared := 0
	for _, g := range removed.TargetGroups {
		if cand.HasTargetGroup(g) {
			shared++
		}
	}
	return float64(shared) / float64(len(removed.TargetGroups))
}

// IntensitySimilarity: exact 1.0, adjacent level 0.5, else 0 — then scaled by
// the time-of-day boost when a target replacement time is known.
func (m *Matcher) IntensitySimilarity(removed, cand types.POI, targetTime *time.Time) float64 {
	ra, okA := m.tables.IntensityRank[removed.Intensity]
	rb, okB := m.tables.IntensityRank[cand.Intensity]
	if !okA || !okB {
		return 0.0
	}
	var base float64
	switch diff := ra - rb; {
	case diff == 0:
		base = 1.0
	case diff == 1 || diff == -1:
		base = 0.5
	default:
		base = 0.0
	}
	return base * timeOfDayBoost(cand.Intensity, targetTime)
}

// timeOfDayBoost: mornings favor light activities, evenings moderate and
// intense ones, afternoons are neutral.
func timeOfDayBoost(intensity types.Intensity, targetTime *time.Time) float64 {
	if targetTime == nil {
		return 1.0
	}
	hour := targetTime.Hour()
	switch {
	case hour < 12:
		if intensity == types.IntensityLight {
			return 1.2
		}
		if intensity == types.IntensityIntense {
			return 0.8
		}
	case hour >= 17:
		if intensity == types.IntensityModerate || intensity == types.IntensityIntense {
			return 1.1
		}
	}
	return 1.0
}

// DurationCloseness grants tiered credit by the absolute difference of the
// typical visit durations: ≤15 min full, ≤30 two thirds, ≤60 one third.
func (m *Matcher) DurationCloseness(removed, cand types.POI) float64 {
	diff := removed.TypicalVisitMinutes() - cand.TypicalVisitMinutes()
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 15:
		return 1.0
	case diff <= 30:
		return 2.0 / 3.0
	case diff <= 60:
		return 1.0 / 3.0
	default:
		return 0.0
	}
}

// VibesSimilarity: exact style match 1.0, otherwise the compatibility matrix
// is consulted in one direction only (removed → candidate).
func (m *Matcher) VibesSimilarity(removed, cand types.POI) float64 {
	if removed.Style != "" && removed.Style == cand.Style {
		return 1.0
	}
	if row, ok := m.tables.VibesCompat[removed.Style]; ok {
		return row[cand.Style]
	}
	return 0.0
}
