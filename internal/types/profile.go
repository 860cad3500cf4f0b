package types

import "time"

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

type Weather string

const (
	WeatherSunny   Weather = "sunny"
	WeatherCloudy  Weather = "cloudy"
	WeatherRain    Weather = "rain"
	WeatherSnow    Weather = "snow"
	WeatherUnknown Weather = "unknown"
)

const (
	DefaultBudgetLevel    = 2
	DefaultCrowdTolerance = 2
)

// UserProfile describes the traveler. Preferences are ordered; the first
// three carry full weight in tag scoring, the rest half.
type UserProfile struct {
	TargetGroup         TargetGroup `json:"target_group"`
	BudgetLevel         int         `json:"budget_level"`    // 1..3
	CrowdTolerance      int         `json:"crowd_tolerance"` // 0..3
	TravelStyle         TravelStyle `json:"travel_style,omitempty"`
	Preferences         []string    `json:"preferences,omitempty"`
	ChildAge            *int        `json:"child_age,omitempty"`
	IntensityPreference Intensity   `json:"intensity_preference,omitempty"`
	HasVehicle          bool        `json:"has_vehicle,omitempty"`
}

// Normalized returns a copy with every optional field resolved to its
// explicit default, so scoring never works off ad hoc fallback chains.
func (p UserProfile) Normalized() UserProfile {
	out := p
	if out.BudgetLevel < 1 || out.BudgetLevel > 3 {
		out.BudgetLevel = DefaultBudgetLevel
	}
	if out.CrowdTolerance < 0 || out.CrowdTolerance > 3 {
		out.CrowdTolerance = DefaultCrowdTolerance
	}
	if out.TravelStyle == "" {
		out.TravelStyle = StyleBalanced
	}
	if out.IntensityPreference == "" {
		out.IntensityPreference = IntensityModerate
	}
	return out
}

// TripContext is the situational input consumed by the core. Weather and
// season come from an external provider; the core never computes them.
type TripContext struct {
	Season  Season       `json:"season"`
	Date    time.Time    `json:"date"`
	Weekday time.Weekday `json:"weekday"`
	Weather Weather      `json:"weather"`
}
