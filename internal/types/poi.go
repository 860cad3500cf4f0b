package types

import (
	"time"

	"github.com/google/uuid"
)

type TargetGroup string

const (
	TargetGroupFamilyKids TargetGroup = "family_kids"
	TargetGroupCouples    TargetGroup = "couples"
	TargetGroupSolo       TargetGroup = "solo"
	TargetGroupFriends    TargetGroup = "friends"
	TargetGroupSeniors    TargetGroup = "seniors"
)

type TravelStyle string

const (
	StyleActive    TravelStyle = "active"
	StyleRelax     TravelStyle = "relax"
	StyleBalanced  TravelStyle = "balanced"
	StyleAdventure TravelStyle = "adventure"
)

type Intensity string

const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityIntense  Intensity = "intense"
)

type PriorityLevel string

const (
	PriorityCore      PriorityLevel = "core"
	PrioritySecondary PriorityLevel = "secondary"
	PriorityOptional  PriorityLevel = "optional"
)

// BodyState tracks the thermal/intensity state carried across a day so the
// builder avoids jarring sequences (e.g. a thermal bath straight into an
// exposed winter hike).
type BodyState string

const (
	BodyStateWarm    BodyState = "warm"
	BodyStateCold    BodyState = "cold"
	BodyStateNeutral BodyState = "neutral"
)

type TicketPrices struct {
	Normal  float64 `json:"normal"`
	Reduced float64 `json:"reduced"`
}

type ParkingInfo struct {
	Name            string  `json:"name"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	WalkTimeMinutes int     `json:"walk_time_minutes"`
}

// DayHours overrides the regular opening interval for a single weekday.
type DayHours struct {
	Closed      bool `json:"closed"`
	OpenMinute  int  `json:"open_minute"`
	CloseMinute int  `json:"close_minute"`
}

// OpeningHours is the canonical opening-hours rule: a regular daily interval
// (minutes from midnight), optional seasonal availability and per-weekday
// exceptions. Evaluation lives in the catalog package.
type OpeningHours struct {
	OpenMinute     int                       `json:"open_minute"`
	CloseMinute    int                       `json:"close_minute"`
	Seasons        []Season                  `json:"seasons,omitempty"` // empty = open all year
	ClosedWeekdays []time.Weekday            `json:"closed_weekdays,omitempty"`
	Exceptions     map[time.Weekday]DayHours `json:"exceptions,omitempty"`
}

// POI is the canonical catalog record. Ingestion normalizes heterogeneous
// source fields into this shape; the core never sees raw source rows.
type POI struct {
	ID                uuid.UUID     `json:"id"`
	Name              string        `json:"name"`
	Category          string        `json:"category"`
	TargetGroups      []TargetGroup `json:"target_groups,omitempty"`
	KidsOnly          bool          `json:"kids_only,omitempty"`
	MinKidAge         *int          `json:"min_kid_age,omitempty"`
	MaxKidAge         *int          `json:"max_kid_age,omitempty"`
	Style             TravelStyle   `json:"style,omitempty"`
	Intensity         Intensity     `json:"intensity,omitempty"`
	MinVisitMinutes   int           `json:"min_visit_minutes"`
	MaxVisitMinutes   int           `json:"max_visit_minutes"`
	BudgetLevel       int           `json:"budget_level"` // 1..3
	CrowdLevel        int           `json:"crowd_level"`  // 0..3
	Priority          PriorityLevel `json:"priority,omitempty"`
	PremiumExperience bool          `json:"premium_experience,omitempty"`
	Tickets           TicketPrices  `json:"tickets"`
	Hours             OpeningHours  `json:"hours"`
	Latitude          float64       `json:"latitude"`
	Longitude         float64       `json:"longitude"`
	Parking           *ParkingInfo  `json:"parking,omitempty"` // non-nil means car access is required
	Outdoor           bool          `json:"outdoor,omitempty"`
	Tags              []string      `json:"tags,omitempty"`
	Position          int           `json:"position"` // catalog order, tie-break key
}

// TypicalVisitMinutes is the midpoint of the declared visit-duration range.
func (p POI) TypicalVisitMinutes() int {
	if p.MaxVisitMinutes <= p.MinVisitMinutes {
		return p.MinVisitMinutes
	}
	return (p.MinVisitMinutes + p.MaxVisitMinutes) / 2
}

// HasTargetGroup reports whether the POI declares the given target group.
func (p POI) HasTargetGroup(g TargetGroup) bool {
	for _, tg := range p.TargetGroups {
		if tg == g {
			return true
		}
	}
	return false
}

// HasTag reports whether the POI carries the given free-form tag.
func (p POI) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
