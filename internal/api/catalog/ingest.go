package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Raw catalog exports come from heterogeneous tabular sources with localized
// column names. headerSynonyms maps every known variant to the canonical
// field; intensitySynonyms and styleSynonyms normalize localized cell values.
var headerSynonyms = map[string]string{
	"name": "name", "nev": "name", "megnevezes": "name",
	"category": "category", "kategoria": "category", "type": "category", "tipus": "category",
	"target_groups": "target_groups", "celcsoport": "target_groups", "groups": "target_groups",
	"kids_only": "kids_only", "csak_gyerek": "kids_only",
	"min_kid_age": "min_kid_age", "max_kid_age": "max_kid_age",
	"style": "style", "stilus": "style", "vibe": "style",
	"intensity": "intensity", "intenzitas": "intensity",
	"min_visit": "min_visit", "min_duration": "min_visit", "min_ido": "min_visit",
	"max_visit": "max_visit", "max_duration": "max_visit", "max_ido": "max_visit",
	"budget": "budget", "budget_level": "budget", "ar_szint": "budget",
	"crowd": "crowd", "crowd_level": "crowd", "tomeg": "crowd",
	"priority": "priority", "prioritas": "priority",
	"premium": "premium", "premium_experience": "premium",
	"ticket_normal": "ticket_normal", "jegyar": "ticket_normal",
	"ticket_reduced": "ticket_reduced", "kedvezmenyes_jegyar": "ticket_reduced",
	"open": "open", "nyitas": "open", "close": "close", "zaras": "close",
	"seasons": "seasons", "szezon": "seasons",
	"closed_weekdays": "closed_weekdays", "zarva_napok": "closed_weekdays",
	"lat": "lat", "latitude": "lat", "lon": "lon", "lng": "lon", "longitude": "lon",
	"parking_name": "parking_name", "parkolo": "parking_name",
	"parking_walk": "parking_walk", "parkolo_seta": "parking_walk",
	"parking_lat": "parking_lat", "parking_lon": "parking_lon",
	"outdoor": "outdoor", "szabadteri": "outdoor",
	"tags": "tags", "cimkek": "tags",
}

var intensitySynonyms = map[string]types.Intensity{
	"light": types.IntensityLight, "low": types.IntensityLight, "konnyu": types.IntensityLight,
	"moderate": types.IntensityModerate, "medium": types.IntensityModerate, "kozepes": types.IntensityModerate,
	"intense": types.IntensityIntense, "high": types.IntensityIntense, "intenziv": types.IntensityIntense,
}

var styleSynonyms = map[string]types.TravelStyle{
	"active": types.StyleActive, "aktiv": types.StyleActive,
	"relax": types.StyleRelax, "pihenes": types.StyleRelax,
	"balanced": types.StyleBalanced, "kiegyensulyozott": types.StyleBalanced,
	"adventure": types.StyleAdventure, "kaland": types.StyleAdventure,
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
	"vasarnap": time.Sunday, "hetfo": time.Monday, "kedd": time.Tuesday,
	"szerda": time.Wednesday, "csutortok": time.Thursday, "pentek": time.Friday,
	"szombat": time.Saturday,
}

// LoadCSV reads a raw catalog export and normalizes it into canonical POIs.
// Rows missing required fields (name, category, visit duration) are skipped
// with a warning; they never reach the core. Position follows file order.
func LoadCSV(r io.Reader, logger *slog.Logger) ([]types.POI, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	fields := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := headerSynonyms[key]; ok {
			fields[canonical] = i
		}
	}

	var pois []types.POI
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("skipping malformed catalog row", slog.Int("line", line), slog.Any("error", err))
			continue
		}
		poi, err := parseRow(record, fields)
		if err != nil {
			logger.Warn("skipping catalog row with missing required fields",
				slog.Int("line", line), slog.Any("error", err))
			continue
		}
		poi.Position = len(pois)
		pois = append(pois, poi)
	}
	return pois, nil
}

// SeedRepository inserts ingested POIs into the catalog repository.
func SeedRepository(ctx context.Context, repo Repository, pois []types.POI, logger *slog.Logger) error {
	for _, poi := range pois {
		if _, err := repo.SavePOI(ctx, poi); err != nil {
			return fmt.Errorf("failed to seed POI %q: %w", poi.Name, err)
		}
	}
	logger.InfoContext(ctx, "catalog seeded", slog.Int("pois", len(pois)))
	return nil
}

func parseRow(record []string, fields map[string]int) (types.POI, error) {
	get := func(field string) string {
		idx, ok := fields[field]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	name := get("name")
	category := strings.ToLower(get("category"))
	if name == "" || category == "" {
		return types.POI{}, fmt.Errorf("name and category are required")
	}
	minVisit, err := strconv.Atoi(get("min_visit"))
	if err != nil || minVisit <= 0 {
		return types.POI{}, fmt.Errorf("invalid min visit duration %q", get("min_visit"))
	}
	maxVisit, err := strconv.Atoi(get("max_visit"))
	if err != nil || maxVisit < minVisit {
		maxVisit = minVisit
	}

	poi := types.POI{
		Name:              name,
		Category:          category,
		MinVisitMinutes:   minVisit,
		MaxVisitMinutes:   maxVisit,
		BudgetLevel:       atoiDefault(get("budget"), types.DefaultBudgetLevel),
		CrowdLevel:        atoiDefault(get("crowd"), 1),
		KidsOnly:          parseBool(get("kids_only")),
		PremiumExperience: parseBool(get("premium")),
		Outdoor:           parseBool(get("outdoor")),
		Priority:          types.PriorityLevel(strings.ToLower(get("priority"))),
	}

	if v := get("min_kid_age"); v != "" {
		if age, err := strconv.Atoi(v); err == nil {
			poi.MinKidAge = &age
		}
	}
	if v := get("max_kid_age"); v != "" {
		if age, err := strconv.Atoi(v); err == nil {
			poi.MaxKidAge = &age
		}
	}
	if style, ok := styleSynonyms[strings.ToLower(get("style"))]; ok {
		poi.Style = style
	}
	if intensity, ok := intensitySynonyms[strings.ToLower(get("intensity"))]; ok {
		poi.Intensity = intensity
	}
	for _, g := range splitList(get("target_groups")) {
		poi.TargetGroups = append(poi.TargetGroups, types.TargetGroup(g))
	}
	poi.Tags = splitList(get("tags"))
	poi.Tickets.Normal, _ = strconv.ParseFloat(get("ticket_normal"), 64)
	poi.Tickets.Reduced, _ = strconv.ParseFloat(get("ticket_reduced"), 64)
	poi.Latitude, _ = strconv.ParseFloat(get("lat"), 64)
	poi.Longitude, _ = strconv.ParseFloat(get("lon"), 64)

	poi.Hours.OpenMinute = parseClock(get("open"))
	poi.Hours.CloseMinute = parseClock(get("close"))
	for _, s := range splitList(get("seasons")) {
		poi.Hours.Seasons = append(poi.Hours.Seasons, types.Season(s))
	}
	for _, d := range splitList(get("closed_weekdays")) {
		if wd, ok := weekdayNames[d]; ok {
			poi.Hours.ClosedWeekdays = append(poi.Hours.ClosedWeekdays, wd)
		}
	}

	if pname := get("parking_name"); pname != "" {
		walk := atoiDefault(get("parking_walk"), 5)
		plat, _ := strconv.ParseFloat(get("parking_lat"), 64)
		plon, _ := strconv.ParseFloat(get("parking_lon"), 64)
		poi.Parking = &types.ParkingInfo{
			Name:            pname,
			Latitude:        plat,
			Longitude:       plon,
			WalkTimeMinutes: walk,
		}
	}
	return poi, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "yes", "1", "igen":
		return true
	default:
		return false
	}
}

func atoiDefault(raw string, def int) int {
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return def
}

// parseClock converts "HH:MM" to minutes from midnight; malformed values
// yield 0 (treated as no declared interval together with a zero close).
func parseClock(raw string) int {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0
	}
	return h*60 + m
}
