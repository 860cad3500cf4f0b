package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func TestSeasonOf(t *testing.T) {
	assert.Equal(t, types.SeasonWinter, SeasonOf(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, types.SeasonSpring, SeasonOf(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, types.SeasonSummer, SeasonOf(time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, types.SeasonAutumn, SeasonOf(time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, types.SeasonWinter, SeasonOf(time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)))
}

func TestOpenAtRegularHours(t *testing.T) {
	hours := types.OpeningHours{OpenMinute: 9 * 60, CloseMinute: 18 * 60}
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	assert.True(t, OpenAt(hours, monday, 9*60))
	assert.True(t, OpenAt(hours, monday, 17*60+59))
	assert.False(t, OpenAt(hours, monday, 8*60+59))
	assert.False(t, OpenAt(hours, monday, 18*60))
}

func TestOpenAtClosedSunday(t *testing.T) {
	// museum closed Sundays
	hours := types.OpeningHours{
		OpenMinute:     10 * 60,
		CloseMinute:    18 * 60,
		ClosedWeekdays: []time.Weekday{time.Sunday},
	}
	sunday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)

	assert.False(t, OpenAt(hours, sunday, 12*60))
	assert.True(t, OpenAt(hours, saturday, 12*60))
}

func TestOpenAtSeasonal(t *testing.T) {
	// open air lido available only in summer
	hours := types.OpeningHours{
		OpenMinute:  8 * 60,
		CloseMinute: 20 * 60,
		Seasons:     []types.Season{types.SeasonSummer},
	}
	july := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	january := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, OpenAt(hours, july, 10*60))
	assert.False(t, OpenAt(hours, january, 10*60))
}

func TestOpenAtWeekdayException(t *testing.T) {
	hours := types.OpeningHours{
		OpenMinute:  9 * 60,
		CloseMinute: 17 * 60,
		Exceptions: map[time.Weekday]types.DayHours{
			time.Friday:   {OpenMinute: 9 * 60, CloseMinute: 21 * 60},
			time.Saturday: {Closed: true},
		},
	}
	friday := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	thursday := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)

	assert.True(t, OpenAt(hours, friday, 20*60))
	assert.False(t, OpenAt(hours, thursday, 20*60))
	assert.False(t, OpenAt(hours, saturday, 12*60))
}

func TestOpenAtNoDeclaredInterval(t *testing.T) {
	// a viewpoint without declared hours is always open on eligible days
	hours := types.OpeningHours{ClosedWeekdays: []time.Weekday{time.Monday}}
	tuesday := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	assert.True(t, OpenAt(hours, tuesday, 6*60))
	assert.False(t, OpenAt(hours, monday, 12*60))
}

func TestOpenForInterval(t *testing.T) {
	hours := types.OpeningHours{OpenMinute: 9 * 60, CloseMinute: 18 * 60}
	day := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, OpenForInterval(hours, day, 9*60, 18*60))
	assert.False(t, OpenForInterval(hours, day, 17*60, 19*60))
}
