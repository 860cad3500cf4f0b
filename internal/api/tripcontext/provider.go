package tripcontext

import (
	"context"
	"log/slog"
	"time"

	"github.com/FACorreiaa/go-trip-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Provider supplies the situational context (season, weather) for a location
// and date. The itinerary core treats the result as opaque input.
type Provider interface {
	GetContext(ctx context.Context, location string, date time.Time) (types.TripContext, error)
}

// WeatherSource abstracts whatever forecast backend is wired in. The default
// provider works without one.
type WeatherSource interface {
	Forecast(ctx context.Context, location string, date time.Time) (types.Weather, error)
}

var _ Provider = (*StaticProvider)(nil)

// StaticProvider derives the season from the date and consults an optional
// weather source; with none configured the weather stays unknown.
type StaticProvider struct {
	logger  *slog.Logger
	weather WeatherSource
}

func NewStaticProvider(weather WeatherSource, logger *slog.Logger) *StaticProvider {
	return &StaticProvider{logger: logger, weather: weather}
}

func (p *StaticProvider) GetContext(ctx context.Context, location string, date time.Time) (types.TripContext, error) {
	out := types.TripContext{
		Season:  catalog.SeasonOf(date),
		Date:    date,
		Weekday: date.Weekday(),
		Weather: types.WeatherUnknown,
	}
	if p.weather != nil {
		w, err := p.weather.Forecast(ctx, location, date)
		if err != nil {
			// weather is advisory; a failed lookup never blocks a build
			p.logger.WarnContext(ctx, "weather lookup failed, continuing without forecast",
				slog.String("location", location), slog.Any("error", err))
		} else {
			out.Weather = w
		}
	}
	return out, nil
}
