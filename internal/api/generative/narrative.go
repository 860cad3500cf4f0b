package generative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const defaultModel = "gemini-2.0-flash"

// Narrator turns a finished plan into a short human-readable trip summary.
// It is strictly best-effort: plan generation never fails because the model
// is down, and callers get an empty string on any error.
type Narrator struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

func NewNarrator(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Narrator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Narrator{logger: logger, client: client, model: model}, nil
}

// Describe asks the model for a two-sentence teaser of the itinerary.
func (n *Narrator) Describe(ctx context.Context, plan types.Plan, days []types.DayPlan) string {
	prompt := buildPrompt(plan, days)
	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.7)}
	result, err := n.client.Models.GenerateContent(ctx, n.model, genai.Text(prompt), config)
	if err != nil {
		n.logger.WarnContext(ctx, "plan narrative generation failed",
			slog.String("planID", plan.ID.String()),
			slog.Any("error", err))
		return ""
	}
	return strings.TrimSpace(result.Text())
}

func buildPrompt(plan types.Plan, days []types.DayPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a warm, factual two-sentence summary of this %d-day trip to %s for a %s group. ",
		plan.DayCount, plan.Location, plan.GroupType)
	sb.WriteString("Do not invent attractions; mention only the ones listed. Schedule:\n")
	for _, day := range days {
		fmt.Fprintf(&sb, "Day %d (%s):", day.DayIndex, day.Date.Format("2006-01-02"))
		for _, it := range day.Items {
			if it.Type != types.ItemAttraction {
				continue
			}
			fmt.Fprintf(&sb, " %s (%s-%s);", it.Name, it.Start.Format("15:04"), it.End.Format("15:04"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
