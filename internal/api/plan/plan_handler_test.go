package plan

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// failingService returns the configured error from every operation.
type failingService struct {
	err error
}

var _ Service = (*failingService)(nil)

func (f *failingService) Generate(context.Context, types.GenerateRequest) (*types.PlanWithVersion, error) {
	return nil, f.err
}
func (f *failingService) GetPlan(context.Context, uuid.UUID) (*types.PlanWithVersion, error) {
	return nil, f.err
}
func (f *failingService) GetVersion(context.Context, uuid.UUID, int) (*types.PlanVersion, error) {
	return nil, f.err
}
func (f *failingService) ListVersions(context.Context, uuid.UUID) ([]types.PlanVersion, error) {
	return nil, f.err
}
func (f *failingService) DeletePlan(context.Context, uuid.UUID) error { return f.err }
func (f *failingService) Remove(context.Context, types.RemoveRequest) (*types.PlanWithVersion, error) {
	return nil, f.err
}
func (f *failingService) Replace(context.Context, types.ReplaceRequest) (*types.PlanWithVersion, error) {
	return nil, f.err
}
func (f *failingService) RegenerateRange(context.Context, types.RegenerateRangeRequest) (*types.PlanWithVersion, error) {
	return nil, f.err
}
func (f *failingService) Rollback(context.Context, types.RollbackRequest) (*types.PlanWithVersion, error) {
	return nil, f.err
}

func handlerRouter(svc Service) http.Handler {
	h := NewHandler(svc, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	r.Post("/plans", h.Generate)
	r.Get("/plans/{planID}", h.GetPlan)
	r.Delete("/plans/{planID}/items/{itemID}", h.RemoveItem)
	r.Post("/plans/{planID}/rollback", h.Rollback)
	return r
}

func TestHandlerErrorMapping(t *testing.T) {
	planID := uuid.New()
	itemID := uuid.New()

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation maps to 400", fmt.Errorf("bad input: %w", types.ErrValidation), http.StatusBadRequest},
		{"not found maps to 404", fmt.Errorf("gone: %w", types.ErrNotFound), http.StatusNotFound},
		{"infeasible maps to 422", fmt.Errorf("no substitute: %w", types.ErrInfeasible), http.StatusUnprocessableEntity},
		{"conflict maps to 409", fmt.Errorf("stale: %w", types.ErrVersionConflict), http.StatusConflict},
		{"unknown maps to 500", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := handlerRouter(&failingService{err: tc.err})

			req := httptest.NewRequest(http.MethodDelete,
				fmt.Sprintf("/plans/%s/items/%s", planID, itemID), nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestHandlerRejectsMalformedIDs(t *testing.T) {
	router := handlerRouter(&failingService{err: nil})

	req := httptest.NewRequest(http.MethodGet, "/plans/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerRejectsMalformedBody(t *testing.T) {
	router := handlerRouter(&failingService{err: nil})

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/plans/%s/rollback", uuid.New()), strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
