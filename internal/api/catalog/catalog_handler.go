package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

type HandlerImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(repo Repository, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{logger: logger, repo: repo}
}

// ListPOIs godoc
// @Summary      List the POI catalog
// @Description  Returns every POI in stable catalog order
// @Tags         catalog
// @Produce      json
// @Success      200 {array} types.POI
// @Router       /pois [get]
func (h *HandlerImpl) ListPOIs(w http.ResponseWriter, r *http.Request) {
	pois, err := h.repo.ListPOIs(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list catalog", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, pois)
}

// GetPOI godoc
// @Summary      Get one POI
// @Tags         catalog
// @Produce      json
// @Param        poiID path string true "POI ID"
// @Success      200 {object} types.POI
// @Failure      404 {object} map[string]interface{}
// @Router       /pois/{poiID} [get]
func (h *HandlerImpl) GetPOI(w http.ResponseWriter, r *http.Request) {
	poiID, err := uuid.Parse(chi.URLParam(r, "poiID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid POI ID")
		return
	}
	poi, err := h.repo.GetPOI(r.Context(), poiID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to load POI", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, poi)
}

// CreatePOI godoc
// @Summary      Add a POI to the catalog
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body types.POI true "POI definition"
// @Success      201 {object} map[string]interface{}
// @Failure      400 {object} map[string]interface{}
// @Router       /pois [post]
func (h *HandlerImpl) CreatePOI(w http.ResponseWriter, r *http.Request) {
	var poi types.POI
	if err := api.DecodeJSONBody(w, r, &poi); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.repo.SavePOI(r.Context(), poi)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to save POI", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]any{"id": id})
}
