package plan

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{logger: logger, service: service}
}

// Generate godoc
// @Summary      Generate a new itinerary plan
// @Description  Builds a multi-day itinerary from the POI catalog and stores it as version 1
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        request body types.GenerateRequest true "Generation parameters"
// @Success      201 {object} types.PlanWithVersion
// @Failure      400 {object} map[string]interface{}
// @Router       /plans [post]
func (h *HandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, result)
}

// GetPlan godoc
// @Summary      Get a plan with its latest version
// @Tags         plans
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Success      200 {object} types.PlanWithVersion
// @Failure      404 {object} map[string]interface{}
// @Router       /plans/{planID} [get]
func (h *HandlerImpl) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planID(w, r)
	if !ok {
		return
	}
	result, err := h.service.GetPlan(r.Context(), planID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// DeletePlan godoc
// @Summary      Delete a plan and its whole version history
// @Tags         plans
// @Param        planID path string true "Plan ID"
// @Success      204
// @Failure      404 {object} map[string]interface{}
// @Router       /plans/{planID} [delete]
func (h *HandlerImpl) DeletePlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeletePlan(r.Context(), planID); err != nil {
		h.respondError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// ListVersions godoc
// @Summary      List the full version lineage of a plan
// @Tags         plans
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Success      200 {array} types.PlanVersion
// @Router       /plans/{planID}/versions [get]
func (h *HandlerImpl) ListVersions(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planID(w, r)
	if !ok {
		return
	}
	versions, err := h.service.ListVersions(r.Context(), planID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, versions)
}

// GetVersion godoc
// @Summary      Get one historical version of a plan
// @Tags         plans
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Param        versionNumber path int true "Version number"
// @Success      200 {object} types.PlanVersion
// @Failure      404 {object} map[string]interface{}
// @Router       /plans/{planID}/versions/{versionNumber} [get]
func (h *HandlerImpl) GetVersion(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planID(w, r)
	if !ok {
		return
	}
	versionNumber, err := strconv.Atoi(chi.URLParam(r, "versionNumber"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid version number")
		return
	}
	version, err := h.service.GetVersion(r.Context(), planID, versionNumber)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, version)
}

// RemoveItem godoc
// @Summary      Remove an item from the current plan
// @Description  Appends a REMOVE version without the item (and its parking stop, if any)
// @Tags         plans
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Param        itemID path string true "Item ID"
// @Success      200 {object} types.PlanWithVersion
// @Failure      409 {object} map[string]interface{}
// @Router       /plans/{planID}/items/{itemID} [delete]
func (h *HandlerImpl) RemoveItem(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planID(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid item ID")
		return
	}
	result, err := h.service.Remove(r.Context(), types.RemoveRequest{PlanID: planID, ItemID: itemID})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// ReplaceItem godoc
// @Summary      Replace an attraction with a similar one
// @Description  Finds the closest substitute by category, audience, intensity, duration and vibes
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Param        itemID path string true "Item ID"
// @Success      200 {object} types.PlanWithVersion
// @Failure      422 {object} map[string]interface{}
// @Router       /plans/{planID}/items/{itemID}/replace [post]
func (h *HandlerImpl) ReplaceItem(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planID(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid item ID")
		return
	}
	var body struct {
		Strategy types.ReplaceStrategy `json:"strategy"`
	}
	if r.ContentLength > 0 {
		if err := api.DecodeJSONBody(w, r, &body); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}
	result, err := h.service.Replace(r.Context(), types.ReplaceRequest{
		PlanID:   planID,
		ItemID:   itemID,
		Strategy: body.Strategy,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// RegenerateRange godoc
// @Summary      Rebuild part of one day
// @Description  Clears the requested time range (except meals and pinned items) and reschedules it
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Param        request body types.RegenerateRangeRequest true "Range to rebuild"
// @Success      200 {object} types.PlanWithVersion
// @Failure      409 {object} map[string]interface{}
// @Router       /plans/{planID}/regenerate [post]
func (h *HandlerImpl) RegenerateRange(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planID(w, r)
	if !ok {
		return
	}
	var req types.RegenerateRangeRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.PlanID = planID
	result, err := h.service.RegenerateRange(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// Rollback godoc
// @Summary      Roll the plan back to an earlier version
// @Description  Appends a new version holding a copy of the target snapshot; history is never rewritten
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Param        request body types.RollbackRequest true "Target version"
// @Success      200 {object} types.PlanWithVersion
// @Failure      404 {object} map[string]interface{}
// @Router       /plans/{planID}/rollback [post]
func (h *HandlerImpl) Rollback(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.planID(w, r)
	if !ok {
		return
	}
	var req types.RollbackRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.PlanID = planID
	result, err := h.service.Rollback(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func (h *HandlerImpl) planID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid plan ID")
		return uuid.Nil, false
	}
	return planID, true
}

func (h *HandlerImpl) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, types.ErrValidation):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrInfeasible):
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, types.ErrVersionConflict):
		api.ErrorResponse(w, r, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "plan operation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
	}
}
