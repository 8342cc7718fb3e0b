package matching

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/emberlyapp/emberly-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Discover serves GET /discover/{userId}?limit=&offset=
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	params := DiscoverParams{Limit: 20, Offset: 0}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			params.Limit = l
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil {
			params.Offset = o
		}
	}

	if err := utils.ValidateStruct(params); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Discover(r.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to rank candidates")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, newDiscoverResponseDTO(result, params.Limit, params.Offset))
}

// GetCompatibility serves GET /compatibility/{userIdA}/{userIdB}
func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userIDA, errA := pathID(r, "userIdA")
	userIDB, errB := pathID(r, "userIdB")
	if errA != nil || errB != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	result, err := h.service.Compatibility(r.Context(), userIDA, userIDB)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute compatibility")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, CompatibilityResponseDTO{
		Percentage:    result.Percentage,
		SharedFactors: result.SharedFactors,
	})
}

// GetDailyPicks serves GET /picks/{userId}?limit=
func (h *Handler) GetDailyPicks(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	params := GetPicksParams{Limit: 10}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			params.Limit = l
		}
	}

	if err := utils.ValidateStruct(params); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	picks, err := h.service.GetDailyPicks(r.Context(), userID, params.Limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get daily picks")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, picks)
}

// GeneratePicks serves POST /picks/generate, used by ops tooling to
// force a batch run outside the schedule.
func (h *Handler) GeneratePicks(w http.ResponseWriter, r *http.Request) {
	if err := h.service.GenerateDailyPicks(r.Context()); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate picks")
		return
	}

	utils.RespondWithJSON(w, http.StatusAccepted, map[string]string{"status": "generated"})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
