package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/scoreboard/internal/api/middleware"
	"github.com/mcoot/scoreboard/internal/api/request"
	"github.com/mcoot/scoreboard/internal/api/response"
	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/services/scores"
)

// ScoreHandler handles score endpoints. Every call is scoped to the
// authenticated caller.
type ScoreHandler struct {
	scoresService *scores.Service
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scoresService *scores.Service) *ScoreHandler {
	return &ScoreHandler{
		scoresService: scoresService,
	}
}

// List handles GET /api/scores
func (h *ScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	list, err := h.scoresService.List(r.Context(), identity.SubjectID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoresFromModel(list))
}

// Create handles POST /api/scores
func (h *ScoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	var req request.ScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	score, err := h.scoresService.Create(r.Context(), identity.SubjectID, req.PlayerName, req.Score)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ScoreFromModel(score))
}

// Update handles PUT /api/scores/{id}
func (h *ScoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id := model.ScoreID(mux.Vars(r)["id"])

	var req request.ScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	score, err := h.scoresService.Update(r.Context(), id, identity.SubjectID, req.PlayerName, req.Score)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreFromModel(score))
}

// Delete handles DELETE /api/scores/{id}
func (h *ScoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	id := model.ScoreID(mux.Vars(r)["id"])

	if err := h.scoresService.Delete(r.Context(), id, identity.SubjectID); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MessageResponse{Message: "Score deleted successfully"})
}
