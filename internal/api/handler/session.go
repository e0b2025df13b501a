package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamesessions/internal/api/apierr"
	"github.com/mcoot/gamesessions/internal/api/request"
	"github.com/mcoot/gamesessions/internal/api/response"
	"github.com/mcoot/gamesessions/internal/directory"
	"github.com/mcoot/gamesessions/internal/model"
	"github.com/mcoot/gamesessions/internal/services/session"
)

// SessionHandler handles game session endpoints
type SessionHandler struct {
	manager   session.ManagerInterface
	directory directory.Directory
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager session.ManagerInterface, dir directory.Directory) *SessionHandler {
	return &SessionHandler{
		manager:   manager,
		directory: dir,
	}
}

func gameID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["gameId"])
}

// Create handles POST /api/v1/games
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.OpCreate, err)
		return
	}
	if req.UserID == "" {
		apierr.WriteError(w, apierr.OpCreate, apierr.NewInvalidRequestError("userId is required"))
		return
	}

	s, err := h.manager.Create(r.Context(), session.CreateParams{
		HostID:   model.PlayerID(req.UserID),
		Password: req.GamePassword,
		Location: req.Location,
		IsPublic: req.IsPublic,
		Name:     req.GameName,
	})
	if err != nil {
		apierr.WriteError(w, apierr.OpCreate, err)
		return
	}

	response.OK(w, response.CreateResponse{
		Status:   response.Success(apierr.SuccessCode(apierr.OpCreate)),
		GameID:   string(s.ID),
		GameCode: string(s.JoinCode),
	})
}

// Get handles GET /api/v1/games/{gameId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(r.Context(), gameID(r))
	if err != nil {
		apierr.WriteError(w, apierr.OpGet, err)
		return
	}

	response.OK(w, response.SessionResponse{
		Status: response.Success(apierr.SuccessCode(apierr.OpGet)),
		Game:   response.SessionFromModel(s),
	})
}

// Join handles POST /api/v1/games/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.OpJoin, err)
		return
	}
	if req.UserID == "" || req.GameCode == "" {
		apierr.WriteError(w, apierr.OpJoin, apierr.NewInvalidRequestError("userId and gameCode are required"))
		return
	}

	id, err := h.manager.Join(r.Context(), model.PlayerID(req.UserID), model.JoinCode(req.GameCode), req.GamePassword)
	if err != nil {
		apierr.WriteError(w, apierr.OpJoin, err)
		return
	}

	response.OK(w, response.JoinResponse{
		Status: response.Success(apierr.SuccessCode(apierr.OpJoin)),
		GameID: string(id),
	})
}

// JoinTeam handles POST /api/v1/games/{gameId}/team
func (h *SessionHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	var req request.JoinTeamRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.OpJoinTeam, err)
		return
	}
	if req.UserID == "" {
		apierr.WriteError(w, apierr.OpJoinTeam, apierr.NewInvalidRequestError("userId is required"))
		return
	}

	if err := h.manager.JoinTeam(r.Context(), model.PlayerID(req.UserID), req.Team, gameID(r)); err != nil {
		apierr.WriteError(w, apierr.OpJoinTeam, err)
		return
	}

	response.OK(w, response.StatusResponse{Status: response.Success(apierr.SuccessCode(apierr.OpJoinTeam))})
}

// Start handles POST /api/v1/games/{gameId}/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Start(r.Context(), gameID(r)); err != nil {
		apierr.WriteError(w, apierr.OpStart, err)
		return
	}

	response.OK(w, response.StatusResponse{Status: response.Success(apierr.SuccessCode(apierr.OpStart))})
}

// End handles POST /api/v1/games/{gameId}/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	var req request.ScoreRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.OpEnd, err)
		return
	}

	s, err := h.manager.End(r.Context(), gameID(r), scoreFromRequest(req))
	if err != nil {
		apierr.WriteError(w, apierr.OpEnd, err)
		return
	}

	response.OK(w, response.EndResponse{
		Status: response.Success(apierr.SuccessCode(apierr.OpEnd)),
		Winner: s.Winner,
	})
}

// UpdateState handles PUT /api/v1/games/{gameId}/state
func (h *SessionHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	var req request.ScoreRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.OpUpdateState, err)
		return
	}

	if err := h.manager.UpdateState(r.Context(), gameID(r), scoreFromRequest(req)); err != nil {
		apierr.WriteError(w, apierr.OpUpdateState, err)
		return
	}

	response.OK(w, response.StatusResponse{Status: response.Success(apierr.SuccessCode(apierr.OpUpdateState))})
}

// GetTeams handles GET /api/v1/games/{gameId}/teams
func (h *SessionHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.ListUsers(r.Context())
	if err != nil {
		apierr.WriteError(w, apierr.OpGetTeams, err)
		return
	}

	red, blue, err := h.manager.GetTeams(r.Context(), gameID(r), users)
	if err != nil {
		apierr.WriteError(w, apierr.OpGetTeams, err)
		return
	}

	response.OK(w, response.TeamsResponse{
		Status:            response.Success(apierr.SuccessCode(apierr.OpGetTeams)),
		TeamRedUsernames:  red,
		TeamBlueUsernames: blue,
	})
}

// GetStats handles GET /api/v1/games/{gameId}/stats
func (h *SessionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.GetStats(r.Context(), gameID(r))
	if err != nil {
		apierr.WriteError(w, apierr.OpGetStats, err)
		return
	}

	response.OK(w, response.StatsFromModel(apierr.SuccessCode(apierr.OpGetStats), stats))
}

// Delete handles DELETE /api/v1/games/{gameId}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), gameID(r)); err != nil {
		apierr.WriteError(w, apierr.OpDelete, err)
		return
	}

	response.OK(w, response.StatusResponse{Status: response.Success(apierr.SuccessCode(apierr.OpDelete))})
}

// Reconnect handles GET /api/v1/games/{gameId}/reconnect/{userId}
func (h *SessionHandler) Reconnect(w http.ResponseWriter, r *http.Request) {
	userID := model.PlayerID(mux.Vars(r)["userId"])

	allowed, isHost, err := h.manager.Reconnect(r.Context(), gameID(r), userID)
	if err != nil {
		resp := apierr.NewErrorResponse(apierr.OpReconnect, err)
		resp.AllowReconnect = &allowed
		response.JSON(w, http.StatusBadRequest, resp)
		return
	}

	response.OK(w, response.ReconnectResponse{
		Status:         response.Success(apierr.SuccessCode(apierr.OpReconnect)),
		AllowReconnect: allowed,
		IsHost:         isHost,
	})
}

func scoreFromRequest(req request.ScoreRequest) model.Score {
	return model.Score{
		Duration:      req.GameTime,
		TeamRedScore:  req.TeamRedScores,
		TeamBlueScore: req.TeamBlueScores,
	}
}
