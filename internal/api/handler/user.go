package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamesessions/internal/api/apierr"
	"github.com/mcoot/gamesessions/internal/api/request"
	"github.com/mcoot/gamesessions/internal/api/response"
	"github.com/mcoot/gamesessions/internal/directory"
	"github.com/mcoot/gamesessions/internal/model"
)

// UserHandler handles user directory endpoints
type UserHandler struct {
	directory directory.Directory
}

// NewUserHandler creates a new user handler
func NewUserHandler(dir directory.Directory) *UserHandler {
	return &UserHandler{directory: dir}
}

// Put handles PUT /api/v1/users/{userId}
func (h *UserHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req request.PutUserRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, apierr.OpPutUser, err)
		return
	}
	if req.Username == "" {
		apierr.WriteError(w, apierr.OpPutUser, apierr.NewInvalidRequestError("username is required"))
		return
	}

	user := model.UserRecord{
		ID:       model.PlayerID(mux.Vars(r)["userId"]),
		Username: req.Username,
	}
	if err := h.directory.PutUser(r.Context(), user); err != nil {
		apierr.WriteError(w, apierr.OpPutUser, err)
		return
	}

	response.OK(w, response.UserResponse{
		Status: response.Success(apierr.SuccessCode(apierr.OpPutUser)),
		User:   response.User{ID: string(user.ID), Username: user.Username},
	})
}
