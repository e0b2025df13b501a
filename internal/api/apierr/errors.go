package apierr

import (
	"errors"
	"net/http"

	"github.com/mcoot/gamesessions/internal/api/response"
	"github.com/mcoot/gamesessions/internal/model"
)

// Op identifies the API operation an error came from. The same domain error
// maps to different status codes depending on the operation.
type Op string

const (
	OpCreate      Op = "create"
	OpJoin        Op = "join"
	OpJoinTeam    Op = "join_team"
	OpStart       Op = "start"
	OpEnd         Op = "end"
	OpUpdateState Op = "update_state"
	OpGetTeams    Op = "get_teams"
	OpGetStats    Op = "get_stats"
	OpDelete      Op = "delete"
	OpReconnect   Op = "reconnect"
	OpGet         Op = "get"
	OpPutUser     Op = "put_user"
)

// Failure codes
const (
	CodeCreateFailed      = "GF0"
	CodeJoinRunning       = "GF1"
	CodeJoinFinished      = "GF2"
	CodeBadPassword       = "GF3"
	CodeTeamRunning       = "GF4"
	CodeSessionClosed     = "GF5"
	CodeReconnectFinished = "GF6"
	CodeNotAParticipant   = "GF7"
	CodeNotFound          = "GF8"
	CodeInvalidRequest    = "GF9"
	CodeForbidden         = "GF10"
	CodeUnhandled         = "UNH"
)

// Success codes
var successCodes = map[Op]string{
	OpCreate:      "GS0",
	OpJoin:        "GS1",
	OpJoinTeam:    "GS2",
	OpStart:       "GS3",
	OpEnd:         "GS4",
	OpUpdateState: "GS5",
	OpGetTeams:    "GS6",
	OpGetStats:    "GS7",
	OpDelete:      "GS8",
	OpReconnect:   "GS9",
	OpGet:         "GS10",
	OpPutUser:     "US0",
}

// SuccessCode returns the status code reported when op succeeds
func SuccessCode(op Op) string {
	return successCodes[op]
}

// operationCodes holds the rejections specific to one operation
var operationCodes = map[Op][]struct {
	err  error
	code string
}{
	OpJoin: {
		{model.ErrAlreadyRunning, CodeJoinRunning},
		{model.ErrAlreadyFinished, CodeJoinFinished},
		{model.ErrBadPassword, CodeBadPassword},
	},
	OpJoinTeam: {
		{model.ErrAlreadyRunning, CodeTeamRunning},
	},
	OpUpdateState: {
		{model.ErrSessionClosed, CodeSessionClosed},
	},
	OpReconnect: {
		{model.ErrAlreadyFinished, CodeReconnectFinished},
		{model.ErrNotAParticipant, CodeNotAParticipant},
	},
}

// requestError is a malformed request, rejected before reaching the manager
type requestError struct {
	message string
}

func (e *requestError) Error() string {
	return e.message
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &requestError{message: message}
}

// Classify maps an error from op to its status code. Unhandled errors
// report true so callers can attach the raw error.
func Classify(op Op, err error) (code string, unhandled bool) {
	var re *requestError
	if errors.As(err, &re) {
		return CodeInvalidRequest, false
	}

	for _, c := range operationCodes[op] {
		if errors.Is(err, c.err) {
			return c.code, false
		}
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return CodeNotFound, false
	case errors.Is(err, model.ErrInvalidTeam), errors.Is(err, model.ErrInvalidUserID):
		return CodeInvalidRequest, false
	case errors.Is(err, model.ErrNotHost):
		return CodeForbidden, false
	case errors.Is(err, model.ErrAlreadyFinished):
		// Finished is absorbing for start, end and team changes
		return CodeSessionClosed, false
	}

	if op == OpCreate {
		return CodeCreateFailed, false
	}
	return CodeUnhandled, true
}

// WriteError writes a failure envelope. Every failure is reported with
// HTTP 400 and success=false.
func WriteError(w http.ResponseWriter, op Op, err error) {
	response.JSON(w, http.StatusBadRequest, NewErrorResponse(op, err))
}

// NewErrorResponse builds the failure envelope for err
func NewErrorResponse(op Op, err error) response.ErrorResponse {
	code, unhandled := Classify(op, err)
	resp := response.ErrorResponse{Status: response.Failure(code)}
	if unhandled {
		resp.Error = err.Error()
	}
	return resp
}
