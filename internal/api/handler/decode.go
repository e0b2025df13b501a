package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/gamesessions/internal/api/apierr"
)

// decode reads a JSON body into v
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}
