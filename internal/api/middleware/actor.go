package middleware

import (
	"net/http"
	"strings"

	"github.com/mcoot/gamesessions/internal/authz"
	"github.com/mcoot/gamesessions/internal/middleware"
	"github.com/mcoot/gamesessions/internal/model"
)

// ActorHeader names the header carrying the calling user's id
const ActorHeader = middleware.ActorHeader

// Actor records the calling user, if any, for authorization checks
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(ActorHeader))
		if id != "" {
			r = r.WithContext(authz.WithActor(r.Context(), model.PlayerID(id)))
		}
		next.ServeHTTP(w, r)
	})
}
