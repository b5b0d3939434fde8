package web

import (
	"context"
	"net/http"
	"strings"

	"expense-ltd/internal/domain/model"
)

type ctxKey string

const ctxUserID ctxKey = "user_id"

func userIDFrom(ctx context.Context) string {
	if v := ctx.Value(ctxUserID); v != nil {
		return v.(string)
	}
	return ""
}

// authMiddleware resolves the Bearer access token to a user id through the
// identity provider and stores it in the request context. Failures surface as
// the USER_NOT_AUTHENTICATED taxonomy kind so clients match one vocabulary
// everywhere.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := r.Header.Get("Authorization")
		if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			writeJSON(w, http.StatusUnauthorized,
				errorBody(model.KindUserNotAuthenticated, "You must be signed in."))
			return
		}

		userID, err := s.identity.VerifyToken(r.Context(), strings.TrimSpace(hdr[7:]))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized,
				errorBody(model.KindUserNotAuthenticated, "Invalid or expired session."))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserID, userID)))
	})
}
