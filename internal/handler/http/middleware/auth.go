package middleware

import (
	"net/http"

	"github.com/avvikelse/avvikelse-backend-go/internal/domain/user"
	"github.com/avvikelse/avvikelse-backend-go/internal/handler/http/response"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired runs after jwtauth.Verifier and puts the caller's claims on the
// request context.
func AuthRequired(svc jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, raw, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			claims, err := svc.ParseClaims(raw)
			if err != nil {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(user.WithClaims(r.Context(), claims)))
		}
		return http.HandlerFunc(hfn)
	}
}
