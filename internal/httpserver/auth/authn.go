package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/go-logr/logr"

	"github.com/makima-ai/makima-go/internal/httpserver/handlers"
)

var (
	sessionKey = &struct{}{}

	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

func AuthSessionFrom(ctx context.Context) (*Session, bool) {
	v, ok := ctx.Value(sessionKey).(*Session)
	return v, ok && v != nil
}

func AuthSessionTo(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

type Principal struct {
	User string
}

type Session struct {
	Principal Principal
}

// AuthProvider authenticates API requests
type AuthProvider interface {
	Authenticate(r *http.Request) (*Session, error)
}

// AuthnMiddleware rejects requests the provider does not authenticate with
// 401. The session of the others is stored in the request context and the
// user is added to the request logger.
func AuthnMiddleware(authn AuthProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := authn.Authenticate(r)
			if err != nil {
				handlers.RespondWithError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
				return
			}
			if session != nil {
				ctx := AuthSessionTo(r.Context(), session)
				log := logr.FromContextOrDiscard(ctx).WithValues("user", session.Principal.User)
				r = r.WithContext(logr.NewContext(ctx, log))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UnsecureAuthenticator accepts every request. The user is taken from the
// X-User-Id header.
type UnsecureAuthenticator struct{}

func (a *UnsecureAuthenticator) Authenticate(r *http.Request) (*Session, error) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		userID = "anonymous"
	}
	return &Session{Principal: Principal{User: userID}}, nil
}

// TokenAuthenticator requires "Authorization: Bearer <Token>"
type TokenAuthenticator struct {
	Token string
}

func (a *TokenAuthenticator) Authenticate(r *http.Request) (*Session, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, ErrMissingToken
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.Token)) != 1 {
		return nil, ErrInvalidToken
	}
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		userID = "token"
	}
	return &Session{Principal: Principal{User: userID}}, nil
}
