package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

type ctxKey string

const (
	sessionCookieName = "session"
	actorCtxKey       = ctxKey("actor")
)

// ActorResolver loads the full actor for a session's user id. Set it during
// app bootstrap via SetActorResolver; the middleware uses it to turn the
// signed cookie into an Actor. If nil, sessions resolve to the zero Actor.
type ActorResolver func(ctx context.Context, userID string) (Actor, bool)

var resolver ActorResolver

// SetActorResolver configures the global resolver used by Middleware.
func SetActorResolver(r ActorResolver) { resolver = r }

// Secret returns SESSION_SECRET or default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

// CreateSession sets a signed cookie with the user id.
func CreateSession(w http.ResponseWriter, userID string) {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(userID))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	value := userID + "." + sig
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie signature and returns the user id.
func ParseSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	idx := strings.LastIndex(c.Value, ".")
	if idx <= 0 {
		return "", false
	}
	userID, sig := c.Value[:idx], c.Value[idx+1:]
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(userID))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}
	return userID, true
}

// WithActor stores the actor in context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// ActorFromContext extracts the actor placed by Middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	v := ctx.Value(actorCtxKey)
	if v == nil {
		return Actor{}, false
	}
	a, ok := v.(Actor)
	if !ok || a.IsZero() {
		return Actor{}, false
	}
	return a, true
}

// Middleware resolves the session cookie to an Actor and attaches it to the
// request context. Requests without a valid session pass through with no
// actor; RequireAuth decides what to do about that.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := ParseSession(r); ok && resolver != nil {
			if actor, found := resolver(r.Context(), uid); found {
				r = r.WithContext(WithActor(r.Context(), actor))
			} else {
				// Session refers to a non-existing/disabled user: clear it.
				ClearSession(w)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth returns 401 JSON when no actor is attached to the request.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"unauthorized"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}
