package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pmanser/svnd/internal/contracts"
)

// SessionCookie is the name of the cookie that carries the session token.
const SessionCookie = "svnd_session"

// LoginRequest represents the incoming API request to open a session.
type LoginRequest struct {
	Body struct {
		Username string `doc:"Login name"       example:"jsmith" json:"username" minLength:"1"`
		Password string `doc:"Login credential"                  json:"password" minLength:"1"`
	}
}

// LoginResponse sets the session cookie and echoes the authenticated user.
type LoginResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Username string `doc:"Authenticated login name" json:"username"`
	}
}

// LogoutRequest carries the session cookie of the session to revoke.
type LogoutRequest struct {
	Token string `cookie:"svnd_session" doc:"Session token to revoke"`
}

// LogoutResponse expires the session cookie.
type LogoutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
}

// RegisterAuthRoutes sets up the session API endpoint routes.
// The session lifetime is surfaced to clients as the cookie max-age.
func RegisterAuthRoutes(
	routerAPI huma.API,
	sessions contracts.SessionAuthenticator,
	lifetime time.Duration,
	apiPathPrefix string,
) {
	authAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Auth"}

	huma.Register(
		authAPI,
		huma.Operation{
			OperationID: "login",
			Method:      http.MethodPost,
			Path:        "/login",
			Summary:     "Open a session",
			Tags:        tags,
		},
		func(ctx context.Context, input *LoginRequest) (*LoginResponse, error) {
			return handleLogin(ctx, sessions, lifetime, input.Body.Username, input.Body.Password)
		},
	)

	huma.Register(
		authAPI,
		huma.Operation{
			OperationID: "logout",
			Method:      http.MethodPost,
			Path:        "/logout",
			Summary:     "Revoke the current session",
			Tags:        tags,
		},
		func(ctx context.Context, input *LogoutRequest) (*LogoutResponse, error) {
			return handleLogout(sessions, input.Token)
		},
	)
}

// handleLogin verifies credentials and issues a fresh session cookie.
func handleLogin(
	ctx context.Context,
	sessions contracts.SessionAuthenticator,
	lifetime time.Duration,
	username string,
	password string,
) (*LoginResponse, error) {
	token, err := sessions.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	resp := &LoginResponse{
		SetCookie: sessionCookie(token, int(lifetime.Seconds())),
	}
	resp.Body.Username = username

	return resp, nil
}

// handleLogout revokes the session and expires the cookie client-side.
// Revoking an unknown or already-expired token is not an error.
func handleLogout(sessions contracts.SessionAuthenticator, token string) (*LogoutResponse, error) {
	if token != "" {
		sessions.Logout(token)
	}

	return &LogoutResponse{SetCookie: sessionCookie("", -1)}, nil
}

// sessionCookie builds the session cookie with the attributes every response uses.
func sessionCookie(token string, maxAge int) http.Cookie {
	return http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
