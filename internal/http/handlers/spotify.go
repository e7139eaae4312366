package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SpotifyLogin handles GET /api/spotify/login, redirecting the browser to the
// provider's authorization page.
func (a *App) SpotifyLogin(w http.ResponseWriter, r *http.Request) {
	if a.Spotify == nil || !a.Spotify.HasCredentials() {
		a.error(w, http.StatusServiceUnavailable, "Spotify integration is not configured", "")
		return
	}
	http.Redirect(w, r, a.Spotify.AuthorizeURL(uuid.NewString()), http.StatusFound)
}

// SpotifyCallback handles GET /api/spotify/callback, exchanging the
// authorization code for tokens. Tokens go straight back to the caller; the
// relay stores nothing.
func (a *App) SpotifyCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		a.error(w, http.StatusBadRequest, "Authorization code is missing", "")
		return
	}
	token, err := a.Spotify.Exchange(r.Context(), code)
	if err != nil {
		a.Logger.Error().Err(err).Msg("spotify token exchange failed")
		a.error(w, http.StatusBadRequest, "Spotify authentication failed", "")
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
	})
}

// SpotifyRefresh handles GET /api/spotify/refresh_token.
func (a *App) SpotifyRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.URL.Query().Get("refresh_token")
	if refreshToken == "" {
		a.error(w, http.StatusBadRequest, "Refresh token is missing", "")
		return
	}
	token, err := a.Spotify.Refresh(r.Context(), refreshToken)
	if err != nil {
		a.Logger.Error().Err(err).Msg("spotify token refresh failed")
		a.error(w, http.StatusBadRequest, "Failed to refresh Spotify token", "")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"access_token": token.AccessToken})
}

// SpotifyToken handles GET /api/spotify/token, issuing a client-credentials
// access token for server-side search.
func (a *App) SpotifyToken(w http.ResponseWriter, r *http.Request) {
	token, err := a.Spotify.ClientToken(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("spotify client token failed")
		a.error(w, http.StatusInternalServerError, "Failed to generate access token", "")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"access_token": token.AccessToken})
}

// SpotifySearch handles GET /api/spotify/search, proxying track search with
// the caller's bearer token.
func (a *App) SpotifySearch(w http.ResponseWriter, r *http.Request) {
	accessToken := bearerToken(r)
	if accessToken == "" {
		a.error(w, http.StatusUnauthorized, "Bearer token is required", "")
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	tracks, err := a.Spotify.SearchTracks(r.Context(), accessToken, q.Get("query"), q.Get("type"), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("spotify search failed")
		a.error(w, http.StatusInternalServerError, "Failed to search tracks", "")
		return
	}
	a.json(w, http.StatusOK, tracks)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return auth[7:]
	}
	return ""
}
