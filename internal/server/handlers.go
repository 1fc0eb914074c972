package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"
	"rivals-scout/internal/session"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// log returns the request-scoped logger, falling back to the router's own.
func (r *Router) log(req *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(req.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &r.logger
}

func decodeBody(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, constants.MaxRequestBytes)
	return json.NewDecoder(req.Body).Decode(v)
}

type searchRequest struct {
	Username string `json:"username"`
}

type searchResponse struct {
	PlayerID *domain.PlayerID `json:"playerId"`
}

func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) {
	log := r.log(req)

	var body searchRequest
	if err := decodeBody(w, req, &body); err != nil {
		log.Warn().Err(err).Msg("invalid search body")
		writeError(w, http.StatusInternalServerError, "Failed to search player")
		return
	}
	if body.Username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	resp := searchResponse{}
	if id, err := r.players.Resolve(req.Context(), body.Username); err == nil {
		resp.PlayerID = &id
	}
	writeJSON(w, http.StatusOK, resp)
}

type findPlayerRequest struct {
	Name string `json:"name"`
}

func (r *Router) handleFindPlayer(w http.ResponseWriter, req *http.Request) {
	log := r.log(req)

	var body findPlayerRequest
	if err := decodeBody(w, req, &body); err != nil {
		log.Warn().Err(err).Msg("invalid find-player body")
		writeError(w, http.StatusInternalServerError, "Failed to search player")
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	candidates, err := r.players.Search(req.Context(), body.Name)
	if err != nil {
		log.Error().Err(err).Str("name", body.Name).Msg("player search failed")
		writeError(w, http.StatusInternalServerError, "Failed to search player")
		return
	}
	if candidates == nil {
		candidates = []domain.SearchCandidate{}
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (r *Router) handleGetPlayer(w http.ResponseWriter, req *http.Request) {
	id := domain.PlayerID(req.PathValue("id"))

	ps, err := r.stats.Fetch(req.Context(), id)
	if err != nil {
		r.writeStatsError(w, req, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(ps.Raw)
}

func (r *Router) handleGetCard(w http.ResponseWriter, req *http.Request) {
	id := domain.PlayerID(req.PathValue("id"))

	card, err := r.scout.Card(req.Context(), id, req.URL.Query().Get("session"))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		r.writeStatsError(w, req, id, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (r *Router) writeStatsError(w http.ResponseWriter, req *http.Request, id domain.PlayerID, err error) {
	r.log(req).Error().Err(err).Str("player_id", string(id)).Msg("failed to fetch player data")
	if errors.Is(err, domain.ErrSchema) {
		writeError(w, http.StatusBadGateway, "Malformed player data")
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to fetch player data")
}

type processImageRequest struct {
	Image  string `json:"image"`
	APIKey string `json:"apiKey"`
}

type processImageResponse struct {
	Players   domain.UsernameMapping `json:"players"`
	SessionID string                 `json:"sessionId"`
}

func (r *Router) handleProcessImage(w http.ResponseWriter, req *http.Request) {
	log := r.log(req)

	var body processImageRequest
	if err := decodeBody(w, req, &body); err != nil {
		log.Warn().Err(err).Msg("invalid process-image body")
		writeError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}
	if body.Image == "" || body.APIKey == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	sess, err := r.scout.ProcessImage(req.Context(), body.APIKey, body.Image)
	if errors.Is(err, domain.ErrMissingCredential) {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to process image")
		writeError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}

	writeJSON(w, http.StatusOK, processImageResponse{Players: sess.Mapping, SessionID: sess.ID})
}

func (r *Router) handleListSessions(w http.ResponseWriter, req *http.Request) {
	limit := constants.RecentSessionsLimit
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, constants.MaxSessionsLimit)
	}

	sessions, err := r.scout.RecentSessions(req.Context(), limit)
	if err != nil {
		r.log(req).Error().Err(err).Msg("failed to list sessions")
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (r *Router) handleGetSession(w http.ResponseWriter, req *http.Request) {
	sess, err := r.scout.Session(req.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type correctRequest struct {
	Username    string `json:"username"`
	NewUsername string `json:"newUsername"`
}

func (r *Router) handleCorrectPlayer(w http.ResponseWriter, req *http.Request) {
	log := r.log(req)

	var body correctRequest
	if err := decodeBody(w, req, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.NewUsername) == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	sess, err := r.scout.Correct(req.Context(), req.PathValue("id"), body.Username, body.NewUsername)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to correct username")
		writeError(w, http.StatusInternalServerError, "Failed to search player")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (r *Router) handleGetHeroes(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.heroes.Heroes())
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
