package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	middleware "github.com/jmoellers/insightdeck/internal/api/middlewares"
	"github.com/jmoellers/insightdeck/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
	log  *logrus.Entry
}

func NewAuthHandler(auth *services.AuthService, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

// RequestMagicLink issues a login token for the given address. Mail
// delivery is not wired up; the link lands in the service log instead.
func (h *AuthHandler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := h.auth.RequestMagicLink(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrMissingEmail) {
			writeError(w, http.StatusBadRequest, "email is required")
			return
		}
		h.log.WithError(err).Error("magic link request failed")
		writeError(w, http.StatusInternalServerError, "Failed to create magic link")
		return
	}

	h.log.WithFields(logrus.Fields{
		"email": req.Email,
		"link":  "/api/auth/callback?token=" + token + "&email=" + req.Email,
	}).Info("magic link issued")

	writeJSON(w, http.StatusOK, map[string]string{"message": "Magic link sent"})
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	session, user, err := h.auth.VerifyMagicLink(r.Context(), q.Get("email"), q.Get("token"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidLink) {
			writeError(w, http.StatusUnauthorized, "invalid or expired magic link")
			return
		}
		h.log.WithError(err).Error("magic link verification failed")
		writeError(w, http.StatusInternalServerError, "Failed to verify magic link")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": session,
		"user":  user,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, grants, err := h.auth.GetProfile(r.Context(), userID)
	if err != nil {
		h.log.WithError(err).Error("profile lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":      user,
		"merchants": grants,
	})
}
