package handler

import (
	"net/http"

	"github.com/Dan9191/car-service/internal/service"
)

// Signup handles user registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		h.WriteError(w, r, err)
		return
	}

	session, err := h.auth.Signup(r.Context(), creds)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		h.WriteError(w, r, err)
		return
	}

	session, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Profile returns the authenticated user
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	user, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile changes the authenticated user's email or password
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	var update service.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		h.WriteError(w, r, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
