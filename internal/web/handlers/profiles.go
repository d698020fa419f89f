package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-gallery/internal/recognition"
)

// ProfilesHandler handles the profile endpoints.
type ProfilesHandler struct {
	service Service
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(service Service) *ProfilesHandler {
	return &ProfilesHandler{service: service}
}

// Create registers a new profile from a name and a single-face image.
func (h *ProfilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	image, ok := readImageFile(w, r, "file")
	if !ok {
		return
	}
	name := r.FormValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	profile, err := h.service.CreateProfile(r.Context(), name, image)
	if errors.Is(err, recognition.ErrNoFaceDetected) {
		respondError(w, http.StatusBadRequest, "no face detected in image")
		return
	}
	if err != nil {
		log.Printf("creating profile %s: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}
	respondJSON(w, http.StatusCreated, profile)
}

// List returns all profiles with their matched images.
func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListProfiles(r.Context())
	if err != nil {
		log.Printf("listing profiles: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

// Get returns one profile.
func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")

	profile, err := h.service.GetProfile(r.Context(), profileID)
	if errors.Is(err, recognition.ErrProfileNotFound) {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		log.Printf("getting profile %s: %v", sanitizeForLog(profileID), err)
		respondError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// Delete removes a profile and unlinks its detected faces.
func (h *ProfilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")

	err := h.service.DeleteProfile(r.Context(), profileID)
	if errors.Is(err, recognition.ErrProfileNotFound) {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		log.Printf("deleting profile %s: %v", sanitizeForLog(profileID), err)
		respondError(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message":    "profile deleted",
		"profile_id": profileID,
	})
}

// Rematch re-runs the matching workflow for a profile.
func (h *ProfilesHandler) Rematch(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")

	profile, err := h.service.RematchProfile(r.Context(), profileID)
	if errors.Is(err, recognition.ErrProfileNotFound) {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		log.Printf("re-matching profile %s: %v", sanitizeForLog(profileID), err)
		respondError(w, http.StatusInternalServerError, "failed to re-match profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
