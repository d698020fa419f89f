package handlers

import (
	"log"
	"net/http"
)

// FacesHandler lists the faces registered in the collection.
type FacesHandler struct {
	service Service
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(service Service) *FacesHandler {
	return &FacesHandler{service: service}
}

// List returns every registered face with the profile it belongs to.
func (h *FacesHandler) List(w http.ResponseWriter, r *http.Request) {
	faces, err := h.service.ListFaces(r.Context())
	if err != nil {
		log.Printf("listing faces: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list faces")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"faces": faces,
		"count": len(faces),
	})
}
