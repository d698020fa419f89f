package handlers

import (
	"log"
	"net/http"
)

// UploadHandler handles group photo ingestion and search-by-image.
type UploadHandler struct {
	service Service
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(service Service) *UploadHandler {
	return &UploadHandler{service: service}
}

// UploadImage ingests a group photo: every detected face is indexed and
// matched against the registered profiles. Faces that fail along the way
// are skipped; the response carries the ones that succeeded.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	image, ok := readImageFile(w, r, "file")
	if !ok {
		return
	}

	results, err := h.service.UploadGroupPhoto(r.Context(), image)
	if err != nil {
		log.Printf("ingesting group photo: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to process image")
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// Recognize searches the collection for the largest face in the uploaded
// image and returns the matching profiles.
func (h *UploadHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	image, ok := readImageFile(w, r, "file")
	if !ok {
		return
	}

	results, err := h.service.RecognizeFace(r.Context(), image)
	if err != nil {
		log.Printf("recognizing face: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to recognize face")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}
