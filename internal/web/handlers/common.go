package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-gallery/internal/recognition"
)

// maxUploadSize bounds multipart uploads (32 MB).
const maxUploadSize = 32 << 20

// Service is the application surface the handlers depend on.
type Service interface {
	CreateProfile(ctx context.Context, name string, image []byte) (*recognition.ProfileView, error)
	GetProfile(ctx context.Context, profileID string) (*recognition.ProfileView, error)
	ListProfiles(ctx context.Context) ([]recognition.ProfileView, error)
	RematchProfile(ctx context.Context, profileID string) (*recognition.ProfileView, error)
	DeleteProfile(ctx context.Context, profileID string) error
	UploadGroupPhoto(ctx context.Context, image []byte) ([]recognition.DetectedFaceResult, error)
	RecognizeFace(ctx context.Context, image []byte) ([]recognition.RecognizedFace, error)
	ListFaces(ctx context.Context) ([]recognition.FaceSummary, error)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// readImageFile extracts the uploaded image bytes from a multipart form.
// The second return value reports whether the bytes were read; on false, an
// error response has already been written.
func readImageFile(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil, false
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		respondError(w, http.StatusBadRequest, field+" is required")
		return nil, false
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return nil, false
	}
	if len(image) == 0 {
		respondError(w, http.StatusBadRequest, "uploaded file is empty")
		return nil, false
	}
	return image, true
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
