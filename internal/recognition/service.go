package recognition

import (
	"errors"
	"net/http"

	"github.com/kozaktomas/face-gallery/internal/config"
	"github.com/kozaktomas/face-gallery/internal/store"
)

// ErrProfileNotFound is returned when a profile id does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// ErrNoFaceDetected is returned when an image that must contain exactly one
// face contains none.
var ErrNoFaceDetected = errors.New("no face detected in image")

// Service wires the external clients and repositories together.
type Service struct {
	objects    ObjectStore
	vision     Vision
	profiles   store.ProfileRepository
	faces      store.DetectedFaceRepository
	thresholds config.MatchingConfig
}

// New creates the recognition service. All collaborators are injected so
// tests can substitute fakes.
func New(
	objects ObjectStore,
	vis Vision,
	profiles store.ProfileRepository,
	faces store.DetectedFaceRepository,
	thresholds config.MatchingConfig,
) *Service {
	return &Service{
		objects:    objects,
		vision:     vis,
		profiles:   profiles,
		faces:      faces,
		thresholds: thresholds,
	}
}

// imageExt guesses a key extension from sniffed image bytes.
func imageExt(image []byte) (ext, contentType string) {
	contentType = http.DetectContentType(image)
	switch contentType {
	case "image/jpeg":
		return ".jpg", contentType
	case "image/png":
		return ".png", contentType
	case "image/gif":
		return ".gif", contentType
	case "image/webp":
		return ".webp", contentType
	default:
		return ".bin", contentType
	}
}
