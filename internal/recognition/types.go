// Package recognition implements the application workflows: profile
// registration, face-to-profile matching, and group photo ingestion. All
// face detection and similarity search is delegated to the vision service;
// this package orchestrates the calls and keeps the lookup records
// consistent.
package recognition

import (
	"context"
	"time"

	"github.com/kozaktomas/face-gallery/internal/vision"
)

// Vision is the face engine the workflows depend on.
type Vision interface {
	DetectFaces(ctx context.Context, bucket, key string) ([]vision.Detection, error)
	IndexFaces(ctx context.Context, bucket, key string, maxFaces int32) (*vision.IndexResult, error)
	SearchFaces(ctx context.Context, faceID string, threshold float32) ([]vision.Match, error)
	SearchFacesByImage(ctx context.Context, image []byte, threshold float32) ([]vision.Match, error)
	DeleteFace(ctx context.Context, faceID string) error
}

// ObjectStore is the blob store the workflows depend on.
type ObjectStore interface {
	Bucket() string
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, uri string) error
	ResolveURL(ctx context.Context, uri string) (string, error)
}

// ProfileView is a profile as returned to clients: stored references
// resolved to signed URLs and the matched-image list recomputed at read
// time.
type ProfileView struct {
	ProfileID     string    `json:"profile_id"`
	Name          string    `json:"name"`
	FaceID        string    `json:"face_id"`
	ImageURL      string    `json:"profile_image_s3"`
	CreatedAt     time.Time `json:"created_at"`
	MatchedImages []string  `json:"matched_images"`
}

// DetectedFaceResult is one ingested face as returned to clients.
type DetectedFaceResult struct {
	DetectedFaceID   string             `json:"detected_face_id"`
	ImageID          string             `json:"image_id"`
	ImageURL         string             `json:"s3_path"`
	BoundingBox      vision.BoundingBox `json:"bounding_box"`
	MatchedProfileID string             `json:"matched_profile_id,omitempty"`
	Confidence       float64            `json:"confidence,omitempty"`
	CreatedAt        time.Time          `json:"timestamp"`
}

// RecognizedFace is one match from a search-by-image request.
type RecognizedFace struct {
	FaceID     string  `json:"face_id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// FaceSummary is one indexed reference face.
type FaceSummary struct {
	FaceID string `json:"face_id"`
	Name   string `json:"name"`
}
