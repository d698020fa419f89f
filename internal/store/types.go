// Package store defines the persisted records and the repository interfaces
// over them. Implementations live in subpackages (dynamo for DynamoDB, mock
// for tests).
package store

import (
	"time"

	"github.com/kozaktomas/face-gallery/internal/vision"
)

// Profile is a named reference face. Immutable after creation; the list of
// matched group photos is recomputed on read, never stored here.
type Profile struct {
	ProfileID string    `dynamodbav:"profile_id" json:"profile_id"`
	Name      string    `dynamodbav:"name" json:"name"`
	FaceID    string    `dynamodbav:"face_id" json:"face_id"`
	ImageURI  string    `dynamodbav:"profile_image_uri" json:"profile_image_uri"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
}

// DetectedFace is one face found in an uploaded group photo. The composite
// key is (DetectedFaceID, ImageID). MatchedProfileID is a weak reference to
// a Profile; only it and Confidence ever change after the row is written.
type DetectedFace struct {
	DetectedFaceID   string             `dynamodbav:"detected_face_id" json:"detected_face_id"`
	ImageID          string             `dynamodbav:"image_id" json:"image_id"`
	ImageURI         string             `dynamodbav:"source_image_uri" json:"source_image_uri"`
	BoundingBox      vision.BoundingBox `dynamodbav:"bounding_box" json:"bounding_box"`
	MatchedProfileID string             `dynamodbav:"matched_profile_id,omitempty" json:"matched_profile_id,omitempty"`
	Confidence       float64            `dynamodbav:"confidence,omitempty" json:"confidence,omitempty"`
	CreatedAt        time.Time          `dynamodbav:"created_at" json:"timestamp"`
}
