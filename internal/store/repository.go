package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get operations when no record exists.
var ErrNotFound = errors.New("record not found")

// ProfileRepository persists Profile records.
type ProfileRepository interface {
	Put(ctx context.Context, profile Profile) error
	// Get returns ErrNotFound when the profile does not exist.
	Get(ctx context.Context, profileID string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Delete(ctx context.Context, profileID string) error
}

// DetectedFaceRepository persists DetectedFace records. Lookups by face id
// hit the table's hash key and lookups by profile id hit a secondary index;
// neither is a table scan.
type DetectedFaceRepository interface {
	Put(ctx context.Context, face DetectedFace) error
	FindByFaceID(ctx context.Context, detectedFaceID string) ([]DetectedFace, error)
	FindByProfileID(ctx context.Context, profileID string) ([]DetectedFace, error)
	// SetMatch overwrites the profile assignment on one row.
	SetMatch(ctx context.Context, detectedFaceID, imageID, profileID string, confidence float64) error
	// ClearMatch removes the profile assignment from one row.
	ClearMatch(ctx context.Context, detectedFaceID, imageID string) error
}
