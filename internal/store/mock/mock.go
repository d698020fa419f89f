// Package mock provides in-memory implementations of the store repositories
// for testing.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/kozaktomas/face-gallery/internal/store"
)

// ProfileRepository is an in-memory store.ProfileRepository.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]store.Profile

	// Error injection
	PutError    error
	GetError    error
	ListError   error
	DeleteError error
}

// NewProfileRepository creates an empty in-memory profile repository.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]store.Profile)}
}

func (m *ProfileRepository) Put(ctx context.Context, profile store.Profile) error {
	if m.PutError != nil {
		return m.PutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ProfileID] = profile
	return nil
}

func (m *ProfileRepository) Get(ctx context.Context, profileID string) (*store.Profile, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[profileID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &profile, nil
}

func (m *ProfileRepository) List(ctx context.Context) ([]store.Profile, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	profiles := make([]store.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
	return profiles, nil
}

func (m *ProfileRepository) Delete(ctx context.Context, profileID string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, profileID)
	return nil
}

// Count returns the number of stored profiles.
func (m *ProfileRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}

type faceKey struct {
	detectedFaceID string
	imageID        string
}

// DetectedFaceRepository is an in-memory store.DetectedFaceRepository.
type DetectedFaceRepository struct {
	mu    sync.RWMutex
	faces map[faceKey]store.DetectedFace

	// Error injection
	PutError           error
	FindByFaceError    error
	FindByProfileError error
	SetMatchError      error
	ClearMatchError    error
}

// NewDetectedFaceRepository creates an empty in-memory detected-face
// repository.
func NewDetectedFaceRepository() *DetectedFaceRepository {
	return &DetectedFaceRepository{faces: make(map[faceKey]store.DetectedFace)}
}

func (m *DetectedFaceRepository) Put(ctx context.Context, face store.DetectedFace) error {
	if m.PutError != nil {
		return m.PutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces[faceKey{face.DetectedFaceID, face.ImageID}] = face
	return nil
}

func (m *DetectedFaceRepository) FindByFaceID(ctx context.Context, detectedFaceID string) ([]store.DetectedFace, error) {
	if m.FindByFaceError != nil {
		return nil, m.FindByFaceError
	}
	return m.filter(func(f store.DetectedFace) bool {
		return f.DetectedFaceID == detectedFaceID
	}), nil
}

func (m *DetectedFaceRepository) FindByProfileID(ctx context.Context, profileID string) ([]store.DetectedFace, error) {
	if m.FindByProfileError != nil {
		return nil, m.FindByProfileError
	}
	return m.filter(func(f store.DetectedFace) bool {
		return f.MatchedProfileID == profileID && profileID != ""
	}), nil
}

func (m *DetectedFaceRepository) SetMatch(ctx context.Context, detectedFaceID, imageID, profileID string, confidence float64) error {
	if m.SetMatchError != nil {
		return m.SetMatchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := faceKey{detectedFaceID, imageID}
	face, ok := m.faces[key]
	if !ok {
		return nil
	}
	face.MatchedProfileID = profileID
	face.Confidence = confidence
	m.faces[key] = face
	return nil
}

func (m *DetectedFaceRepository) ClearMatch(ctx context.Context, detectedFaceID, imageID string) error {
	if m.ClearMatchError != nil {
		return m.ClearMatchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := faceKey{detectedFaceID, imageID}
	face, ok := m.faces[key]
	if !ok {
		return nil
	}
	face.MatchedProfileID = ""
	face.Confidence = 0
	m.faces[key] = face
	return nil
}

// Get returns one stored row, or nil if absent.
func (m *DetectedFaceRepository) Get(detectedFaceID, imageID string) *store.DetectedFace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	face, ok := m.faces[faceKey{detectedFaceID, imageID}]
	if !ok {
		return nil
	}
	return &face
}

// All returns every stored row, ordered by face id then image id.
func (m *DetectedFaceRepository) All() []store.DetectedFace {
	faces := m.filter(func(store.DetectedFace) bool { return true })
	return faces
}

func (m *DetectedFaceRepository) filter(keep func(store.DetectedFace) bool) []store.DetectedFace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var faces []store.DetectedFace
	for _, f := range m.faces {
		if keep(f) {
			faces = append(faces, f)
		}
	}
	sort.Slice(faces, func(i, j int) bool {
		if faces[i].DetectedFaceID != faces[j].DetectedFaceID {
			return faces[i].DetectedFaceID < faces[j].DetectedFaceID
		}
		return faces[i].ImageID < faces[j].ImageID
	})
	return faces
}
