package recognition

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-gallery/internal/store"
)

// CreateProfile stores the image, indexes exactly one face from it, and
// persists the profile. A freshly created profile is immediately matched
// against already ingested group photos; a matching failure is logged but
// does not fail the creation.
func (s *Service) CreateProfile(ctx context.Context, name string, image []byte) (*ProfileView, error) {
	ext, contentType := imageExt(image)
	key := "profiles/" + uuid.NewString() + ext

	uri, err := s.objects.Put(ctx, key, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("storing profile image: %w", err)
	}

	indexed, err := s.vision.IndexFaces(ctx, s.objects.Bucket(), key, 1)
	if err != nil {
		return nil, fmt.Errorf("indexing profile face: %w", err)
	}
	if len(indexed.Faces) == 0 {
		return nil, ErrNoFaceDetected
	}

	profile := store.Profile{
		ProfileID: uuid.NewString(),
		Name:      name,
		FaceID:    indexed.Faces[0].FaceID,
		ImageURI:  uri,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.profiles.Put(ctx, profile); err != nil {
		return nil, fmt.Errorf("persisting profile: %w", err)
	}

	if !s.matchProfileFaces(ctx, profile.ProfileID, profile.FaceID) {
		log.Printf("initial matching for profile %s did not complete cleanly", profile.ProfileID)
	}

	return s.profileView(ctx, profile)
}

// GetProfile returns one profile with its matched-image list recomputed.
func (s *Service) GetProfile(ctx context.Context, profileID string) (*ProfileView, error) {
	profile, err := s.lookupProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.profileView(ctx, *profile)
}

// ListProfiles returns all profiles. Each entry is enriched independently;
// a profile whose enrichment fails is logged and skipped so the rest of the
// list still comes back.
func (s *Service) ListProfiles(ctx context.Context) ([]ProfileView, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	views := make([]ProfileView, 0, len(profiles))
	for _, profile := range profiles {
		view, err := s.profileView(ctx, profile)
		if err != nil {
			log.Printf("skipping profile %s: %v", profile.ProfileID, err)
			continue
		}
		views = append(views, *view)
	}
	return views, nil
}

// RematchProfile re-runs the matching workflow for a profile's reference
// face, picking up group photos ingested since the profile was created.
func (s *Service) RematchProfile(ctx context.Context, profileID string) (*ProfileView, error) {
	profile, err := s.lookupProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !s.matchProfileFaces(ctx, profile.ProfileID, profile.FaceID) {
		log.Printf("re-matching for profile %s did not complete cleanly", profile.ProfileID)
	}
	return s.profileView(ctx, *profile)
}

// DeleteProfile removes a profile: its face leaves the collection, dependent
// detected-face rows lose their assignment, and the stored image and record
// are deleted. Sweeping the dependent rows keeps the weak references from
// going stale.
func (s *Service) DeleteProfile(ctx context.Context, profileID string) error {
	profile, err := s.lookupProfile(ctx, profileID)
	if err != nil {
		return err
	}

	if err := s.vision.DeleteFace(ctx, profile.FaceID); err != nil {
		return fmt.Errorf("removing face from collection: %w", err)
	}

	dependent, err := s.faces.FindByProfileID(ctx, profileID)
	if err != nil {
		return fmt.Errorf("finding dependent faces: %w", err)
	}
	for _, face := range dependent {
		if err := s.faces.ClearMatch(ctx, face.DetectedFaceID, face.ImageID); err != nil {
			return fmt.Errorf("clearing match on face %s: %w", face.DetectedFaceID, err)
		}
	}

	if err := s.objects.Delete(ctx, profile.ImageURI); err != nil {
		log.Printf("could not delete profile image %s: %v", profile.ImageURI, err)
	}

	if err := s.profiles.Delete(ctx, profileID); err != nil {
		return fmt.Errorf("deleting profile record: %w", err)
	}
	return nil
}

func (s *Service) lookupProfile(ctx context.Context, profileID string) (*store.Profile, error) {
	profile, err := s.profiles.Get(ctx, profileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile %s: %w", profileID, err)
	}
	return profile, nil
}

// profileView resolves the stored references on a profile into signed URLs
// and recomputes the matched-image list from the detected-face assignments.
func (s *Service) profileView(ctx context.Context, profile store.Profile) (*ProfileView, error) {
	imageURL, err := s.objects.ResolveURL(ctx, profile.ImageURI)
	if err != nil {
		return nil, fmt.Errorf("resolving profile image: %w", err)
	}

	matched, err := s.faces.FindByProfileID(ctx, profile.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("finding matched faces: %w", err)
	}

	seen := make(map[string]struct{}, len(matched))
	matchedImages := make([]string, 0, len(matched))
	for _, face := range matched {
		if _, ok := seen[face.ImageURI]; ok {
			continue
		}
		seen[face.ImageURI] = struct{}{}
		url, err := s.objects.ResolveURL(ctx, face.ImageURI)
		if err != nil {
			return nil, fmt.Errorf("resolving matched image: %w", err)
		}
		matchedImages = append(matchedImages, url)
	}
	sort.Strings(matchedImages)

	return &ProfileView{
		ProfileID:     profile.ProfileID,
		Name:          profile.Name,
		FaceID:        profile.FaceID,
		ImageURL:      imageURL,
		CreatedAt:     profile.CreatedAt,
		MatchedImages: matchedImages,
	}, nil
}
