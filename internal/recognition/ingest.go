package recognition

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-gallery/internal/store"
)

// UploadGroupPhoto stores a group photo, indexes every face the vision
// service finds in it, and opportunistically matches each face against the
// registered profiles at the looser ingestion threshold. A failure handling
// one face skips that face; the call still returns the rest.
func (s *Service) UploadGroupPhoto(ctx context.Context, image []byte) ([]DetectedFaceResult, error) {
	ext, contentType := imageExt(image)
	imageID := uuid.NewString()
	key := "groups/" + imageID + ext

	uri, err := s.objects.Put(ctx, key, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("storing group photo: %w", err)
	}

	detections, err := s.vision.DetectFaces(ctx, s.objects.Bucket(), key)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}
	if len(detections) == 0 {
		return []DetectedFaceResult{}, nil
	}

	// A single indexing call covering every detected face: each returned
	// record carries its own face id and bounding box, so ids never get
	// attributed to the wrong face.
	indexed, err := s.vision.IndexFaces(ctx, s.objects.Bucket(), key, int32(len(detections)))
	if err != nil {
		return nil, fmt.Errorf("indexing faces: %w", err)
	}
	if indexed.Unindexed > 0 {
		log.Printf("group photo %s: %d of %d faces could not be indexed", imageID, indexed.Unindexed, len(detections))
	}

	imageURL, err := s.objects.ResolveURL(ctx, uri)
	if err != nil {
		log.Printf("group photo %s: could not presign %s: %v", imageID, uri, err)
		imageURL = uri
	}

	byFaceID := s.profilesByFaceID(ctx)

	results := make([]DetectedFaceResult, 0, len(indexed.Faces))
	for _, face := range indexed.Faces {
		matchedProfileID := ""
		confidence := 0.0

		matches, err := s.vision.SearchFaces(ctx, face.FaceID, s.thresholds.IngestMatch)
		if err != nil {
			log.Printf("group photo %s: searching matches for face %s failed, skipping face: %v", imageID, face.FaceID, err)
			continue
		}
		for _, match := range matches {
			profile, ok := byFaceID[match.FaceID]
			if !ok {
				continue
			}
			matchedProfileID = profile.ProfileID
			confidence = match.Similarity
			break // matches come back ordered by similarity
		}

		row := store.DetectedFace{
			DetectedFaceID:   face.FaceID,
			ImageID:          imageID,
			ImageURI:         uri,
			BoundingBox:      face.BoundingBox,
			MatchedProfileID: matchedProfileID,
			Confidence:       confidence,
			CreatedAt:        time.Now().UTC(),
		}
		if err := s.faces.Put(ctx, row); err != nil {
			log.Printf("group photo %s: persisting face %s failed, skipping face: %v", imageID, face.FaceID, err)
			continue
		}

		results = append(results, DetectedFaceResult{
			DetectedFaceID:   row.DetectedFaceID,
			ImageID:          row.ImageID,
			ImageURL:         imageURL,
			BoundingBox:      row.BoundingBox,
			MatchedProfileID: row.MatchedProfileID,
			Confidence:       row.Confidence,
			CreatedAt:        row.CreatedAt,
		})
	}
	return results, nil
}

// RecognizeFace searches the collection for the largest face in the given
// image and resolves the matches to profile names.
func (s *Service) RecognizeFace(ctx context.Context, image []byte) ([]RecognizedFace, error) {
	matches, err := s.vision.SearchFacesByImage(ctx, image, s.thresholds.IngestMatch)
	if err != nil {
		return nil, fmt.Errorf("searching faces by image: %w", err)
	}

	byFaceID := s.profilesByFaceID(ctx)
	results := make([]RecognizedFace, 0, len(matches))
	for _, match := range matches {
		name := "Unknown"
		if profile, ok := byFaceID[match.FaceID]; ok {
			name = profile.Name
		}
		results = append(results, RecognizedFace{
			FaceID:     match.FaceID,
			Name:       name,
			Confidence: match.Similarity,
		})
	}
	return results, nil
}

// ListFaces returns every indexed reference face with its profile name.
func (s *Service) ListFaces(ctx context.Context) ([]FaceSummary, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	faces := make([]FaceSummary, 0, len(profiles))
	for _, profile := range profiles {
		faces = append(faces, FaceSummary{FaceID: profile.FaceID, Name: profile.Name})
	}
	return faces, nil
}

// profilesByFaceID loads the profiles once and keys them by reference face
// id. Lookup errors degrade to an empty map: opportunistic matching is best
// effort.
func (s *Service) profilesByFaceID(ctx context.Context) map[string]store.Profile {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		log.Printf("loading profiles for matching failed: %v", err)
		return nil
	}
	byFaceID := make(map[string]store.Profile, len(profiles))
	for _, profile := range profiles {
		byFaceID[profile.FaceID] = profile
	}
	return byFaceID
}
