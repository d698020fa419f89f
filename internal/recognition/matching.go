package recognition

import (
	"context"
	"log"
)

type rowKey struct {
	detectedFaceID string
	imageID        string
}

// matchProfileFaces runs the matching workflow for one profile: search the
// collection for faces similar to the profile's reference face at the
// stricter profile threshold, assign the profile to every detected-face row
// behind a match, and clear rows that no longer clear the bar. Re-running
// overwrites previous assignments with the latest search results; it never
// appends, and it may unset a match.
//
// The workflow is best effort: any vision or store failure is logged and
// reported as false, never propagated to abort the caller.
func (s *Service) matchProfileFaces(ctx context.Context, profileID, faceID string) bool {
	matches, err := s.vision.SearchFaces(ctx, faceID, s.thresholds.ProfileMatch)
	if err != nil {
		log.Printf("matching profile %s: search failed: %v", profileID, err)
		return false
	}

	previous, err := s.faces.FindByProfileID(ctx, profileID)
	if err != nil {
		log.Printf("matching profile %s: loading current assignments failed: %v", profileID, err)
		return false
	}

	clean := true
	assigned := make(map[rowKey]struct{})
	for _, match := range matches {
		rows, err := s.faces.FindByFaceID(ctx, match.FaceID)
		if err != nil {
			log.Printf("matching profile %s: lookup of face %s failed: %v", profileID, match.FaceID, err)
			clean = false
			continue
		}
		for _, row := range rows {
			if err := s.faces.SetMatch(ctx, row.DetectedFaceID, row.ImageID, profileID, match.Similarity); err != nil {
				log.Printf("matching profile %s: updating face %s failed: %v", profileID, row.DetectedFaceID, err)
				clean = false
				continue
			}
			assigned[rowKey{row.DetectedFaceID, row.ImageID}] = struct{}{}
		}
	}

	// Assignments from a previous run that did not survive this search are
	// cleared, keeping the workflow idempotent.
	for _, row := range previous {
		if _, ok := assigned[rowKey{row.DetectedFaceID, row.ImageID}]; ok {
			continue
		}
		if err := s.faces.ClearMatch(ctx, row.DetectedFaceID, row.ImageID); err != nil {
			log.Printf("matching profile %s: clearing face %s failed: %v", profileID, row.DetectedFaceID, err)
			clean = false
		}
	}
	return clean
}
