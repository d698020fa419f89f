package recognition

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-gallery/internal/store"
	"github.com/kozaktomas/face-gallery/internal/vision"
)

func TestCreateProfile_Success(t *testing.T) {
	f := newFixture()
	f.vision.indexResult = &vision.IndexResult{
		Faces: []vision.IndexedFace{{FaceID: "face-alice", Confidence: 99}},
	}

	profile, err := f.service.CreateProfile(context.Background(), "Alice", []byte("image"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.FaceID != "face-alice" {
		t.Errorf("expected face id face-alice, got %q", profile.FaceID)
	}
	if profile.Name != "Alice" {
		t.Errorf("unexpected name %q", profile.Name)
	}
	if !strings.HasPrefix(profile.ImageURL, "https://signed.test/test-bucket/profiles/") {
		t.Errorf("expected signed profile image URL, got %q", profile.ImageURL)
	}
	if profile.MatchedImages == nil {
		t.Error("matched images should never be nil")
	}
	if f.profiles.Count() != 1 {
		t.Errorf("expected 1 persisted profile, got %d", f.profiles.Count())
	}
	if len(f.vision.indexCalls) != 1 || f.vision.indexCalls[0] != 1 {
		t.Errorf("expected one IndexFaces call with MaxFaces=1, got %v", f.vision.indexCalls)
	}
	// Creation triggers the matching workflow at the stricter threshold.
	if len(f.vision.searchThresholds) != 1 || f.vision.searchThresholds[0] != 90 {
		t.Errorf("expected one search at threshold 90, got %v", f.vision.searchThresholds)
	}
}

func TestCreateProfile_NoFaceDetected(t *testing.T) {
	f := newFixture()
	f.vision.indexResult = &vision.IndexResult{} // zero faces

	_, err := f.service.CreateProfile(context.Background(), "Nobody", []byte("image"))
	if !errors.Is(err, ErrNoFaceDetected) {
		t.Fatalf("expected ErrNoFaceDetected, got %v", err)
	}
	if f.profiles.Count() != 0 {
		t.Errorf("no profile should be persisted, got %d", f.profiles.Count())
	}
}

func TestCreateProfile_UpstreamIndexError(t *testing.T) {
	f := newFixture()
	f.vision.indexErr = errors.New("throttled")

	_, err := f.service.CreateProfile(context.Background(), "Alice", []byte("image"))
	if err == nil {
		t.Fatal("expected error")
	}
	if f.profiles.Count() != 0 {
		t.Error("no profile should be persisted on index failure")
	}
}

func TestCreateProfile_MatchingFailureDoesNotFailCreation(t *testing.T) {
	f := newFixture()
	f.vision.indexResult = &vision.IndexResult{
		Faces: []vision.IndexedFace{{FaceID: "face-alice"}},
	}
	f.vision.searchErr["face-alice"] = errors.New("search unavailable")

	profile, err := f.service.CreateProfile(context.Background(), "Alice", []byte("image"))
	if err != nil {
		t.Fatalf("creation must succeed even when matching fails, got %v", err)
	}
	if f.profiles.Count() != 1 {
		t.Errorf("expected persisted profile, got %d", f.profiles.Count())
	}
	if profile.ProfileID == "" {
		t.Error("expected generated profile id")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service.GetProfile(context.Background(), "missing")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestGetProfile_RecomputesMatchedImages(t *testing.T) {
	f := newFixture()
	seedProfile(t, f, "p1", "Alice", "face-alice")
	seedFace(t, f, "face-1", "img-1", "s3://test-bucket/groups/img-1.jpg", "p1", 92)
	seedFace(t, f, "face-2", "img-1", "s3://test-bucket/groups/img-1.jpg", "p1", 91)
	seedFace(t, f, "face-3", "img-2", "s3://test-bucket/groups/img-2.jpg", "", 0)

	profile, err := f.service.GetProfile(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two assigned rows share a source image; the list is deduplicated.
	if len(profile.MatchedImages) != 1 {
		t.Fatalf("expected 1 matched image, got %d: %v", len(profile.MatchedImages), profile.MatchedImages)
	}
	if profile.MatchedImages[0] != "https://signed.test/test-bucket/groups/img-1.jpg" {
		t.Errorf("unexpected matched image %q", profile.MatchedImages[0])
	}
}

func TestListProfiles_PartialResults(t *testing.T) {
	f := newFixture()
	seedProfile(t, f, "p1", "Alice", "face-alice")
	seedProfile(t, f, "p2", "Bob", "face-bob")
	// Enriching p1 fails at presigned-URL generation; p2 must still come back.
	f.objects.failResolve["s3://test-bucket/profiles/p1.jpg"] = true

	profiles, err := f.service.ListProfiles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	if profiles[0].ProfileID != "p2" {
		t.Errorf("expected p2 to survive, got %q", profiles[0].ProfileID)
	}
}

func TestRematchProfile_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service.RematchProfile(context.Background(), "missing")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestDeleteProfile_SweepsDependentRows(t *testing.T) {
	f := newFixture()
	seedProfile(t, f, "p1", "Alice", "face-alice")
	seedFace(t, f, "face-1", "img-1", "s3://test-bucket/groups/img-1.jpg", "p1", 92)
	seedFace(t, f, "face-2", "img-2", "s3://test-bucket/groups/img-2.jpg", "p1", 95)
	seedFace(t, f, "face-3", "img-3", "s3://test-bucket/groups/img-3.jpg", "other", 88)

	if err := f.service.DeleteProfile(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.profiles.Count() != 0 {
		t.Error("profile record should be deleted")
	}
	if len(f.vision.deletedFaces) != 1 || f.vision.deletedFaces[0] != "face-alice" {
		t.Errorf("expected reference face removed from collection, got %v", f.vision.deletedFaces)
	}
	for _, id := range []string{"face-1", "face-2"} {
		rows, _ := f.faces.FindByFaceID(context.Background(), id)
		if len(rows) != 1 {
			t.Fatalf("row for %s should survive the sweep", id)
		}
		if rows[0].MatchedProfileID != "" || rows[0].Confidence != 0 {
			t.Errorf("row %s should lose its assignment, got %+v", id, rows[0])
		}
	}
	// Rows assigned to other profiles are untouched.
	rows, _ := f.faces.FindByFaceID(context.Background(), "face-3")
	if rows[0].MatchedProfileID != "other" {
		t.Errorf("unrelated row was modified: %+v", rows[0])
	}
}

func TestDeleteProfile_NotFound(t *testing.T) {
	f := newFixture()

	err := f.service.DeleteProfile(context.Background(), "missing")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func seedProfile(t *testing.T, f *fixture, id, name, faceID string) {
	t.Helper()
	err := f.profiles.Put(context.Background(), store.Profile{
		ProfileID: id,
		Name:      name,
		FaceID:    faceID,
		ImageURI:  "s3://test-bucket/profiles/" + id + ".jpg",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seeding profile %s: %v", id, err)
	}
}

func seedFace(t *testing.T, f *fixture, faceID, imageID, uri, profileID string, confidence float64) {
	t.Helper()
	err := f.faces.Put(context.Background(), store.DetectedFace{
		DetectedFaceID:   faceID,
		ImageID:          imageID,
		ImageURI:         uri,
		MatchedProfileID: profileID,
		Confidence:       confidence,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seeding face %s: %v", faceID, err)
	}
}
