package recognition

import (
	"context"
	"errors"
	"strings"

	"github.com/kozaktomas/face-gallery/internal/config"
	"github.com/kozaktomas/face-gallery/internal/store/mock"
	"github.com/kozaktomas/face-gallery/internal/vision"
)

var errSigned = errors.New("presign failed")

// fakeVision is an in-memory stand-in for the Rekognition wrapper. Searches
// filter the configured similarity table by the requested threshold, so the
// two threshold policies behave like the real collection.
type fakeVision struct {
	detections []vision.Detection
	detectErr  error

	indexResult *vision.IndexResult
	indexErr    error
	indexCalls  []int32

	similar   map[string][]vision.Match // unfiltered, by queried face id
	searchErr map[string]error          // per queried face id

	searchByImageMatches []vision.Match
	searchByImageErr     error

	deleteErr    error
	deletedFaces []string

	searchThresholds []float32
}

func newFakeVision() *fakeVision {
	return &fakeVision{
		similar:   make(map[string][]vision.Match),
		searchErr: make(map[string]error),
	}
}

func (f *fakeVision) DetectFaces(ctx context.Context, bucket, key string) ([]vision.Detection, error) {
	if f.detectErr != nil {
		return nil, f.detectErr
	}
	return f.detections, nil
}

func (f *fakeVision) IndexFaces(ctx context.Context, bucket, key string, maxFaces int32) (*vision.IndexResult, error) {
	f.indexCalls = append(f.indexCalls, maxFaces)
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	if f.indexResult != nil {
		return f.indexResult, nil
	}
	return &vision.IndexResult{}, nil
}

func (f *fakeVision) SearchFaces(ctx context.Context, faceID string, threshold float32) ([]vision.Match, error) {
	f.searchThresholds = append(f.searchThresholds, threshold)
	if err := f.searchErr[faceID]; err != nil {
		return nil, err
	}
	var matches []vision.Match
	for _, m := range f.similar[faceID] {
		if m.Similarity >= float64(threshold) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (f *fakeVision) SearchFacesByImage(ctx context.Context, image []byte, threshold float32) ([]vision.Match, error) {
	if f.searchByImageErr != nil {
		return nil, f.searchByImageErr
	}
	return f.searchByImageMatches, nil
}

func (f *fakeVision) DeleteFace(ctx context.Context, faceID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedFaces = append(f.deletedFaces, faceID)
	return nil
}

// fakeObjects is an in-memory object store. Stored URIs resolve to
// deterministic signed URLs; URIs listed in failResolve error out.
type fakeObjects struct {
	bucket      string
	putErr      error
	puts        map[string][]byte
	deleted     []string
	failResolve map[string]bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		bucket:      "test-bucket",
		puts:        make(map[string][]byte),
		failResolve: make(map[string]bool),
	}
}

func (f *fakeObjects) Bucket() string { return f.bucket }

func (f *fakeObjects) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts[key] = body
	return "s3://" + f.bucket + "/" + key, nil
}

func (f *fakeObjects) Delete(ctx context.Context, uri string) error {
	f.deleted = append(f.deleted, uri)
	return nil
}

func (f *fakeObjects) ResolveURL(ctx context.Context, uri string) (string, error) {
	if f.failResolve[uri] {
		return "", errSigned
	}
	if rest, ok := strings.CutPrefix(uri, "s3://"); ok {
		return "https://signed.test/" + rest, nil
	}
	return uri, nil
}

type fixture struct {
	service  *Service
	vision   *fakeVision
	objects  *fakeObjects
	profiles *mock.ProfileRepository
	faces    *mock.DetectedFaceRepository
}

func newFixture() *fixture {
	vis := newFakeVision()
	objects := newFakeObjects()
	profiles := mock.NewProfileRepository()
	faces := mock.NewDetectedFaceRepository()
	service := New(objects, vis, profiles, faces, config.MatchingConfig{
		ProfileMatch: 90,
		IngestMatch:  80,
	})
	return &fixture{
		service:  service,
		vision:   vis,
		objects:  objects,
		profiles: profiles,
		faces:    faces,
	}
}
