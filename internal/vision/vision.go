// Package vision wraps AWS Rekognition: face detection, indexing into a
// collection, and similarity search. All embedding and matching computation
// happens on the Rekognition side; this package only shapes requests and
// responses.
package vision

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// API is the subset of the Rekognition client the service depends on.
// Narrow by design so tests can substitute fakes.
type API interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
	IndexFaces(ctx context.Context, params *rekognition.IndexFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.IndexFacesOutput, error)
	SearchFaces(ctx context.Context, params *rekognition.SearchFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.SearchFacesOutput, error)
	SearchFacesByImage(ctx context.Context, params *rekognition.SearchFacesByImageInput, optFns ...func(*rekognition.Options)) (*rekognition.SearchFacesByImageOutput, error)
	DeleteFaces(ctx context.Context, params *rekognition.DeleteFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DeleteFacesOutput, error)
	CreateCollection(ctx context.Context, params *rekognition.CreateCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.CreateCollectionOutput, error)
}

// BoundingBox is a face location in normalized image coordinates (0-1).
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Detection is one face found by the detection pass.
type Detection struct {
	BoundingBox BoundingBox
	Confidence  float64
}

// IndexedFace is one face registered into the collection.
type IndexedFace struct {
	FaceID      string
	BoundingBox BoundingBox
	Confidence  float64
}

// IndexResult is the outcome of an indexing call. Unindexed counts faces
// Rekognition saw but refused to register (too small, too blurry, over the
// MaxFaces limit).
type IndexResult struct {
	Faces     []IndexedFace
	Unindexed int
}

// Match is one similar face from a collection search.
type Match struct {
	FaceID     string
	Similarity float64
}

// Service is the vision service handle bound to one collection.
type Service struct {
	api        API
	collection string
}

// New creates a vision service on top of a configured Rekognition client.
func New(api API, collectionID string) *Service {
	return &Service{api: api, collection: collectionID}
}

func boxFromSDK(b *types.BoundingBox) BoundingBox {
	if b == nil {
		return BoundingBox{}
	}
	return BoundingBox{
		Left:   float64(aws.ToFloat32(b.Left)),
		Top:    float64(aws.ToFloat32(b.Top)),
		Width:  float64(aws.ToFloat32(b.Width)),
		Height: float64(aws.ToFloat32(b.Height)),
	}
}

func (s *Service) s3Image(bucket, key string) *types.Image {
	return &types.Image{
		S3Object: &types.S3Object{
			Bucket: aws.String(bucket),
			Name:   aws.String(key),
		},
	}
}

// DetectFaces enumerates the faces present in a stored image.
func (s *Service) DetectFaces(ctx context.Context, bucket, key string) ([]Detection, error) {
	out, err := s.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image: s.s3Image(bucket, key),
	})
	if err != nil {
		return nil, fmt.Errorf("detecting faces in %s: %w", key, err)
	}
	detections := make([]Detection, 0, len(out.FaceDetails))
	for _, fd := range out.FaceDetails {
		detections = append(detections, Detection{
			BoundingBox: boxFromSDK(fd.BoundingBox),
			Confidence:  float64(aws.ToFloat32(fd.Confidence)),
		})
	}
	return detections, nil
}

// IndexFaces registers up to maxFaces faces from a stored image into the
// collection. Each returned face carries its own id and bounding box, so the
// caller never has to guess which detection an id belongs to.
func (s *Service) IndexFaces(ctx context.Context, bucket, key string, maxFaces int32) (*IndexResult, error) {
	out, err := s.api.IndexFaces(ctx, &rekognition.IndexFacesInput{
		CollectionId: aws.String(s.collection),
		Image:        s.s3Image(bucket, key),
		MaxFaces:     aws.Int32(maxFaces),
	})
	if err != nil {
		return nil, fmt.Errorf("indexing faces from %s: %w", key, err)
	}
	result := &IndexResult{Unindexed: len(out.UnindexedFaces)}
	for _, record := range out.FaceRecords {
		if record.Face == nil || record.Face.FaceId == nil {
			continue
		}
		result.Faces = append(result.Faces, IndexedFace{
			FaceID:      aws.ToString(record.Face.FaceId),
			BoundingBox: boxFromSDK(record.Face.BoundingBox),
			Confidence:  float64(aws.ToFloat32(record.Face.Confidence)),
		})
	}
	return result, nil
}

// SearchFaces finds collection faces similar to an already indexed face,
// at or above the given similarity threshold (0-100).
func (s *Service) SearchFaces(ctx context.Context, faceID string, threshold float32) ([]Match, error) {
	out, err := s.api.SearchFaces(ctx, &rekognition.SearchFacesInput{
		CollectionId:       aws.String(s.collection),
		FaceId:             aws.String(faceID),
		FaceMatchThreshold: aws.Float32(threshold),
	})
	if err != nil {
		return nil, fmt.Errorf("searching faces similar to %s: %w", faceID, err)
	}
	return matchesFromSDK(out.FaceMatches), nil
}

// SearchFacesByImage finds collection faces similar to the largest face in
// the given image bytes.
func (s *Service) SearchFacesByImage(ctx context.Context, image []byte, threshold float32) ([]Match, error) {
	out, err := s.api.SearchFacesByImage(ctx, &rekognition.SearchFacesByImageInput{
		CollectionId:       aws.String(s.collection),
		Image:              &types.Image{Bytes: image},
		FaceMatchThreshold: aws.Float32(threshold),
		MaxFaces:           aws.Int32(5),
	})
	if err != nil {
		return nil, fmt.Errorf("searching faces by image: %w", err)
	}
	return matchesFromSDK(out.FaceMatches), nil
}

// DeleteFace removes a face from the collection.
func (s *Service) DeleteFace(ctx context.Context, faceID string) error {
	_, err := s.api.DeleteFaces(ctx, &rekognition.DeleteFacesInput{
		CollectionId: aws.String(s.collection),
		FaceIds:      []string{faceID},
	})
	if err != nil {
		return fmt.Errorf("deleting face %s: %w", faceID, err)
	}
	return nil
}

// EnsureCollection creates the collection, tolerating one that already
// exists.
func (s *Service) EnsureCollection(ctx context.Context) error {
	_, err := s.api.CreateCollection(ctx, &rekognition.CreateCollectionInput{
		CollectionId: aws.String(s.collection),
	})
	var exists *types.ResourceAlreadyExistsException
	if errors.As(err, &exists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.collection, err)
	}
	return nil
}

func matchesFromSDK(faceMatches []types.FaceMatch) []Match {
	matches := make([]Match, 0, len(faceMatches))
	for _, fm := range faceMatches {
		if fm.Face == nil || fm.Face.FaceId == nil {
			continue
		}
		matches = append(matches, Match{
			FaceID:     aws.ToString(fm.Face.FaceId),
			Similarity: float64(aws.ToFloat32(fm.Similarity)),
		})
	}
	return matches
}
