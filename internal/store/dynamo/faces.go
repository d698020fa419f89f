package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/kozaktomas/face-gallery/internal/store"
)

// MatchedProfileIndex is the secondary index used to find the detected
// faces currently assigned to a profile.
const MatchedProfileIndex = "matched_profile_id-index"

// DetectedFaceRepository is the DynamoDB-backed store.DetectedFaceRepository.
type DetectedFaceRepository struct {
	client *dynamodb.Client
	table  string
}

// NewDetectedFaceRepository creates a detected-face repository for the given
// table.
func NewDetectedFaceRepository(client *dynamodb.Client, table string) *DetectedFaceRepository {
	return &DetectedFaceRepository{client: client, table: table}
}

func (r *DetectedFaceRepository) Put(ctx context.Context, face store.DetectedFace) error {
	item, err := attributevalue.MarshalMap(face)
	if err != nil {
		return fmt.Errorf("marshaling detected face %s: %w", face.DetectedFaceID, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting detected face %s: %w", face.DetectedFaceID, err)
	}
	return nil
}

// FindByFaceID returns every row for one collection face id. The face id is
// the table's hash key, so this is a query, not a scan.
func (r *DetectedFaceRepository) FindByFaceID(ctx context.Context, detectedFaceID string) ([]store.DetectedFace, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("detected_face_id = :id"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":id": &ddbtypes.AttributeValueMemberS{Value: detectedFaceID},
		},
	})
}

// FindByProfileID returns every row currently assigned to a profile, via the
// matched_profile_id index. Unassigned rows are absent from the index.
func (r *DetectedFaceRepository) FindByProfileID(ctx context.Context, profileID string) ([]store.DetectedFace, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(MatchedProfileIndex),
		KeyConditionExpression: aws.String("matched_profile_id = :id"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":id": &ddbtypes.AttributeValueMemberS{Value: profileID},
		},
	})
}

func (r *DetectedFaceRepository) query(ctx context.Context, input *dynamodb.QueryInput) ([]store.DetectedFace, error) {
	var faces []store.DetectedFace
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying detected faces: %w", err)
		}
		var batch []store.DetectedFace
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshaling detected faces: %w", err)
		}
		faces = append(faces, batch...)
	}
	return faces, nil
}

func (r *DetectedFaceRepository) key(detectedFaceID, imageID string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"detected_face_id": &ddbtypes.AttributeValueMemberS{Value: detectedFaceID},
		"image_id":         &ddbtypes.AttributeValueMemberS{Value: imageID},
	}
}

// SetMatch overwrites the profile assignment on one row. Single-row update;
// concurrent writers rely on DynamoDB's per-item atomicity (last write
// wins).
func (r *DetectedFaceRepository) SetMatch(ctx context.Context, detectedFaceID, imageID, profileID string, confidence float64) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.table),
		Key:              r.key(detectedFaceID, imageID),
		UpdateExpression: aws.String("SET matched_profile_id = :p, confidence = :c"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":p": &ddbtypes.AttributeValueMemberS{Value: profileID},
			":c": &ddbtypes.AttributeValueMemberN{Value: fmt.Sprintf("%g", confidence)},
		},
	})
	if err != nil {
		return fmt.Errorf("setting match on face %s: %w", detectedFaceID, err)
	}
	return nil
}

// ClearMatch removes the profile assignment from one row.
func (r *DetectedFaceRepository) ClearMatch(ctx context.Context, detectedFaceID, imageID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.table),
		Key:              r.key(detectedFaceID, imageID),
		UpdateExpression: aws.String("REMOVE matched_profile_id, confidence"),
	})
	if err != nil {
		return fmt.Errorf("clearing match on face %s: %w", detectedFaceID, err)
	}
	return nil
}
