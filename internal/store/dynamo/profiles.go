// Package dynamo implements the store repositories on DynamoDB. The
// profiles table is keyed by profile_id; detected_faces uses the composite
// (detected_face_id, image_id) key plus a secondary index on
// matched_profile_id so profile lookups never scan the table.
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

// ProfileRepository is the DynamoDB-backed store.ProfileRepository.
type ProfileRepository struct {
	client *dynamodb.Client
	table  string
}

// NewProfileRepository creates a profile repository for the given table.
func NewProfileRepository(client *dynamodb.Client, table string) *ProfileRepository {
	return &ProfileRepository{client: client, table: table}
}

func (r *ProfileRepository) Put(ctx context.Context, profile store.Profile) error {
	item, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return fmt.Errorf("marshaling profile %s: %w", profile.ProfileID, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting profile %s: %w", profile.ProfileID, err)
	}
	return nil
}

func (r *ProfileRepository) Get(ctx context.Context, profileID string) (*store.Profile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"profile_id": &ddbtypes.AttributeValueMemberS{Value: profileID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting profile %s: %w", profileID, err)
	}
	if out.Item == nil {
		return nil, store.ErrNotFound
	}
	var profile store.Profile
	if err := attributevalue.UnmarshalMap(out.Item, &profile); err != nil {
		return nil, fmt.Errorf("unmarshaling profile %s: %w", profileID, err)
	}
	return &profile, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]store.Profile, error) {
	var profiles []store.Profile
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning profiles: %w", err)
		}
		var batch []store.Profile
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshaling profiles: %w", err)
		}
		profiles = append(profiles, batch...)
	}
	return profiles, nil
}

func (r *ProfileRepository) Delete(ctx context.Context, profileID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"profile_id": &ddbtypes.AttributeValueMemberS{Value: profileID},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting profile %s: %w", profileID, err)
	}
	return nil
}
