package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// defaultThroughput matches the modest capacity the demo tables were
// provisioned with originally.
var defaultThroughput = &ddbtypes.ProvisionedThroughput{
	ReadCapacityUnits:  aws.Int64(5),
	WriteCapacityUnits: aws.Int64(5),
}

// CreateTables creates the profiles and detected_faces tables, waiting for
// each to become active. Tables that already exist are left alone.
func CreateTables(ctx context.Context, client *dynamodb.Client, profilesTable, detectedFacesTable string) error {
	if err := createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName: aws.String(profilesTable),
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String("profile_id"), KeyType: ddbtypes.KeyTypeHash},
		},
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String("profile_id"), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		ProvisionedThroughput: defaultThroughput,
	}); err != nil {
		return err
	}

	return createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName: aws.String(detectedFacesTable),
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String("detected_face_id"), KeyType: ddbtypes.KeyTypeHash},
			{AttributeName: aws.String("image_id"), KeyType: ddbtypes.KeyTypeRange},
		},
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String("detected_face_id"), AttributeType: ddbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String("image_id"), AttributeType: ddbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String("matched_profile_id"), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		GlobalSecondaryIndexes: []ddbtypes.GlobalSecondaryIndex{
			{
				IndexName: aws.String(MatchedProfileIndex),
				KeySchema: []ddbtypes.KeySchemaElement{
					{AttributeName: aws.String("matched_profile_id"), KeyType: ddbtypes.KeyTypeHash},
				},
				Projection:            &ddbtypes.Projection{ProjectionType: ddbtypes.ProjectionTypeAll},
				ProvisionedThroughput: defaultThroughput,
			},
		},
		ProvisionedThroughput: defaultThroughput,
	})
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) error {
	_, err := client.CreateTable(ctx, input)
	var inUse *ddbtypes.ResourceInUseException
	if errors.As(err, &inUse) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating table %s: %w", aws.ToString(input.TableName), err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: input.TableName,
	}, 2*time.Minute)
	if err != nil {
		return fmt.Errorf("waiting for table %s: %w", aws.ToString(input.TableName), err)
	}
	return nil
}
