package cmd

import (
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-gallery/internal/config"
	"github.com/kozaktomas/face-gallery/internal/store/dynamo"
	"github.com/kozaktomas/face-gallery/internal/vision"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the DynamoDB tables and the Rekognition collection",
	Long: `Create the AWS resources Face Gallery needs: the profiles and
detected faces DynamoDB tables and the Rekognition face collection.
Resources that already exist are left untouched.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx := cmd.Context()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}

	db := dynamodb.NewFromConfig(awsCfg)
	fmt.Printf("Creating DynamoDB tables %q and %q...\n", cfg.Tables.Profiles, cfg.Tables.DetectedFaces)
	if err := dynamo.CreateTables(ctx, db, cfg.Tables.Profiles, cfg.Tables.DetectedFaces); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	vis := vision.New(rekognition.NewFromConfig(awsCfg), cfg.Vision.CollectionID)
	fmt.Printf("Creating Rekognition collection %q...\n", cfg.Vision.CollectionID)
	if err := vis.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	fmt.Println("Done")
	return nil
}
