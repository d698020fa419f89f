package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-gallery/internal/config"
	"github.com/kozaktomas/face-gallery/internal/recognition"
	"github.com/kozaktomas/face-gallery/internal/storage"
	"github.com/kozaktomas/face-gallery/internal/store/dynamo"
	"github.com/kozaktomas/face-gallery/internal/vision"
	"github.com/kozaktomas/face-gallery/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Face Gallery API server.
The server exposes endpoints for registering profiles, uploading
group photos and querying matched faces.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx := cmd.Context()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}

	objects := storage.New(s3.NewFromConfig(awsCfg), cfg.Storage.Bucket, cfg.Storage.PresignTTL)
	vis := vision.New(rekognition.NewFromConfig(awsCfg), cfg.Vision.CollectionID)

	db := dynamodb.NewFromConfig(awsCfg)
	profiles := dynamo.NewProfileRepository(db, cfg.Tables.Profiles)
	faces := dynamo.NewDetectedFaceRepository(db, cfg.Tables.DetectedFaces)

	service := recognition.New(objects, vis, profiles, faces, cfg.Matching)
	server := web.NewServer(cfg, service)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Gallery API on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
