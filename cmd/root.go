package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-gallery",
	Short: "A face recognition gallery backed by AWS Rekognition",
	Long: `Face Gallery is a backend for a face recognition photo gallery.
It registers people from portrait photos, ingests group photos, and
matches every detected face against the registered profiles using
AWS Rekognition, S3 and DynamoDB.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
