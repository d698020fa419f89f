package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	AWS      AWSConfig
	Storage  StorageConfig
	Vision   VisionConfig
	Tables   TablesConfig
	Matching MatchingConfig
	Web      WebConfig
}

type AWSConfig struct {
	Region string
}

type StorageConfig struct {
	Bucket     string
	PresignTTL time.Duration // lifetime of signed URLs handed to clients
}

type VisionConfig struct {
	CollectionID string
}

type TablesConfig struct {
	Profiles      string
	DetectedFaces string
}

// MatchingConfig holds the two similarity threshold policies. ProfileMatch
// applies when a profile is created or explicitly re-matched; IngestMatch is
// the looser bar used while ingesting group photos. Keep them separate: the
// observable behavior of re-matching depends on the divergence.
type MatchingConfig struct {
	ProfileMatch float32
	IngestMatch  float32
}

type WebConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
}

// thresholdDefaults mirrors the embedded thresholds.yaml.
type thresholdDefaults struct {
	Thresholds struct {
		ProfileMatch float32 `yaml:"profile_match"`
		IngestMatch  float32 `yaml:"ingest_match"`
	} `yaml:"thresholds"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float in (0, 100].
// Returns the default value if the env var is unset, empty, or out of range.
func envFloat(key string, defaultVal float32) float32 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil && f > 0 && f <= 100 {
		return float32(f)
	}
	return defaultVal
}

// envString reads an environment variable, falling back to a default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var defaults thresholdDefaults
	if err := yaml.Unmarshal(thresholdsYAML, &defaults); err != nil {
		// Embedded file, so this should never happen in practice.
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	return &Config{
		AWS: AWSConfig{
			Region: envString("AWS_REGION", "us-east-1"),
		},
		Storage: StorageConfig{
			Bucket:     envString("S3_BUCKET", "famouspersons-images-ca"),
			PresignTTL: time.Duration(envInt("PRESIGN_TTL_SECONDS", 3600)) * time.Second,
		},
		Vision: VisionConfig{
			CollectionID: envString("COLLECTION_ID", "famouspersons"),
		},
		Tables: TablesConfig{
			Profiles:      envString("PROFILES_TABLE", "profiles"),
			DetectedFaces: envString("DETECTED_FACES_TABLE", "detected_faces"),
		},
		Matching: MatchingConfig{
			ProfileMatch: envFloat("PROFILE_MATCH_THRESHOLD", defaults.Thresholds.ProfileMatch),
			IngestMatch:  envFloat("INGEST_MATCH_THRESHOLD", defaults.Thresholds.IngestMatch),
		},
		Web: WebConfig{
			Host:           envString("API_HOST", "0.0.0.0"),
			Port:           envInt("API_PORT", 8000),
			RequestTimeout: time.Duration(envInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		},
	}
}
