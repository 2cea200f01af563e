package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	StorageBucket   string
	CredentialsFile string
	Environment     string

	// Recommendation tuning
	RecommendationLimit int
	ViewHistoryLimit    int
	CandidatePoolSize   int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		FirebaseProject:     getEnv("FIREBASE_PROJECT_ID", ""),
		StorageBucket:       getEnv("STORAGE_BUCKET", ""),
		CredentialsFile:     getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		Environment:         getEnv("ENVIRONMENT", "development"),
		RecommendationLimit: getEnvAsInt("RECOMMENDATION_LIMIT", 8),
		ViewHistoryLimit:    getEnvAsInt("VIEW_HISTORY_LIMIT", 20),
		CandidatePoolSize:   getEnvAsInt("CANDIDATE_POOL_SIZE", 200),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
