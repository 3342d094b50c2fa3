package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort         string
	FirebaseProject    string
	Environment        string
	SiteDir            string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	IgnoreEntityTypes  []string
	ImageFields        map[string]string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:        getEnv("ENVIRONMENT", "development"),
		SiteDir:            getEnv("SITE_DIR", "./site"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/v1/admin/drive/callback"),
		IgnoreEntityTypes:  getEnvAsList("IGNORE_UPLOAD_ENTITY_TYPES", "data_import"),
		ImageFields:        getEnvAsMap("IMAGE_FIELDS", ""),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// getEnvAsMap parses "key=value,key=value" pairs, e.g. "product=image_url".
func getEnvAsMap(key, defaultValue string) map[string]string {
	result := map[string]string{}
	for _, pair := range strings.Split(getEnv(key, defaultValue), ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			result[parts[0]] = parts[1]
		}
	}
	return result
}
