package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string
	BaseURL         string

	KakaoPayAdminKey string
	KakaoPayCID      string
	KakaoPayBaseURL  string

	AmqpURL      string
	AmqpExchange string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),

		KakaoPayAdminKey: getEnv("KAKAOPAY_ADMIN_KEY", ""),
		KakaoPayCID:      getEnv("KAKAOPAY_CID", "TC0ONETIME"),
		KakaoPayBaseURL:  getEnv("KAKAOPAY_BASE_URL", "https://kapi.kakao.com"),

		AmqpURL:      getEnv("AMQP_URL", ""),
		AmqpExchange: getEnv("AMQP_EXCHANGE", "tradepost.events"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
