package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI          string
	DBName            string
	JWTSecret         string
	AccessTokenTTL    time.Duration
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	DelhiveryToken    string
	DelhiveryBaseURL  string
	PickupLocation    string
	ShippingFee       int64 // paise
	TaxRatePercent    int64
	MinOrderAmount    int64 // paise, checked before contacting the gateway
	PendingOrderTTL   time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:          getEnvOrDefault("MONGO_URI", ""),
		DBName:            getEnvOrDefault("DB_NAME", "garmentstore"),
		JWTSecret:         getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:    getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RazorpayKeyID:     getEnvOrDefault("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnvOrDefault("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:   getEnvOrDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		DelhiveryToken:    getEnvOrDefault("DELHIVERY_TOKEN", ""),
		DelhiveryBaseURL:  getEnvOrDefault("DELHIVERY_BASE_URL", "https://track.delhivery.com"),
		PickupLocation:    getEnvOrDefault("PICKUP_LOCATION", "Primary"),
		ShippingFee:       getInt64Env("SHIPPING_FEE", 0),
		TaxRatePercent:    getInt64Env("TAX_RATE_PERCENT", 18),
		MinOrderAmount:    getInt64Env("MIN_ORDER_AMOUNT", 10000),
		PendingOrderTTL:   getDurationEnv("PENDING_ORDER_TTL", 15, time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
