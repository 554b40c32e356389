package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      *AppConfig
	Database *DatabaseConfig
	Redis    *RedisConfig
	SMS      *SMSConfig
	Maps     *MapsConfig
	Security *SecurityConfig
	Safety   *SafetyConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Port        int
	Host        string
	Debug       bool
	LogLevel    string
	LogFormat   string
}

type DatabaseConfig struct {
	URI            string
	Database       string
	MaxPoolSize    int
	MinPoolSize    int
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// ZoneCacheTTL bounds how stale a cached danger-zone query may be.
	ZoneCacheTTL time.Duration
}

type SMSConfig struct {
	Provider         string // twilio, sns
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	AWSRegion        string
	SNSSenderID      string
}

type MapsConfig struct {
	GoogleAPIKey string
}

type SecurityConfig struct {
	JWTSecret          string
	JWTAccessTokenTTL  time.Duration
	CORSAllowedOrigins []string
}

// SafetyConfig carries every tunable the scoring, clustering and risk
// pipeline depends on. Defaults match the deployed values; all are
// overridable through the environment.
type SafetyConfig struct {
	MaxDistanceKM         float64 // guardians beyond this are never notified
	PriorityDistanceKM    float64 // flat bonus inside this radius
	MaxGuardiansToNotify  int
	HistoryWindow         int // most recent alert entries examined per guardian
	ClusteringDistanceM   float64
	RiskHighThreshold     float64
	RiskMediumThreshold   float64
	MinReportsForHighRisk int
	VeryRecentDays        float64
	VeryRecentWeight      float64
	RecentDays            float64
	RecentWeight          float64
	OldWeight             float64
	DefaultZoneRadiusKM   float64
}

func Load() (*Config, error) {
	config := &Config{
		App:      loadAppConfig(),
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		SMS:      loadSMSConfig(),
		Maps:     loadMapsConfig(),
		Security: loadSecurityConfig(),
		Safety:   loadSafetyConfig(),
	}

	return config, nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:        getEnv("APP_NAME", "SafeHer"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnvAsInt("APP_PORT", 8080),
		Host:        getEnv("APP_HOST", "localhost"),
		Debug:       getEnvAsBool("APP_DEBUG", true),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:       getEnv("MONGODB_DATABASE", "safeher"),
		MaxPoolSize:    getEnvAsInt("MONGODB_MAX_POOL_SIZE", 100),
		MinPoolSize:    getEnvAsInt("MONGODB_MIN_POOL_SIZE", 5),
		ConnectTimeout: getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
		SocketTimeout:  getEnvAsDuration("MONGODB_SOCKET_TIMEOUT", 30*time.Second),
	}
}

func loadRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:         getEnv("REDIS_HOST", "localhost"),
		Port:         getEnvAsInt("REDIS_PORT", 6379),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           getEnvAsInt("REDIS_DB", 0),
		ZoneCacheTTL: getEnvAsDuration("ZONE_CACHE_TTL", 2*time.Minute),
	}
}

func loadSMSConfig() *SMSConfig {
	return &SMSConfig{
		Provider:         getEnv("SMS_PROVIDER", "twilio"),
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		SNSSenderID:      getEnv("SNS_SENDER_ID", "SafeHer"),
	}
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		GoogleAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		JWTAccessTokenTTL:  getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

func loadSafetyConfig() *SafetyConfig {
	return &SafetyConfig{
		MaxDistanceKM:         getEnvAsFloat("SAFETY_MAX_DISTANCE_KM", 20),
		PriorityDistanceKM:    getEnvAsFloat("SAFETY_PRIORITY_DISTANCE_KM", 5),
		MaxGuardiansToNotify:  getEnvAsInt("SAFETY_MAX_GUARDIANS_TO_NOTIFY", 10),
		HistoryWindow:         getEnvAsInt("SAFETY_HISTORY_WINDOW", 20),
		ClusteringDistanceM:   getEnvAsFloat("SAFETY_CLUSTERING_DISTANCE_METERS", 500),
		RiskHighThreshold:     getEnvAsFloat("SAFETY_RISK_HIGH_THRESHOLD", 5),
		RiskMediumThreshold:   getEnvAsFloat("SAFETY_RISK_MEDIUM_THRESHOLD", 2),
		MinReportsForHighRisk: getEnvAsInt("SAFETY_MIN_REPORTS_FOR_HIGH_RISK", 2),
		VeryRecentDays:        getEnvAsFloat("SAFETY_VERY_RECENT_DAYS", 7),
		VeryRecentWeight:      getEnvAsFloat("SAFETY_VERY_RECENT_WEIGHT", 1.5),
		RecentDays:            getEnvAsFloat("SAFETY_RECENT_DAYS", 30),
		RecentWeight:          getEnvAsFloat("SAFETY_RECENT_WEIGHT", 1.0),
		OldWeight:             getEnvAsFloat("SAFETY_OLD_WEIGHT", 0.5),
		DefaultZoneRadiusKM:   getEnvAsFloat("SAFETY_DEFAULT_ZONE_RADIUS_KM", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
