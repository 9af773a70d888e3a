package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"proplead/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

// EventSourceConfig points at the external product-analytics service that
// supplies raw view/impression counts for the rollup.
type EventSourceConfig struct {
	BaseURL        string        `json:"base_url"`
	APIKey         string        `json:"-"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

type Config struct {
	Environment    string      `json:"environment"`
	ServerPort     string      `json:"server_port"`
	EncryptionKey  string      `json:"-"`
	SentryDSN      string      `json:"-"`
	DBHost         string      `json:"db_host"`
	DBPort         string      `json:"db_port"`
	DBUser         string      `json:"db_user"`
	DBPassword     string      `json:"-"`
	DBName         string      `json:"db_name"`
	DBSSLMode      string      `json:"db_ssl_mode"`
	DBMaxIdleConns int         `json:"db_max_idle_conns"`
	DBMaxOpenConns int         `json:"db_max_open_conns"`
	Redis          RedisConfig `json:"redis"`

	EventSource EventSourceConfig `json:"event_source"`

	// Rollup job settings
	RollupSecret         string        `json:"-"`
	RollupInterval       time.Duration `json:"rollup_interval"`
	RollupListingTimeout time.Duration `json:"rollup_listing_timeout"`

	// Leads above this score are counted as high value in channel analytics
	HighValueScoreThreshold float64 `json:"high_value_score_threshold"`

	RateLimitRecordAction int `json:"rate_limit_record_action"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	AppConfig = Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "proplead"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		EventSource: EventSourceConfig{
			BaseURL:        getEnv("EVENT_SOURCE_URL", ""),
			APIKey:         getEnv("EVENT_SOURCE_API_KEY", ""),
			RequestTimeout: time.Duration(getEnvAsInt("EVENT_SOURCE_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		RollupSecret:            getEnv("ROLLUP_SECRET", ""),
		RollupInterval:          time.Duration(getEnvAsInt("ROLLUP_INTERVAL_MINUTES", 60)) * time.Minute,
		RollupListingTimeout:    time.Duration(getEnvAsInt("ROLLUP_LISTING_TIMEOUT_SECONDS", 15)) * time.Second,
		HighValueScoreThreshold: float64(getEnvAsInt("HIGH_VALUE_SCORE_THRESHOLD", 50)),
		RateLimitRecordAction:   getEnvAsInt("RATE_LIMIT_RECORD_ACTION", 30),
	}

	// Validate required configurations
	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if AppConfig.RollupSecret == "" {
		return fmt.Errorf("ROLLUP_SECRET is required to protect the rollup trigger endpoint")
	}
	if AppConfig.Environment == "production" && AppConfig.EventSource.BaseURL == "" {
		return fmt.Errorf("EVENT_SOURCE_URL is required in production")
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("✅ Successfully connected to the database")
	log.Println("🔄 Starting database migration...")
	if err := migrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("✅ Database migration completed")
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		log.Printf("⚠️ Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("Rollup: every %s, per-listing timeout %s",
		AppConfig.RollupInterval,
		AppConfig.RollupListingTimeout)
	log.Printf("Event source configured: %t, Redis enabled: %t",
		AppConfig.EventSource.BaseURL != "",
		AppConfig.Redis.Enabled)
}

func migrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Sale{},
		&models.Lead{},
		&models.Reminder{},
		&models.ListingAnalyticsRecord{},
	); err != nil {
		return err
	}

	// One lead row per pair. listing_id is nullable, so uniqueness needs two
	// partial indexes: listing-level leads keyed on (seeker, listing) and
	// profile-level leads keyed on (seeker, lister).
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_pair
		ON leads (seeker_id, listing_id)
		WHERE listing_id IS NOT NULL AND deleted_at IS NULL`).Error; err != nil {
		return err
	}
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_profile_pair
		ON leads (seeker_id, lister_id)
		WHERE listing_id IS NULL AND deleted_at IS NULL`).Error
}
