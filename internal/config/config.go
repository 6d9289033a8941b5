package config

import (
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // business time zone must resolve on minimal images

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Listing   ListingConfig   `yaml:"listing"`
	Rooms     RoomsConfig     `yaml:"rooms"`
	Inquiry   InquiryConfig   `yaml:"inquiry"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
	BaseURL  string `yaml:"base_url"`

	// TrustedProxies lists the addresses or CIDR ranges whose
	// X-Forwarded-For header is believed. Empty means peers are keyed as-is.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// StoreConfig selects the document store backend
type StoreConfig struct {
	Driver          string `yaml:"driver"` // "firestore", "postgres" or "memory"
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// StorageConfig contains object storage settings
type StorageConfig struct {
	Type         string   `yaml:"type"`       // "firebase" or "mock"
	Bucket       string   `yaml:"bucket"`     // Firebase Storage bucket
	UploadDir    string   `yaml:"upload_dir"` // For mock storage
	BaseURL      string   `yaml:"base_url"`   // Server base URL for mock URLs
	MaxFileSize  int64    `yaml:"max_file_size_mb"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// AuthConfig contains admin session settings
type AuthConfig struct {
	Provider          string `yaml:"provider"` // "firebase" or "local"
	APIKey            string `yaml:"api_key"`  // Firebase Web API key for password sign-in
	AdminEmail        string `yaml:"admin_email"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	JWTSecret         string `yaml:"jwt_secret"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
}

// ListingConfig contains listing page sizes and the browse debounce delay
type ListingConfig struct {
	BrowsePageSize int    `yaml:"browse_page_size"`
	AdminPageSize  int    `yaml:"admin_page_size"`
	DebounceMillis int    `yaml:"debounce_ms"`
	Currency       string `yaml:"currency"`
}

// RoomsConfig contains room lifecycle settings
type RoomsConfig struct {
	DefaultOccupancyDays int `yaml:"default_occupancy_days"`
}

// InquiryConfig contains the operator contact used for deep links and notices
type InquiryConfig struct {
	OperatorPhone      string `yaml:"operator_phone"`
	OperatorEmail      string `yaml:"operator_email"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

// SendGridConfig contains email delivery settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// CacheConfig contains the optional Redis read-through cache settings
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron settings for the reconciliation job
type SchedulerConfig struct {
	Location            string `yaml:"location"`
	ReleaseExpiredRooms string `yaml:"release_expired_rooms"`
}

// Load reads configuration from a YAML file. A .env file next to the
// working directory is loaded first so its values take part in the
// environment overrides.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes, applying env overrides and defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}
	if val := os.Getenv("BASE_URL"); val != "" {
		c.Server.BaseURL = val
	}

	// Store
	if val := os.Getenv("STORE_DRIVER"); val != "" {
		c.Store.Driver = val
	}
	if val := os.Getenv("FIREBASE_PROJECT_ID"); val != "" {
		c.Store.ProjectID = val
	}
	if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" {
		c.Store.CredentialsFile = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Store.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Store.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Store.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Store.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Store.Database = val
	}

	// Storage
	if val := os.Getenv("STORAGE_BUCKET"); val != "" {
		c.Storage.Bucket = val
	}
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	// Auth
	if val := os.Getenv("FIREBASE_API_KEY"); val != "" {
		c.Auth.APIKey = val
	}
	if val := os.Getenv("ADMIN_EMAIL"); val != "" {
		c.Auth.AdminEmail = val
	}
	if val := os.Getenv("ADMIN_PASSWORD_HASH"); val != "" {
		c.Auth.AdminPasswordHash = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.Auth.JWTSecret = val
	}

	// Inquiry
	if val := os.Getenv("OPERATOR_PHONE"); val != "" {
		c.Inquiry.OperatorPhone = val
	}
	if val := os.Getenv("OPERATOR_EMAIL"); val != "" {
		c.Inquiry.OperatorEmail = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}

	// Cache
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Cache.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Cache.Password = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}

	switch c.Store.Driver {
	case "":
		c.Store.Driver = "firestore"
		fallthrough
	case "firestore":
		if c.Store.ProjectID == "" {
			return fmt.Errorf("firestore project id is required")
		}
	case "postgres":
		if c.Store.Host == "" || c.Store.User == "" || c.Store.Database == "" {
			return fmt.Errorf("postgres host, user and database are required")
		}
		if c.Store.Port == 0 {
			c.Store.Port = 5432
		}
		if c.Store.SSLMode == "" {
			c.Store.SSLMode = "disable"
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}

	switch c.Storage.Type {
	case "", "mock":
		c.Storage.Type = "mock"
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required")
		}
	case "firebase":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %q", c.Storage.Type)
	}
	if c.Storage.MaxFileSize <= 0 {
		c.Storage.MaxFileSize = 10
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = c.Server.BaseURL
	}

	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}

	switch c.Auth.Provider {
	case "", "local":
		c.Auth.Provider = "local"
		if c.Auth.AdminEmail == "" || c.Auth.AdminPasswordHash == "" {
			return fmt.Errorf("admin email and password hash are required for local auth")
		}
	case "firebase":
		if c.Auth.APIKey == "" {
			return fmt.Errorf("firebase api key is required")
		}
	default:
		return fmt.Errorf("unknown auth provider: %q", c.Auth.Provider)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.Auth.SessionTTLMinutes <= 0 {
		c.Auth.SessionTTLMinutes = 12 * 60
	}

	if c.Listing.BrowsePageSize <= 0 {
		c.Listing.BrowsePageSize = 12
	}
	if c.Listing.AdminPageSize <= 0 {
		c.Listing.AdminPageSize = 20
	}
	if c.Listing.DebounceMillis <= 0 {
		c.Listing.DebounceMillis = 400
	}
	if c.Listing.Currency == "" {
		c.Listing.Currency = "XOF"
	}

	if c.Rooms.DefaultOccupancyDays <= 0 {
		c.Rooms.DefaultOccupancyDays = 30
	}

	if c.Inquiry.RateLimitPerMinute <= 0 {
		c.Inquiry.RateLimitPerMinute = 5
	}

	if c.Cache.Enabled && c.Cache.Addr == "" {
		c.Cache.Addr = "localhost:6379"
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 300
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Scheduler.Location == "" {
		c.Scheduler.Location = "Africa/Lome"
	}
	if _, err := time.LoadLocation(c.Scheduler.Location); err != nil {
		return fmt.Errorf("invalid scheduler location %q: %w", c.Scheduler.Location, err)
	}
	if c.Scheduler.ReleaseExpiredRooms == "" {
		c.Scheduler.ReleaseExpiredRooms = "0 0 * * * *" // hourly, on the hour
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Store.User,
		c.Store.Password,
		c.Store.Host,
		c.Store.Port,
		c.Store.Database,
		c.Store.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC health listener address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// Location returns the business time zone used for day boundaries and cron.
// TrustedProxyPrefixes parses server.trusted_proxies. A bare address is
// taken as a single-host range.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.Server.TrustedProxies))
	for _, entry := range c.Server.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLMinutes) * time.Minute
}

func (c *Config) DefaultOccupancy() time.Duration {
	return time.Duration(c.Rooms.DefaultOccupancyDays) * 24 * time.Hour
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Listing.DebounceMillis) * time.Millisecond
}

// AllowsContentType reports whether an upload's MIME type is accepted.
func (c *Config) AllowsContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, t := range c.Storage.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}
