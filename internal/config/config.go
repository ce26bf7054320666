package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config representa la configuración del servidor
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Drive    DriveConfig
	Sheets   SheetsConfig
	Relay    RelayConfig
	Upload   UploadConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig representa la configuración del servidor HTTP
type ServerConfig struct {
	Port    string
	Host    string
	Env     string
	BaseURL string
}

// DatabaseConfig representa la configuración de la base de datos (espejo)
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig representa la configuración de Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// DriveConfig representa la configuración del lado Drive. Si hay credenciales
// de Google se usa la API de Drive directamente; si no, el servicio cae al
// endpoint del Apps Script.
type DriveConfig struct {
	AppScriptURL    string
	RootFolderID    string
	CredentialsFile string
	Timeout         time.Duration
}

// SheetsConfig representa la configuración del registro de clientes
type SheetsConfig struct {
	SpreadsheetID string
	SheetName     string
}

// RelayConfig representa la configuración del relay de subida (Zapier)
type RelayConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// UploadConfig representa los límites de tamaño de subida
type UploadConfig struct {
	// Archivos hasta RelayMaxMB van por el webhook; más grandes van
	// directo al Apps Script. Por encima de MaxFileMB se rechaza antes
	// de cualquier llamada de red.
	RelayMaxMB float64
	MaxFileMB  float64
}

// CacheConfig representa la configuración del caché de lecturas
type CacheConfig struct {
	TTL time.Duration
}

// LoggingConfig representa la configuración de logging
type LoggingConfig struct {
	Level  string
	Format string
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// Cargar archivo .env si existe
	if err := godotenv.Load(); err != nil {
		// No es crítico si no existe el archivo .env
	}

	config := &Config{
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8080"),
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Env:     getEnv("SERVER_ENV", "development"),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PGHOST", "localhost"),
			Port:     getEnv("PGPORT", "5432"),
			User:     getEnv("PGUSER", "postgres"),
			Password: getEnv("PGPASSWORD", "postgres"),
			Name:     getEnv("PGDATABASE", "habicapital"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Drive: DriveConfig{
			AppScriptURL:    getEnv("APP_SCRIPT_URL", ""),
			RootFolderID:    getEnv("DRIVE_ROOT_FOLDER_ID", ""),
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
			Timeout:         getEnvAsDuration("DRIVE_TIMEOUT", 60*time.Second),
		},
		Sheets: SheetsConfig{
			SpreadsheetID: getEnv("DATA_SHEET_ID", ""),
			SheetName:     getEnv("DATA_SHEET_NAME", "Creditos"),
		},
		Relay: RelayConfig{
			WebhookURL: getEnv("ZAPIER_WEBHOOK_URL", ""),
			Timeout:    getEnvAsDuration("RELAY_TIMEOUT", 60*time.Second),
		},
		Upload: UploadConfig{
			RelayMaxMB: getEnvAsFloat("UPLOAD_RELAY_MAX_MB", 10),
			MaxFileMB:  getEnvAsFloat("UPLOAD_MAX_FILE_MB", 150),
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// getEnv obtiene una variable de entorno o retorna un valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt obtiene una variable de entorno como entero
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat obtiene una variable de entorno como flotante
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration obtiene una variable de entorno como duración
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// IsDevelopment retorna true si el entorno es de desarrollo
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction retorna true si el entorno es de producción
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetDSN retorna la cadena de conexión a la base de datos
func (c *Config) GetDSN() string {
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// GetRedisAddr retorna la dirección de Redis
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// HasGoogleCredentials indica si se puede usar la API de Google directamente
func (c *Config) HasGoogleCredentials() bool {
	return c.Drive.CredentialsFile != "" && c.Drive.RootFolderID != "" && c.Sheets.SpreadsheetID != ""
}
