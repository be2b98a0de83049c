package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	Log     LogConfig
	DB      DBConfig
	HTTP    HTTPConfig
	Session SessionConfig
	Order   OrderConfig
	PDF     PDFConfig
	Storage StorageConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// LogConfig nivel de log (trace, debug, info, warn, error).
type LogConfig struct {
	Level string
}

// Drivers de persistencia soportados.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase).
type DBConfig struct {
	Driver      string // postgres | memory
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	Migrate     bool // aplicar migraciones al arrancar
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
	BodyLimitMB int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SessionConfig verificación del header X-Session-Token.
// Con PortalURL se consulta el portal; si no, los tokens son JWT HS256 firmados con JWTSecret.
type SessionConfig struct {
	PortalURL     string
	VerifyTimeout time.Duration
	JWTSecret     string
	JWTIssuer     string
	JWTExpiration int // minutos
}

// OrderConfig variantes de producto de la orden.
type OrderConfig struct {
	NumberFormat    string // plain | year
	NumberFloor     int
	NumberWidth     int
	NumberSeparator string
	TaxColumns      bool // columnas IPI/ST en la tabla de ítems
}

// PDFConfig recursos y márgenes del documento.
type PDFConfig struct {
	LogoPath      string // ruta o URL http(s)
	SignaturePath string
	AssetTimeout  time.Duration
	BottomMargin  float64 // mm
}

// StorageConfig archivo de PDFs en S3 (o compatible). Sin Bucket el archivo queda deshabilitado.
type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Enabled indica si hay bucket configurado.
func (c StorageConfig) Enabled() bool { return c.Bucket != "" }

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, PORTAL_URL, ORDER_NUMBER_FORMAT, etc.
func Load() (*Config, error) {
	return load(true)
}

// LoadCLI igual que Load pero sin exigir verificador de sesión (la CLI no expone HTTP).
func LoadCLI() (*Config, error) {
	return load(false)
}

func load(requireSession bool) (*Config, error) {
	v := viper.New()

	// Opcional: .env y config.env; se ignoran si no existen.
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "ordem-compra"),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:      strings.ToLower(getString(v, "DB_DRIVER", DriverPostgres)),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "ordem_compra"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 10),
			Migrate:     getBool(v, "DB_MIGRATE", true),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", getInt(v, "PORT", 10000)),
			CORSOrigins: getList(v, "CORS_ORIGINS", []string{"https://ordem-compra.onrender.com", "http://localhost:3000"}),
			BodyLimitMB: getInt(v, "HTTP_BODY_LIMIT_MB", 50),
		},
		Session: SessionConfig{
			PortalURL:     strings.TrimRight(getString(v, "PORTAL_URL", ""), "/"),
			VerifyTimeout: time.Duration(getInt(v, "SESSION_VERIFY_TIMEOUT_MS", 5000)) * time.Millisecond,
			JWTSecret:     getString(v, "SESSION_JWT_SECRET", ""),
			JWTIssuer:     getString(v, "SESSION_JWT_ISSUER", "ordem-compra"),
			JWTExpiration: getInt(v, "SESSION_JWT_EXPIRATION_MINUTES", 480),
		},
		Order: OrderConfig{
			NumberFormat:    strings.ToLower(getString(v, "ORDER_NUMBER_FORMAT", "plain")),
			NumberFloor:     getInt(v, "ORDER_NUMBER_FLOOR", 1250),
			NumberWidth:     getInt(v, "ORDER_NUMBER_WIDTH", 4),
			NumberSeparator: getString(v, "ORDER_NUMBER_SEPARATOR", "-"),
			TaxColumns:      getBool(v, "ORDER_TAX_COLUMNS", true),
		},
		PDF: PDFConfig{
			LogoPath:      getString(v, "PDF_LOGO_PATH", "assets/logo.png"),
			SignaturePath: getString(v, "PDF_SIGNATURE_PATH", "assets/ASSINATURA.png"),
			AssetTimeout:  time.Duration(getInt(v, "PDF_ASSET_TIMEOUT_MS", 3000)) * time.Millisecond,
			BottomMargin:  getFloat(v, "PDF_BOTTOM_MARGIN", 20),
		},
		Storage: StorageConfig{
			Bucket:          getString(v, "STORAGE_BUCKET", ""),
			Region:          getString(v, "STORAGE_REGION", "us-east-1"),
			Endpoint:        getString(v, "STORAGE_ENDPOINT", ""),
			Prefix:          getString(v, "STORAGE_PREFIX", "ordens/"),
			AccessKeyID:     getString(v, "STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getString(v, "STORAGE_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getBool(v, "STORAGE_USE_PATH_STYLE", false),
		},
	}

	if err := cfg.validate(requireSession); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(requireSession bool) error {
	switch c.DB.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("config: DB_DRIVER %q no soportado (postgres|memory)", c.DB.Driver)
	}
	switch c.Order.NumberFormat {
	case "plain", "year":
	default:
		return fmt.Errorf("config: ORDER_NUMBER_FORMAT %q no soportado (plain|year)", c.Order.NumberFormat)
	}
	if requireSession && c.Session.PortalURL == "" && c.Session.JWTSecret == "" {
		return fmt.Errorf("config: defina PORTAL_URL o SESSION_JWT_SECRET")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return def
		}
		return n
	}
	return v.GetInt(key)
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return def
		}
		return b
	}
	return v.GetBool(key)
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return def
		}
		return f
	}
	return v.GetFloat64(key)
}

// getList lee una lista separada por comas.
func getList(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	var out []string
	for _, p := range strings.Split(v.GetString(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
