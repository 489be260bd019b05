package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	Identity   IdentityConfig
	Images     ImagesConfig
	Embeddings EmbeddingsConfig
}

type AppConfig struct {
	Env  string
	Port int

	// AllowedOrigins feeds the CORS layer; the storefront runs on a
	// different origin than the API.
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit. Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

// IdentityConfig drives the auth gateway: how ID tokens and session cookies
// are verified, whether first-seen users get a profile row, and the bounds on
// the verification and store round-trips.
type IdentityConfig struct {
	Secret       string
	Issuer       string
	Audience     string
	CookieIssuer string

	SessionCookieName   string
	ProvisioningEnabled bool
	SkewTolerance       time.Duration
	VerifyTimeout       time.Duration
	StoreTimeout        time.Duration
	RoleStoreTimeout    time.Duration
}

type ImagesConfig struct {
	BaseURL       string
	UploadTimeout time.Duration
}

type EmbeddingsConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Identity.Secret = os.Getenv("IDENTITY_SECRET")
	c.Identity.Issuer = strings.TrimSpace(os.Getenv("IDENTITY_ISSUER"))
	c.Identity.Audience = strings.TrimSpace(os.Getenv("IDENTITY_AUDIENCE"))
	c.Identity.CookieIssuer = strings.TrimSpace(os.Getenv("IDENTITY_COOKIE_ISSUER"))
	c.Identity.SessionCookieName = strings.TrimSpace(os.Getenv("SESSION_COOKIE_NAME"))
	c.Identity.ProvisioningEnabled = boolOrDefault("ENABLE_PROFILE_PROVISIONING", true)
	// Duration env vars are optional; defaults applied in Validate().
	c.Identity.SkewTolerance = mustDuration("IDENTITY_SKEW_TOLERANCE")
	c.Identity.VerifyTimeout = mustDuration("IDENTITY_VERIFY_TIMEOUT")
	c.Identity.StoreTimeout = mustDuration("IDENTITY_STORE_TIMEOUT")
	c.Identity.RoleStoreTimeout = mustDuration("RBAC_STORE_TIMEOUT")

	c.Images.BaseURL = strings.TrimSpace(os.Getenv("IMAGE_SERVICE_BASE_URL"))
	c.Images.UploadTimeout = mustDuration("IMAGE_UPLOAD_TIMEOUT")

	c.Embeddings.BaseURL = strings.TrimSpace(os.Getenv("EMBEDDINGS_BASE_URL"))
	c.Embeddings.APIKey = os.Getenv("EMBEDDINGS_API_KEY")
	c.Embeddings.Model = strings.TrimSpace(os.Getenv("EMBEDDINGS_MODEL"))
	c.Embeddings.Timeout = mustDuration("EMBEDDINGS_TIMEOUT")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Identity.Secret == "" {
		errs = append(errs, errors.New("IDENTITY_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Identity.Issuer == "" {
			errs = append(errs, errors.New("IDENTITY_ISSUER is required in production"))
		}
		if c.Identity.Audience == "" {
			errs = append(errs, errors.New("IDENTITY_AUDIENCE is required in production"))
		}
	}
	if c.Identity.SessionCookieName == "" {
		// Matches the cookie name the hosting CDN forwards by default.
		c.Identity.SessionCookieName = "__session"
	}
	if c.Identity.SkewTolerance <= 0 {
		c.Identity.SkewTolerance = 15 * time.Second
	}
	if c.Identity.VerifyTimeout <= 0 {
		c.Identity.VerifyTimeout = 5 * time.Second
	}
	if c.Identity.StoreTimeout <= 0 {
		c.Identity.StoreTimeout = 3 * time.Second
	}
	if c.Identity.RoleStoreTimeout <= 0 {
		c.Identity.RoleStoreTimeout = 3 * time.Second
	}

	if c.Images.BaseURL != "" && !strings.HasPrefix(c.Images.BaseURL, "http") {
		errs = append(errs, fmt.Errorf("IMAGE_SERVICE_BASE_URL must be an http(s) URL, got %q", c.Images.BaseURL))
	}
	if c.Images.UploadTimeout <= 0 {
		c.Images.UploadTimeout = 30 * time.Second
	}

	if c.Embeddings.BaseURL != "" && c.Embeddings.APIKey == "" {
		errs = append(errs, errors.New("EMBEDDINGS_API_KEY is required when EMBEDDINGS_BASE_URL is set"))
	}
	if c.Embeddings.Model == "" {
		c.Embeddings.Model = "text-embedding-3-small"
	}
	if c.Embeddings.Timeout <= 0 {
		c.Embeddings.Timeout = 10 * time.Second
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func boolOrDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
