package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in the
// application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	JWTSecret     string // secret used to sign JWTs
	JWTTTLMin     int    // session token time-to-live in minutes
	CookieTTLDays int    // lifetime of the jwt cookie in days
	BcryptCost    int    // bcrypt cost for password hashing
	ResetTTLMin   int    // password reset ticket time-to-live in minutes
	MailFrom      string // From address on outbound mail events
	BaseURL       string // public base URL used to build reset links
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		JWTTTLMin:     mustInt("JWT_TTL_MIN"),
		CookieTTLDays: mustInt("JWT_COOKIE_TTL_DAYS"),
		BcryptCost:    mustInt("BCRYPT_COST"),
		ResetTTLMin:   atoiDefault("RESET_TTL_MIN", 10),
		MailFrom:      getenv("MAIL_FROM", "Tour Booking <noreply@example.com>"),
		BaseURL:       getenv("BASE_URL", "http://localhost:8080"),
	}
}

// IsDev reports whether the app runs in a development environment. The
// central error handler exposes fault details only in this mode.
func (c Config) IsDev() bool { return c.Env == "dev" || c.Env == "development" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func atoiDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
