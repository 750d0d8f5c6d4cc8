package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Options struct {
	runAddr         string
	logLevel        string
	dataBaseDSN     string
	migrationsDir   string
	redisAddr       string
	redisPassword   string
	redisDB         int
	dataFile        string
	catalogFile     string
	timezone        string
	frequencyWindow int
	corsOrigins     string
}

func NewOptions() *Options {
	return new(Options)
}

// ParseFlags handles command line arguments
// and stores their values in the corresponding variables.
func (o *Options) ParseFlags() {
	o.ParseFlagSet(flag.CommandLine, os.Args[1:])
}

// ParseFlagSet registers the options on fs and parses args. Environment
// variables, including those from a .env file, provide the defaults.
func (o *Options) ParseFlagSet(fs *flag.FlagSet, args []string) {
	loadEnvFile()

	fs.StringVar(&o.runAddr, "a", getEnvOrDefault("RUN_ADDRESS", ":8080"), "address and port to run server")
	fs.StringVar(&o.logLevel, "l", getEnvOrDefault("LOG_LEVEL", "info"), "log level")
	fs.StringVar(&o.dataBaseDSN, "d", getEnvOrDefault("DATABASE_URI", ""), "postgres connection string")
	fs.StringVar(&o.migrationsDir, "m", getEnvOrDefault("MIGRATIONS_DIR", "migrations"), "directory with postgres migrations")
	fs.StringVar(&o.redisAddr, "r", getEnvOrDefault("REDIS_ADDR", ""), "redis address")
	fs.StringVar(&o.redisPassword, "redis-password", getEnvOrDefault("REDIS_PASSWORD", ""), "redis password")
	fs.IntVar(&o.redisDB, "redis-db", getEnvIntOrDefault("REDIS_DB", 0), "redis database number")
	fs.StringVar(&o.dataFile, "f", getEnvOrDefault("DATA_FILE", "ordercalc.json"), "json data file used when no database is configured")
	fs.StringVar(&o.catalogFile, "c", getEnvOrDefault("CATALOG_FILE", ""), "catalog seeded into an empty store")
	fs.StringVar(&o.timezone, "tz", getEnvOrDefault("TIMEZONE", "Local"), "calendar used for day and month boundaries")
	fs.IntVar(&o.frequencyWindow, "w", getEnvIntOrDefault("FREQUENCY_WINDOW", 50), "recent orders used for the frequently ordered list")
	fs.StringVar(&o.corsOrigins, "cors", getEnvOrDefault("CORS_ORIGINS", "*"), "comma separated allowed origins")

	// errors are handled by the flag set's own policy
	_ = fs.Parse(args)
}

func (o *Options) RunAddr() string {
	return o.runAddr
}

func (o *Options) LogLevel() string {
	return o.logLevel
}

func (o *Options) DataBaseDSN() string {
	return o.dataBaseDSN
}

func (o *Options) MigrationsDir() string {
	return o.migrationsDir
}

func (o *Options) RedisAddr() string {
	return o.redisAddr
}

func (o *Options) RedisPassword() string {
	return o.redisPassword
}

func (o *Options) RedisDB() int {
	return o.redisDB
}

func (o *Options) DataFile() string {
	return o.dataFile
}

func (o *Options) CatalogFile() string {
	return o.catalogFile
}

func (o *Options) FrequencyWindow() int {
	return o.frequencyWindow
}

func (o *Options) CORSOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(o.corsOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Location resolves the configured timezone, falling back to the local one.
func (o *Options) Location() *time.Location {
	if o.timezone == "" || o.timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		log.Printf("unknown timezone %q, using local time", o.timezone)
		return time.Local
	}
	return loc
}

// getEnvOrDefault reads an environment variable or returns a default value if the variable is not set or is empty.
func getEnvOrDefault(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// loadEnvFile loads environment variables from a .env file in the working
// directory, or two levels up when started from cmd/<name>.
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	for _, envPath := range []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(cwd, "..", "..", ".env"),
	} {
		if err := godotenv.Load(envPath); err == nil {
			log.Printf(".env file loaded from %s", envPath)
			return
		}
	}
	log.Printf("No .env file found, proceeding without it")
}
