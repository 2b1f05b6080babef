package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting of the application. It is read-only once NewConfig returns.
type Config struct {
	AppName      string
	Env          string // DEV (local; default), TEST, QA, PROD
	Build        string
	Debug        bool
	TestMode     bool
	SecretKey    string
	RollbarToken string
	RollbarLevel string // lowest level reported to Rollbar: debug, info, warning (default), error, critical
	WorkDir      string

	FrontendBaseURL string

	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Mail     MailConfig
	Metrics  MetricsConfig
	Archive  ArchiveConfig
}

type ServerConfig struct {
	Host                      string
	Address                   string
	DebugHost                 string
	ReadTimeout               time.Duration
	WriteTimeout              time.Duration
	ShutdownTimeout           time.Duration
	JWTExpirationDelta        time.Duration
	JWTRefreshExpirationDelta time.Duration
}

type DatabaseConfig struct {
	Engine        string // postgres | sqlite
	Host          string
	Port          int
	Name          string
	User          string
	Password      string
	AdminUser     string
	AdminPassword string
	DisableTLS    bool
	Path          string // sqlite only
}

// Address returns the "host:port" of the database server.
func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
}

func (db DatabaseConfig) IsSQLite() bool {
	return db.Engine == "sqlite"
}

type AuthConfig struct {
	AdminEmail        string
	AdminPasswordHash string // bcrypt
}

type MailConfig struct {
	DefaultFromEmail string
	SendgridAPIKey   string
}

// MetricsConfig holds the canonical metric status thresholds (ratios of actual/target).
// New metrics without explicit thresholds inherit these.
type MetricsConfig struct {
	OnTargetThreshold  float64
	OffTargetThreshold float64
}

type ArchiveConfig struct {
	S3Bucket string
	S3Prefix string
	S3Region string
	LocalDir string
}

// DefaultFromEmail parses the configured sender address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.Mail.DefaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.Mail.DefaultFromEmail}
	}
	return *addr
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and
// environment variables prefixed with the env name (eg. `PROD_DATABASE_HOST`).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Kipimo")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "x8k2-vbn)qp&+13=zo!ufmr2(s!z)#*k9(#tw6^$dfka7qpe")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("rollbarLevel", "warning")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "kipimo")
	v.SetDefault("database.user", "kipimo")
	v.SetDefault("database.password", "kipimo")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "kipimo.db")

	v.SetDefault("auth.adminEmail", "admin@localhost")
	v.SetDefault("auth.adminPasswordHash", "")

	v.SetDefault("mail.defaultFromEmail", "Kipimo <noreply@localhost>")
	v.SetDefault("mail.sendgridAPIKey", "")

	v.SetDefault("metrics.onTargetThreshold", 0.95)
	v.SetDefault("metrics.offTargetThreshold", 0.8)

	v.SetDefault("archive.s3Bucket", "")
	v.SetDefault("archive.s3Prefix", "exports")
	v.SetDefault("archive.s3Region", "us-east-1")
	v.SetDefault("archive.localDir", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", "sqlite")
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:         v.GetString("appName"),
		Env:             env,
		Build:           v.GetString("build"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		SecretKey:       v.GetString("secretKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		RollbarLevel:    v.GetString("rollbarLevel"),
		WorkDir:         wd,
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			ReadTimeout:               v.GetDuration("server.readTimeout"),
			WriteTimeout:              v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        strings.ToLower(v.GetString("database.engine")),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			Path:          v.GetString("database.path"),
		},
		Auth: AuthConfig{
			AdminEmail:        CleanString(v.GetString("auth.adminEmail"), true /* lower */),
			AdminPasswordHash: v.GetString("auth.adminPasswordHash"),
		},
		Mail: MailConfig{
			DefaultFromEmail: v.GetString("mail.defaultFromEmail"),
			SendgridAPIKey:   v.GetString("mail.sendgridAPIKey"),
		},
		Metrics: MetricsConfig{
			OnTargetThreshold:  v.GetFloat64("metrics.onTargetThreshold"),
			OffTargetThreshold: v.GetFloat64("metrics.offTargetThreshold"),
		},
		Archive: ArchiveConfig{
			S3Bucket: v.GetString("archive.s3Bucket"),
			S3Prefix: v.GetString("archive.s3Prefix"),
			S3Region: v.GetString("archive.s3Region"),
			LocalDir: v.GetString("archive.localDir"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: sqlite at `dbPath`, debug off and a fixed secret.
func NewTestConfig(dbPath string) *Config {
	return &Config{
		AppName:   "Kipimo",
		Env:       "TEST",
		Build:     "test",
		TestMode:  true,
		SecretKey: "test-secret",
		Server: ServerConfig{
			Address:                   ":0",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
		},
		Database: DatabaseConfig{Engine: "sqlite", Path: dbPath},
		Auth:     AuthConfig{AdminEmail: "admin@test.cd"},
		Mail:     MailConfig{DefaultFromEmail: "Kipimo <noreply@test.cd>"},
		Metrics:  MetricsConfig{OnTargetThreshold: 0.95, OffTargetThreshold: 0.8},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (%s, build %s)", c.AppName, c.Env, c.Build)
}
