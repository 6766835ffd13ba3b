package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration. Every collaborator (stores,
// mail transport, broker) gets its own sub-struct so wiring code can pass
// only what a component needs.
type Server struct {
	Addr           string
	Env            string
	LogLevel       string
	ClientOrigin   string
	RequestTimeout time.Duration
	// TrustedProxies are the peers allowed to set X-Forwarded-For. Empty
	// means the TCP peer is the client.
	TrustedProxies []netip.Prefix

	Leads     LeadConfig
	Postgres  PostgresConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Mail      MailConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
	Projects  ProjectConfig
}

// LeadStoreKind selects the lead persistence backend.
type LeadStoreKind string

const (
	LeadStoreMemory   LeadStoreKind = "memory"
	LeadStoreFile     LeadStoreKind = "file"
	LeadStoreSQLite   LeadStoreKind = "sqlite"
	LeadStorePostgres LeadStoreKind = "postgres"
)

// NotifyMode selects how new leads reach the business owner.
type NotifyMode string

const (
	NotifySync  NotifyMode = "sync"
	NotifyAsync NotifyMode = "async"
	NotifyOff   NotifyMode = "off"
)

type LeadConfig struct {
	Store       LeadStoreKind
	File        string
	SQLitePath  string
	NotifyMode  NotifyMode
	QueueSize   int
	DrainWindow time.Duration
}

type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// RedisConfig holds connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers        []string
	LeadTopic      string
	PublishTimeout time.Duration
}

// MailConfig configures the SMTP notifier. Host and credentials default to
// Gmail app passwords, matching the original deployment.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	To       string
	FromName string
	Timeout  time.Duration
}

// Enabled reports whether enough settings are present to send mail.
func (m MailConfig) Enabled() bool {
	return m.Username != "" && m.Password != ""
}

type AdminConfig struct {
	JWTSecret  string
	APIKeyHash string
	Issuer     string
	TokenTTL   time.Duration
}

type RateLimitConfig struct {
	LeadsPerWindow int
	Window         time.Duration
}

type ProjectConfig struct {
	CacheTTL time.Duration
	SeedFile string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []string
	durationVar := func(key string, def time.Duration) time.Duration {
		d, err := parseDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return d
	}
	intVar := func(key string, def int) int {
		n, err := parseInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return n
	}

	trustedProxies, err := parsePrefixes(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		errs = append(errs, err.Error())
	}

	smtpUser := firstNonEmpty(os.Getenv("SMTP_USER"), os.Getenv("GMAIL_USER"))

	cfg := Server{
		Addr:           getEnv("LANDING_ADDR", ":5000"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		RequestTimeout: durationVar("HTTP_REQUEST_TIMEOUT", 30*time.Second),
		TrustedProxies: trustedProxies,
		Leads: LeadConfig{
			Store:       LeadStoreKind(getEnv("LEAD_STORE", string(LeadStoreFile))),
			File:        getEnv("LEADS_FILE", "leads.json"),
			SQLitePath:  getEnv("SQLITE_PATH", "leads.db"),
			NotifyMode:  NotifyMode(getEnv("LEAD_NOTIFY_MODE", string(NotifySync))),
			QueueSize:   intVar("LEAD_NOTIFY_QUEUE", 64),
			DrainWindow: durationVar("LEAD_NOTIFY_DRAIN", 10*time.Second),
		},
		Postgres: PostgresConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: intVar("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: intVar("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Mongo: MongoConfig{
			URI:        os.Getenv("MONGO_URI"),
			Database:   getEnv("MONGO_DATABASE", "landing"),
			Collection: getEnv("MONGO_PROJECTS_COLLECTION", "projects"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intVar("REDIS_POOL_SIZE", 10),
			MinIdleConns: intVar("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationVar("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationVar("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationVar("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:        splitList(os.Getenv("KAFKA_BROKERS")),
			LeadTopic:      getEnv("KAFKA_LEAD_TOPIC", "landing.leads.captured"),
			PublishTimeout: durationVar("KAFKA_PUBLISH_TIMEOUT", 2*time.Second),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     intVar("SMTP_PORT", 587),
			Username: smtpUser,
			Password: firstNonEmpty(os.Getenv("SMTP_PASSWORD"), os.Getenv("GMAIL_APP_PASSWORD")),
			To:       firstNonEmpty(os.Getenv("LEADS_TO_EMAIL"), smtpUser),
			FromName: getEnv("MAIL_FROM_NAME", "W.B Real Estate Consulting"),
			Timeout:  durationVar("MAIL_TIMEOUT", 15*time.Second),
		},
		Admin: AdminConfig{
			JWTSecret:  os.Getenv("ADMIN_JWT_SECRET"),
			APIKeyHash: os.Getenv("ADMIN_API_KEY_HASH"),
			Issuer:     getEnv("ADMIN_JWT_ISSUER", "landing"),
			TokenTTL:   durationVar("ADMIN_TOKEN_TTL", 12*time.Hour),
		},
		RateLimit: RateLimitConfig{
			LeadsPerWindow: intVar("RATE_LIMIT_LEADS", 5),
			Window:         durationVar("RATE_LIMIT_WINDOW", time.Minute),
		},
		Projects: ProjectConfig{
			CacheTTL: durationVar("PROJECT_CACHE_TTL", time.Minute),
			SeedFile: os.Getenv("PROJECT_SEED_FILE"),
		},
	}

	if err := cfg.validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return Server{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// IsProduction reports whether ENV=production.
func (s Server) IsProduction() bool {
	return s.Env == "production"
}

func (s Server) validate() error {
	switch s.Leads.Store {
	case LeadStoreMemory, LeadStoreFile, LeadStoreSQLite:
	case LeadStorePostgres:
		if s.Postgres.URL == "" {
			return fmt.Errorf("LEAD_STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown LEAD_STORE %q", s.Leads.Store)
	}
	switch s.Leads.NotifyMode {
	case NotifySync, NotifyAsync, NotifyOff:
	default:
		return fmt.Errorf("unknown LEAD_NOTIFY_MODE %q", s.Leads.NotifyMode)
	}
	if s.Leads.NotifyMode == NotifySync && s.RequestTimeout > 0 && s.Mail.Timeout >= s.RequestTimeout {
		return fmt.Errorf("MAIL_TIMEOUT must be shorter than HTTP_REQUEST_TIMEOUT in sync notify mode")
	}
	if s.RateLimit.LeadsPerWindow < 0 {
		return fmt.Errorf("RATE_LIMIT_LEADS must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePrefixes reads a comma separated list of CIDRs or bare addresses.
func parsePrefixes(raw string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range splitList(raw) {
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
