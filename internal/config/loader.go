package config

import (
	"fmt"
	"net/netip"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads every section from the environment, fills unset values from
// the default tags and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	for _, section := range cfg.sections() {
		if err := loadSection(section); err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) sections() []any {
	return []any{&c.Server, &c.Storage, &c.Import, &c.Rate, &c.Logging}
}

// loadSection sets each tagged field of the struct section points to.
// An `envAlt` tag names a fallback variable.
func loadSection(section any) error {
	v := reflect.ValueOf(section).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag
		name := tag.Get("env")
		if name == "" {
			continue
		}
		raw := envValue(name, tag.Get("envAlt"))
		if raw == "" {
			raw = tag.Get("default")
		}
		if raw == "" {
			continue
		}
		if err := parseInto(v.Field(i).Addr().Interface(), raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, raw, err)
		}
	}
	return nil
}

func envValue(name, alt string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" || alt == "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(alt))
}

// parseInto covers the field types the sections use.
func parseInto(dst any, raw string) error {
	var err error
	switch p := dst.(type) {
	case *string:
		*p = raw
	case *int:
		*p, err = strconv.Atoi(raw)
	case *int64:
		*p, err = strconv.ParseInt(raw, 10, 64)
	case *bool:
		*p, err = strconv.ParseBool(raw)
	case *time.Duration:
		*p, err = time.ParseDuration(raw)
	case *[]string:
		*p = splitList(raw)
	default:
		return fmt.Errorf("unsupported field type %T", dst)
	}
	return err
}

// splitList splits a comma-separated list and drops empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	problems = append(problems, c.Server.problems()...)
	problems = append(problems, c.Storage.problems()...)
	problems = append(problems, c.Import.problems()...)
	problems = append(problems, c.Rate.problems()...)
	problems = append(problems, c.Logging.problems()...)
	if len(problems) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func (s *ServerConfig) problems() []string {
	var out []string
	if s.Port <= 0 || s.Port > 65535 {
		out = append(out, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", s.Port))
	}
	if s.ReadTimeout < 0 {
		out = append(out, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if s.ShutdownTimeout <= 0 {
		out = append(out, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	for _, p := range s.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			out = append(out, fmt.Sprintf("SERVER_TRUSTED_PROXIES entry %q is not an IP or CIDR", p))
		}
	}
	return out
}

func (s *StorageConfig) problems() []string {
	var out []string
	switch strings.ToLower(s.Driver) {
	case DriverFile:
		if s.Path == "" {
			out = append(out, "STORAGE_PATH is required for the file driver")
		}
	case DriverPostgres:
		if s.DatabaseURL == "" {
			out = append(out, "DATABASE_URL is required for the postgres driver")
		}
		if s.MinConns < 0 || s.MaxConns <= 0 || s.MaxConns < s.MinConns {
			out = append(out, fmt.Sprintf("DB_MAX_CONNS (%d) must be positive and >= DB_MIN_CONNS (%d)",
				s.MaxConns, s.MinConns))
		}
	case DriverMemory:
	default:
		out = append(out, fmt.Sprintf("STORAGE_DRIVER (%q) must be one of: file, postgres, memory", s.Driver))
	}
	if s.SaveTimeout <= 0 {
		out = append(out, "STORAGE_SAVE_TIMEOUT must be positive")
	}
	return out
}

func (i *ImportConfig) problems() []string {
	var out []string
	if i.MaxFileSize <= 0 {
		out = append(out, "IMPORT_MAX_FILE_SIZE must be positive")
	}
	if i.MaxConcurrent <= 0 {
		out = append(out, "IMPORT_MAX_CONCURRENT must be positive")
	}
	if i.MaxWaitTime <= 0 || i.Timeout <= 0 {
		out = append(out, "IMPORT_MAX_WAIT_TIME and IMPORT_TIMEOUT must be positive")
	}
	return out
}

func (r *RateLimitConfig) problems() []string {
	if r.Enabled && r.RequestsPerMinute <= 0 {
		return []string{"RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled"}
	}
	return nil
}

func (l *LoggingConfig) problems() []string {
	var out []string
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		out = append(out, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level))
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		out = append(out, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", l.Format))
	}
	return out
}

// String summarizes the effective settings for a startup log line. The
// database URL is masked.
func (c *Config) String() string {
	dbURL := ""
	if c.Storage.DatabaseURL != "" {
		dbURL = "[MASKED]"
	}
	return fmt.Sprintf("listen=%s storage=%s path=%q database_url=%s import_max=%d import_slots=%d rate=%v/%d log=%s/%s",
		c.Server.Addr(), c.Storage.Driver, c.Storage.Path, dbURL,
		c.Import.MaxFileSize, c.Import.MaxConcurrent,
		c.Rate.Enabled, c.Rate.RequestsPerMinute,
		c.Logging.Level, c.Logging.Format)
}
