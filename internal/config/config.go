// Package config loads the server's settings from environment variables,
// applying defaults and validating everything on startup so a bad setting
// fails fast instead of surfacing mid-request.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/JonMunkholm/csvlens/internal/core"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Load     LoadConfig
	Store    StoreConfig
	UI       UIConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including in-flight loads.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the per-request middleware timeout.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig limits what a single upload may cost.
type UploadConfig struct {
	// MaxFileSize accepts plain bytes or a unit suffix: 512KB, 100MB, 1GB.
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600" unit:"bytes"`

	MaxConcurrent int           `env:"UPLOAD_MAX_CONCURRENT" default:"5"`
	MaxWaitTime   time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// MaxRows caps data rows per file; 0 means no limit.
	MaxRows int `env:"UPLOAD_MAX_ROWS" default:"0"`
}

// LoadConfig controls how file contents become typed columns.
type LoadConfig struct {
	// LenientNumbers treats "$1,200" and "(35)" as numbers.
	LenientNumbers bool `env:"LOAD_LENIENT_NUMBERS" default:"false"`

	// Sheet names the worksheet read from Excel uploads. Empty reads the
	// first sheet.
	Sheet string `env:"LOAD_SHEET"`
}

// StoreConfig bounds the in-memory dataset store.
type StoreConfig struct {
	TTL           time.Duration `env:"STORE_TTL" default:"1h"`
	MaxDatasets   int           `env:"STORE_MAX_DATASETS" default:"100"`
	SweepInterval time.Duration `env:"STORE_SWEEP_INTERVAL" default:"5m"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// MaxDisplayRows is how many result rows a page renders. Export is not limited.
	MaxDisplayRows int `env:"UI_MAX_DISPLAY_ROWS" default:"1000"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For and X-Real-IP headers are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects the /api routes with X-API-Key.
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`  // debug, info, warn, error
	Format string `env:"LOG_FORMAT" default:"text"` // text or json
}

// ServiceConfig maps the upload, load and store settings onto core.
func (c *Config) ServiceConfig() core.ServiceConfig {
	return core.ServiceConfig{
		MaxFileSize:    c.Upload.MaxFileSize,
		MaxConcurrent:  c.Upload.MaxConcurrent,
		MaxWait:        c.Upload.MaxWaitTime,
		MaxRows:        c.Upload.MaxRows,
		LenientNumbers: c.Load.LenientNumbers,
		Sheet:          c.Load.Sheet,
		StoreTTL:       c.Store.TTL,
		MaxDatasets:    c.Store.MaxDatasets,
		SweepInterval:  c.Store.SweepInterval,
	}
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TrustedNets parses TrustedProxies. Invalid entries are reported by Validate
// and skipped here.
func (c *SecurityConfig) TrustedNets() []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		if n, err := parseTrustedProxy(entry); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

// parseTrustedProxy accepts a CIDR or a bare IP, which is treated as a
// single-host network.
func parseTrustedProxy(entry string) (*net.IPNet, error) {
	if _, n, err := net.ParseCIDR(entry); err == nil {
		return n, nil
	}
	ip := net.ParseIP(entry)
	if ip == nil {
		return nil, fmt.Errorf("invalid trusted proxy %q", entry)
	}
	if v4 := ip.To4(); v4 != nil {
		return &net.IPNet{IP: v4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}
