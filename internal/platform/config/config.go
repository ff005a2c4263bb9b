package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	FileName     = "kreosurvey.yaml"
	EnvFileName  = ".env"
	stateDirName = ".kreosurvey"

	DefaultAutosaveDelay = 10 * time.Second
	DefaultTokenTTL      = 12 * time.Hour
	DefaultGRPCAddr      = "127.0.0.1:7410"
	DefaultHTTPAddr      = "127.0.0.1:7411"
)

type Admin struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
}

type Config struct {
	DataDir       string
	StateDir      string
	DBPath        string
	LogPath       string
	LogLevel      string
	AutosaveDelay time.Duration
	RemoteAddr    string
	GRPCAddr      string
	HTTPAddr      string
	JWTSecret     string
	TokenTTL      time.Duration
	Admins        []Admin
	AllowedEmails []string
	CORSOrigins   []string
}

type fileConfig struct {
	LogLevel      string   `yaml:"log_level"`
	AutosaveDelay string   `yaml:"autosave_delay"`
	RemoteAddr    string   `yaml:"remote_addr"`
	GRPCAddr      string   `yaml:"grpc_addr"`
	HTTPAddr      string   `yaml:"http_addr"`
	JWTSecret     string   `yaml:"jwt_secret"`
	TokenTTL      string   `yaml:"token_ttl"`
	Admins        []Admin  `yaml:"admins"`
	AllowedEmails []string `yaml:"allowed_emails"`
	CORSOrigins   []string `yaml:"cors_origins"`
}

// New resolves configuration for dataDir. Later sources win: defaults,
// kreosurvey.yaml, .env, then KREO_* process environment.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	stateDir := filepath.Join(dataDir, stateDirName)
	cfg := Config{
		DataDir:       dataDir,
		StateDir:      stateDir,
		DBPath:        filepath.Join(stateDir, "responses.db"),
		LogPath:       filepath.Join(stateDir, "kreosurvey.log"),
		LogLevel:      "info",
		AutosaveDelay: DefaultAutosaveDelay,
		GRPCAddr:      DefaultGRPCAddr,
		HTTPAddr:      DefaultHTTPAddr,
		TokenTTL:      DefaultTokenTTL,
	}

	if err := cfg.applyFile(filepath.Join(dataDir, FileName)); err != nil {
		return Config{}, err
	}

	env, err := readEnv(filepath.Join(dataDir, EnvFileName))
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}

	if len(cfg.AllowedEmails) == 0 {
		for _, admin := range cfg.Admins {
			cfg.AllowedEmails = append(cfg.AllowedEmails, admin.Email)
		}
	}
	return cfg, cfg.validate()
}

func (c *Config) applyFile(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fc := fileConfig{}
	if err := yaml.Unmarshal(payload, &fc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.AutosaveDelay != "" {
		d, err := time.ParseDuration(fc.AutosaveDelay)
		if err != nil {
			return fmt.Errorf("autosave_delay: %w", err)
		}
		c.AutosaveDelay = d
	}
	if fc.TokenTTL != "" {
		d, err := time.ParseDuration(fc.TokenTTL)
		if err != nil {
			return fmt.Errorf("token_ttl: %w", err)
		}
		c.TokenTTL = d
	}
	if fc.RemoteAddr != "" {
		c.RemoteAddr = fc.RemoteAddr
	}
	if fc.GRPCAddr != "" {
		c.GRPCAddr = fc.GRPCAddr
	}
	if fc.HTTPAddr != "" {
		c.HTTPAddr = fc.HTTPAddr
	}
	if fc.JWTSecret != "" {
		c.JWTSecret = fc.JWTSecret
	}
	if len(fc.Admins) > 0 {
		c.Admins = fc.Admins
	}
	if len(fc.AllowedEmails) > 0 {
		c.AllowedEmails = fc.AllowedEmails
	}
	if len(fc.CORSOrigins) > 0 {
		c.CORSOrigins = fc.CORSOrigins
	}
	return nil
}

// readEnv merges the optional .env file under the process environment.
func readEnv(path string) (map[string]string, error) {
	env := map[string]string{}
	fromFile, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	for k, v := range fromFile {
		env[k] = v
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, "KREO_") {
			env[k] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	if v := env["KREO_LOG_LEVEL"]; v != "" {
		c.LogLevel = v
	}
	if v := env["KREO_AUTOSAVE_DELAY"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("KREO_AUTOSAVE_DELAY: %w", err)
		}
		c.AutosaveDelay = d
	}
	if v := env["KREO_TOKEN_TTL"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("KREO_TOKEN_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	if v := env["KREO_REMOTE_ADDR"]; v != "" {
		c.RemoteAddr = v
	}
	if v := env["KREO_GRPC_ADDR"]; v != "" {
		c.GRPCAddr = v
	}
	if v := env["KREO_HTTP_ADDR"]; v != "" {
		c.HTTPAddr = v
	}
	if v := env["KREO_JWT_SECRET"]; v != "" {
		c.JWTSecret = v
	}
	if v := env["KREO_ADMINS"]; v != "" {
		admins, err := parseAdmins(v)
		if err != nil {
			return err
		}
		c.Admins = admins
	}
	if v := env["KREO_ALLOWED_EMAILS"]; v != "" {
		c.AllowedEmails = splitList(v)
	}
	if v := env["KREO_CORS_ORIGINS"]; v != "" {
		c.CORSOrigins = splitList(v)
	}
	return nil
}

// parseAdmins reads "email=bcrypt-hash" pairs separated by commas.
func parseAdmins(raw string) ([]Admin, error) {
	var admins []Admin
	for _, pair := range splitList(raw) {
		email, hash, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(email) == "" || strings.TrimSpace(hash) == "" {
			return nil, fmt.Errorf("KREO_ADMINS: expected email=hash, got %q", pair)
		}
		admins = append(admins, Admin{Email: strings.TrimSpace(email), PasswordHash: strings.TrimSpace(hash)})
	}
	return admins, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) validate() error {
	if c.AutosaveDelay <= 0 {
		return fmt.Errorf("autosave delay must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	for _, admin := range c.Admins {
		if !strings.Contains(admin.Email, "@") {
			return fmt.Errorf("admin email %q is invalid", admin.Email)
		}
	}
	return nil
}
