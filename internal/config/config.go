package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
)

// Config is the root configuration for wt, stored in ~/.wt/config.json.
// The file is JSONC: // and /* */ comments and trailing commas are allowed.
type Config struct {
	// DataDir holds the per-user monthly shift files.
	DataDir string `json:"data_dir"`
	// User is the default user name; the remembered session user applies
	// when empty.
	User     string         `json:"user"`
	Storage  StorageConfig  `json:"storage"`
	Export   ExportConfig   `json:"export"`
	OneDrive OneDriveConfig `json:"onedrive"`
	S3       S3Config       `json:"s3"`

	// Root is the directory containing the config file. Not serialised.
	Root string `json:"-"`
}

// StorageConfig selects where shift partitions are kept.
type StorageConfig struct {
	// Backend is "file" (one JSON file per user and month) or "sqlite".
	Backend    string `json:"backend"`
	SQLitePath string `json:"sqlite_path"`
}

// ExportConfig controls the spreadsheet export.
type ExportConfig struct {
	// Target is "dir", "s3" or "onedrive".
	Target     string `json:"target"`
	Dir        string `json:"dir"`
	Header     bool   `json:"header"`
	SheetName  string `json:"sheet_name"`
	TotalLabel string `json:"total_label"`
}

// OneDriveConfig holds Microsoft Graph settings for the OneDrive export target.
type OneDriveConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id"`
	// Folder is the OneDrive folder receiving exports.
	Folder string `json:"folder"`
	// LinkScope is "anonymous", "organization" or "none" for no share link.
	LinkScope string `json:"link_scope"`
}

// S3Config holds settings for the S3 export target.
type S3Config struct {
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	LinkTTL   string `json:"link_ttl"`
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	TargetDir      = "dir"
	TargetS3       = "s3"
	TargetOneDrive = "onedrive"

	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration. Replace with your own registered app ID for
	// organisational or production deployments.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultFolder is the OneDrive folder used when none is specified.
	DefaultFolder = "Work hours"
	// DefaultLinkScope makes OneDrive links readable without signing in.
	DefaultLinkScope = "anonymous"
	// DefaultSheetName and DefaultTotalLabel shape the exported workbook.
	DefaultSheetName  = "Work hours"
	DefaultTotalLabel = "Total hours"
)

// configTemplate is the annotated config written on first run.
const configTemplate = `// wt configuration – ~/.wt/config.json
//
// All settings are optional; the built-in defaults work out of the box and
// keep everything below ~/.wt. Environment variables (WT_USER, WT_DATA_DIR,
// WT_STORAGE_BACKEND, WT_EXPORT_TARGET, WT_EXPORT_DIR, WT_S3_*) override the
// values in this file; a .env file in the working directory is honoured too.
{
  // Directory holding one <user>_<MM-YYYY>.json file per user and month.
  // Default: ~/.wt/data
  "data_dir": "",

  // Default user. Leave empty and run "wt user <name>" instead.
  "user": "",

  "storage": {
    // "file" (default) or "sqlite".
    "backend": "file",
    // Database path for the sqlite backend. Default: ~/.wt/wt.db
    "sqlite_path": ""
  },

  "export": {
    // Where "wt export" delivers the workbook: "dir", "s3" or "onedrive".
    "target": "dir",
    // Output directory for the "dir" target. Default: ~/.wt/exports
    "dir": "",
    // Add a column-name row above the data rows.
    "header": false,
    "sheet_name": "Work hours",
    "total_label": "Total hours"
  },

  // ── Microsoft Graph / OneDrive export ───────────────────────────────────
  "onedrive": {
    // "common" supports personal Microsoft accounts and any organisation.
    "tenant_id": "common",
    // The built-in value is the public Azure CLI app – no app registration needed.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",
    "folder": "Work hours",
    // "anonymous", "organization", or "none" to print the item URL instead.
    "link_scope": "anonymous"
  },

  // ── S3 / MinIO export ───────────────────────────────────────────────────
  "s3": {
    "bucket": "",
    "prefix": "",
    "region": "",
    // Set for S3-compatible services, e.g. "http://127.0.0.1:9000".
    "endpoint": "",
    // Leave empty to use the default AWS credential chain.
    "access_key": "",
    "secret_key": "",
    // Lifetime of the presigned download link, e.g. "2h". Default: 24h
    "link_ttl": ""
  }
}
`

// DefaultPath returns the path to ~/.wt/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".wt", "config.json"), nil
}

// Default returns a Config with built-in defaults rooted at root.
func Default(root string) Config {
	cfg := Config{Root: root}
	cfg.applyDefaults()
	return cfg
}

// LoadDotEnv loads a .env file into the environment without overriding
// variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads the config file at path (DefaultPath when empty), creating it
// with annotated defaults on first run, then applies environment overrides.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	root := filepath.Dir(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		cfg := Default(root)
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return Default(root), fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return Default(root), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	cfg.Root = root

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	setDefault(&c.DataDir, filepath.Join(c.Root, "data"))
	setDefault(&c.Storage.Backend, BackendFile)
	setDefault(&c.Storage.SQLitePath, filepath.Join(c.Root, "wt.db"))
	setDefault(&c.Export.Target, TargetDir)
	setDefault(&c.Export.Dir, filepath.Join(c.Root, "exports"))
	setDefault(&c.Export.SheetName, DefaultSheetName)
	setDefault(&c.Export.TotalLabel, DefaultTotalLabel)
	setDefault(&c.OneDrive.TenantID, DefaultTenantID)
	setDefault(&c.OneDrive.ClientID, DefaultClientID)
	setDefault(&c.OneDrive.Folder, DefaultFolder)
	setDefault(&c.OneDrive.LinkScope, DefaultLinkScope)
}

func (c *Config) applyEnv() {
	overrideFromEnv(&c.User, "WT_USER")
	overrideFromEnv(&c.DataDir, "WT_DATA_DIR")
	overrideFromEnv(&c.Storage.Backend, "WT_STORAGE_BACKEND")
	overrideFromEnv(&c.Storage.SQLitePath, "WT_SQLITE_PATH")
	overrideFromEnv(&c.Export.Target, "WT_EXPORT_TARGET")
	overrideFromEnv(&c.Export.Dir, "WT_EXPORT_DIR")
	overrideFromEnv(&c.S3.Bucket, "WT_S3_BUCKET")
	overrideFromEnv(&c.S3.Region, "WT_S3_REGION")
	overrideFromEnv(&c.S3.Endpoint, "WT_S3_ENDPOINT")
	overrideFromEnv(&c.S3.AccessKey, "WT_S3_ACCESS_KEY")
	overrideFromEnv(&c.S3.SecretKey, "WT_S3_SECRET_KEY")
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

func overrideFromEnv(field *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*field = v
	}
}

// Validate checks enumerated settings and durations.
func (c Config) Validate() error {
	var problems []string
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be %q or %q", c.Storage.Backend, BackendFile, BackendSQLite))
	}
	switch c.Export.Target {
	case TargetDir, TargetS3, TargetOneDrive:
	default:
		problems = append(problems, fmt.Sprintf("invalid export target %q: must be one of %s, %s, %s", c.Export.Target, TargetDir, TargetS3, TargetOneDrive))
	}
	if _, err := c.S3.TTL(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// TTL parses LinkTTL. An empty value yields 0, which leaves the lifetime
// to the S3 target's default.
func (s S3Config) TTL() (time.Duration, error) {
	if strings.TrimSpace(s.LinkTTL) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.LinkTTL)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid s3 link_ttl %q: must be a positive duration like \"24h\"", s.LinkTTL)
	}
	return d, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
