package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the application configuration, loaded from config.toml.
type AppConfig struct {
	Paths    PathsConfig    `toml:"paths"`
	Business BusinessConfig `toml:"business"`
	Mail     MailConfig     `toml:"mail"`
	Slack    SlackConfig    `toml:"slack"`
	Server   ServerConfig   `toml:"server"`
	Schedule ScheduleConfig `toml:"schedule"`
}

// PathsConfig locates the input and output files.
type PathsConfig struct {
	MasterPath     string `toml:"master_path"`
	RulesPath      string `toml:"rules_path"`
	RuleSheet      string `toml:"rule_sheet"`
	TemplatePath   string `toml:"template_path"`
	RecipientsPath string `toml:"recipients_path"`
	OutputDir      string `toml:"output_dir"`
	DataDir        string `toml:"data_dir"`
}

// BusinessConfig holds the classification policy switches.
type BusinessConfig struct {
	// UnmappedPolicy: "strict" or "heuristic_fallback".
	UnmappedPolicy string `toml:"unmapped_policy"`
	// RTOCatchAll: "none" or "doctor_non_contactable".
	RTOCatchAll string `toml:"rto_catch_all"`
	// ZBMCodePrefix filters tracker rows to ZBM codes with this prefix.
	// Empty disables the filter.
	ZBMCodePrefix string `toml:"zbm_code_prefix"`
}

// MailConfig configures SMTP delivery of summary emails.
type MailConfig struct {
	Enabled  bool     `toml:"enabled"`
	Host     string   `toml:"host"`
	Port     int      `toml:"port"`
	Username string   `toml:"username"`
	Password string   `toml:"password"`
	From     string   `toml:"from"`
	Subject  string   `toml:"subject"`
	BCC      []string `toml:"bcc"`
}

// SlackConfig configures the ops channel notification.
type SlackConfig struct {
	Enabled bool   `toml:"enabled"`
	Token   string `toml:"token"`
	Channel string `toml:"channel"`
}

// ServerConfig configures serve mode.
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// ScheduleConfig configures the cron trigger in serve mode. Spec is a
// standard 5-field cron expression.
type ScheduleConfig struct {
	Enabled bool   `toml:"enabled"`
	Spec    string `toml:"spec"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Paths: PathsConfig{
			MasterPath:     "Sample Master Tracker.xlsx",
			RulesPath:      "logic.xlsx",
			RuleSheet:      "Sheet2",
			TemplatePath:   "zbm_summary.xlsx",
			RecipientsPath: "recipients.yaml",
			OutputDir:      "reports",
			DataDir:        "data",
		},
		Business: BusinessConfig{
			UnmappedPolicy: "strict",
			RTOCatchAll:    "none",
			ZBMCodePrefix:  "ZN",
		},
		Mail: MailConfig{
			Port:    587,
			Subject: "Sample Direct Dispatch",
		},
		Server: ServerConfig{
			Port: 20340,
		},
		Schedule: ScheduleConfig{
			Spec: "0 8 * * *",
		},
	}
}

// Load reads config.toml from the given path, falling back to defaults
// for anything unset. A missing file is not an error; a malformed one is.
func Load(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults backfills fields an explicit config file left empty.
func applyDefaults(cfg *AppConfig) {
	def := DefaultConfig()
	if cfg.Paths.RuleSheet == "" {
		cfg.Paths.RuleSheet = def.Paths.RuleSheet
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = def.Paths.OutputDir
	}
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = def.Paths.DataDir
	}
	if cfg.Business.UnmappedPolicy == "" {
		cfg.Business.UnmappedPolicy = def.Business.UnmappedPolicy
	}
	if cfg.Business.RTOCatchAll == "" {
		cfg.Business.RTOCatchAll = def.Business.RTOCatchAll
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = def.Mail.Port
	}
	if cfg.Mail.Subject == "" {
		cfg.Mail.Subject = def.Mail.Subject
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Schedule.Spec == "" {
		cfg.Schedule.Spec = def.Schedule.Spec
	}
}

// EnsureDirs creates the output and data directories.
func (c *AppConfig) EnsureDirs() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.DataDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// DBPath is the run-log database location under the data directory.
func (c *AppConfig) DBPath() string {
	return filepath.Join(c.Paths.DataDir, "sampletrack.db")
}
