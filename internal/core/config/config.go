package config

import (
	"os"
	"strings"
	"time"

	apperrors "exportlint/internal/core/errors"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int             `toml:"version"`
	Paths         Paths           `toml:"paths"`
	Exclude       Exclude         `toml:"exclude"`
	Naming        Naming          `toml:"naming"`
	Rules         map[string]Rule `toml:"rules"`
	AutoFix       AutoFix         `toml:"autofix"`
	Report        Report          `toml:"report"`
	Accessibility Accessibility   `toml:"accessibility"`
	Watch         Watch           `toml:"watch"`
}

type Paths struct {
	ProjectRoot string   `toml:"project_root"`
	Include     []string `toml:"include"`
	OutputDir   string   `toml:"output_dir"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// Naming holds one pattern per exported kind, plus a separate pattern for
// default exports. Empty entries fall back to the built-in defaults.
type Naming struct {
	Interface     string `toml:"interface"`
	Type          string `toml:"type"`
	Class         string `toml:"class"`
	Function      string `toml:"function"`
	Constant      string `toml:"constant"`
	Component     string `toml:"component"`
	DefaultExport string `toml:"default_export"`
}

type Rule struct {
	Enabled  *bool                  `toml:"enabled"`
	Severity string                 `toml:"severity"`
	Options  map[string]interface{} `toml:"options"`
}

type AutoFix struct {
	Enabled      bool   `toml:"enabled"`
	CreateBackup bool   `toml:"create_backup"`
	MaxRiskLevel string `toml:"max_risk_level"`
	BackupDir    string `toml:"backup_dir"`
}

type Report struct {
	Format     string   `toml:"format"`
	GroupBy    string   `toml:"group_by"`
	SortBy     string   `toml:"sort_by"`
	Severities []string `toml:"severities"`
	OutputPath string   `toml:"output_path"`
}

type Accessibility struct {
	InternalPaths []string `toml:"internal_paths"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

// Rule names understood by the analyzer. Unknown names in the config are a
// validation error rather than being silently ignored.
const (
	RuleNamingConvention   = "naming-convention"
	RuleDuplicateExports   = "duplicate-exports"
	RuleDefaultExport      = "default-export"
	RuleNoDefaultExport    = "no-default-export"
	RuleNoNamespaceExport  = "no-namespace-export"
	RuleNoReexport         = "no-reexport"
	RuleImportMismatch     = "import-mismatch"
	RuleCircularDependency = "circular-dependency"
	RuleAccessibility      = "accessibility"
)

var knownRules = map[string]bool{
	RuleNamingConvention:   true,
	RuleDuplicateExports:   true,
	RuleDefaultExport:      true,
	RuleNoDefaultExport:    true,
	RuleNoNamespaceExport:  true,
	RuleNoReexport:         true,
	RuleImportMismatch:     true,
	RuleCircularDependency: true,
	RuleAccessibility:      true,
}

// Disabled-by-default house-style rules; everything else defaults to enabled.
var defaultDisabledRules = map[string]bool{
	RuleNoDefaultExport:   true,
	RuleNoNamespaceExport: true,
	RuleNoReexport:        true,
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			wrapped := apperrors.Wrap(err, apperrors.CodeNotFound, "config file not found")
			return nil, apperrors.AddContext(wrapped, apperrors.CtxPath, path)
		}
		return nil, err
	}
	return Parse(string(data))
}

func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration for a project root, already
// validated. Used when no config file is present.
func Default(projectRoot string) *Config {
	cfg := &Config{Paths: Paths{ProjectRoot: projectRoot}}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.ProjectRoot) == "" {
		cfg.Paths.ProjectRoot = "."
	}
	if len(cfg.Paths.Include) == 0 {
		cfg.Paths.Include = []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx"}
	}
	if strings.TrimSpace(cfg.Paths.OutputDir) == "" {
		cfg.Paths.OutputDir = "."
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{"node_modules", ".git", "dist", "build", "coverage"}
	}

	if strings.TrimSpace(cfg.Naming.Interface) == "" {
		cfg.Naming.Interface = `^I?[A-Z][a-zA-Z0-9]*$`
	}
	if strings.TrimSpace(cfg.Naming.Type) == "" {
		cfg.Naming.Type = `^[A-Z][a-zA-Z0-9]*$`
	}
	if strings.TrimSpace(cfg.Naming.Class) == "" {
		cfg.Naming.Class = `^[A-Z][a-zA-Z0-9]*$`
	}
	if strings.TrimSpace(cfg.Naming.Function) == "" {
		cfg.Naming.Function = `^[a-z][a-zA-Z0-9]*$`
	}
	if strings.TrimSpace(cfg.Naming.Constant) == "" {
		cfg.Naming.Constant = `^[A-Z][A-Z0-9_]*$`
	}
	if strings.TrimSpace(cfg.Naming.Component) == "" {
		cfg.Naming.Component = `^[A-Z][a-zA-Z0-9]*$`
	}
	if strings.TrimSpace(cfg.Naming.DefaultExport) == "" {
		cfg.Naming.DefaultExport = `^[A-Za-z][a-zA-Z0-9]*$`
	}

	if cfg.Rules == nil {
		cfg.Rules = make(map[string]Rule)
	}

	if strings.TrimSpace(cfg.AutoFix.MaxRiskLevel) == "" {
		cfg.AutoFix.MaxRiskLevel = "medium"
	}
	if strings.TrimSpace(cfg.AutoFix.BackupDir) == "" {
		cfg.AutoFix.BackupDir = ".exportlint-backups"
	}

	if strings.TrimSpace(cfg.Report.Format) == "" {
		cfg.Report.Format = "console"
	}
	if strings.TrimSpace(cfg.Report.GroupBy) == "" {
		cfg.Report.GroupBy = "file"
	}
	if strings.TrimSpace(cfg.Report.SortBy) == "" {
		cfg.Report.SortBy = "severity"
	}
	if len(cfg.Report.Severities) == 0 {
		cfg.Report.Severities = []string{"error", "warning", "info"}
	}

	if len(cfg.Accessibility.InternalPaths) == 0 {
		cfg.Accessibility.InternalPaths = []string{"**/internal/**"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
}

// RuleEnabled reports whether a rule runs. Rules not mentioned in the config
// use their built-in default.
func (c *Config) RuleEnabled(name string) bool {
	if rule, ok := c.Rules[name]; ok && rule.Enabled != nil {
		return *rule.Enabled
	}
	return !defaultDisabledRules[name]
}

// RuleSeverity returns the configured severity for a rule, or fallback.
func (c *Config) RuleSeverity(name, fallback string) string {
	if rule, ok := c.Rules[name]; ok && strings.TrimSpace(rule.Severity) != "" {
		return rule.Severity
	}
	return fallback
}

// RuleStrings reads a string-list option off a rule, tolerating the
// []interface{} shape TOML decoding produces.
func (c *Config) RuleStrings(name, option string) []string {
	rule, ok := c.Rules[name]
	if !ok || rule.Options == nil {
		return nil
	}
	raw, ok := rule.Options[option]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// NamingPattern returns the regex source for an exported kind.
func (c *Config) NamingPattern(kind string) string {
	switch kind {
	case "interface":
		return c.Naming.Interface
	case "type":
		return c.Naming.Type
	case "class":
		return c.Naming.Class
	case "function":
		return c.Naming.Function
	case "constant":
		return c.Naming.Constant
	case "component":
		return c.Naming.Component
	}
	return ""
}
