package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Reconciler ReconcilerConfig `toml:"reconciler"`
	Clockify   ClockifyConfig   `toml:"clockify"`
	DevOps     DevOpsConfig     `toml:"devops"`
	Matcher    MatcherConfig    `toml:"matcher"`
	Report     ReportConfig     `toml:"report"`
	Storage    StorageConfig    `toml:"storage"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ReconcilerConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	Port        int    `toml:"port"`
}

type ClockifyConfig struct {
	APIKey      string `toml:"api_key"`
	WorkspaceID string `toml:"workspace_id"`
	BaseURL     string `toml:"base_url"`
	Timeout     int    `toml:"timeout"`
	MaxRetries  int    `toml:"max_retries"`
	PageSize    int    `toml:"page_size"`
}

type DevOpsConfig struct {
	Organization string `toml:"organization"`
	Project      string `toml:"project"`
	PAT          string `toml:"pat"`
	BaseURL      string `toml:"base_url"`
	APIVersion   string `toml:"api_version"`
	BatchSize    int    `toml:"batch_size"`
	Timeout      int    `toml:"timeout"`
	MaxRetries   int    `toml:"max_retries"`
}

type MatcherConfig struct {
	FuzzyEnabled   bool     `toml:"fuzzy_enabled"`
	FuzzyThreshold float64  `toml:"fuzzy_threshold"`
	MinWorkItemID  int      `toml:"min_work_item_id"`
	MaxWorkItemID  int      `toml:"max_work_item_id"`
	TypePreference []string `toml:"type_preference"`
	Workers        int      `toml:"workers"`
}

type ReportConfig struct {
	OutputDir        string   `toml:"output_dir"`
	Formats          []string `toml:"formats"`
	IncludeUnmatched bool     `toml:"include_unmatched"`
}

type StorageConfig struct {
	DatabasePath  string `toml:"database_path"`
	CacheTTLHours int    `toml:"cache_ttl_hours"`
	RetentionDays int    `toml:"retention_days"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Output     string `toml:"output"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
}

func DefaultConfig() *Config {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)
	execName := filepath.Base(execPath)
	execName = execName[:len(execName)-len(filepath.Ext(execName))]

	defaultDBPath := filepath.Join(execDir, "data", execName+".db")

	return &Config{
		Reconciler: ReconcilerConfig{
			Name:        execName,
			Environment: "development",
			Port:        8080,
		},
		Clockify: ClockifyConfig{
			BaseURL:    "https://api.clockify.me/api/v1",
			Timeout:    30,
			MaxRetries: 3,
			PageSize:   200,
		},
		DevOps: DevOpsConfig{
			BaseURL:    "https://dev.azure.com",
			APIVersion: "7.0",
			BatchSize:  200,
			Timeout:    30,
			MaxRetries: 3,
		},
		Matcher: MatcherConfig{
			FuzzyEnabled:   true,
			FuzzyThreshold: 0.8,
			MinWorkItemID:  1000,
			MaxWorkItemID:  999999,
			TypePreference: []string{"Bug", "Task", "User Story", "Feature", "Epic"},
			Workers:        4,
		},
		Report: ReportConfig{
			OutputDir:        filepath.Join(execDir, "reports"),
			Formats:          []string{"json", "html"},
			IncludeUnmatched: true,
		},
		Storage: StorageConfig{
			DatabasePath:  defaultDBPath,
			CacheTTLHours: 2,
			RetentionDays: 90,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "both",
			MaxSize:    100,
			MaxBackups: 3,
		},
	}
}

func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile == "" {
		// Auto-detect config file
		execPath, _ := os.Executable()
		execDir := filepath.Dir(execPath)
		execName := filepath.Base(execPath)
		execName = execName[:len(execName)-len(filepath.Ext(execName))]

		possiblePaths := []string{
			filepath.Join(execDir, execName+".toml"),
			filepath.Join(execDir, "config.toml"),
			"config.toml",
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			return config, nil
		}
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if apiKey := os.Getenv("CLOCKIFY_API_KEY"); apiKey != "" {
		config.Clockify.APIKey = apiKey
	}
	if workspace := os.Getenv("CLOCKIFY_WORKSPACE_ID"); workspace != "" {
		config.Clockify.WorkspaceID = workspace
	}
	if pat := os.Getenv("ADO_PAT"); pat != "" {
		config.DevOps.PAT = pat
	}
	if org := os.Getenv("ADO_ORGANIZATION"); org != "" {
		config.DevOps.Organization = org
	}
	if project := os.Getenv("ADO_PROJECT"); project != "" {
		config.DevOps.Project = project
	}

	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		config.Storage.DatabasePath = dbPath
	}
	if outputDir := os.Getenv("REPORT_OUTPUT_DIR"); outputDir != "" {
		config.Report.OutputDir = outputDir
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}
	if logOutput := os.Getenv("LOG_OUTPUT"); logOutput != "" {
		config.Logging.Output = logOutput
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if portNum, err := strconv.Atoi(port); err == nil {
			config.Reconciler.Port = portNum
		}
	}
}

func (c *Config) Validate() error {
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage database_path is required")
	}

	if c.Reconciler.Port <= 0 {
		c.Reconciler.Port = 8080
	}

	// Zero or negative page/batch sizes would stall the client paging loops
	if c.Clockify.PageSize <= 0 {
		return fmt.Errorf("clockify page_size must be positive, got %d", c.Clockify.PageSize)
	}
	if c.DevOps.BatchSize <= 0 {
		return fmt.Errorf("devops batch_size must be positive, got %d", c.DevOps.BatchSize)
	}

	if c.Matcher.FuzzyThreshold < 0 || c.Matcher.FuzzyThreshold > 1 {
		return fmt.Errorf("matcher fuzzy_threshold must be within [0, 1], got %v", c.Matcher.FuzzyThreshold)
	}
	if c.Matcher.MinWorkItemID < 1 {
		return fmt.Errorf("matcher min_work_item_id must be positive, got %d", c.Matcher.MinWorkItemID)
	}
	if c.Matcher.MaxWorkItemID < c.Matcher.MinWorkItemID {
		return fmt.Errorf("matcher max_work_item_id %d is below min_work_item_id %d",
			c.Matcher.MaxWorkItemID, c.Matcher.MinWorkItemID)
	}
	if len(c.Matcher.TypePreference) == 0 {
		return fmt.Errorf("matcher type_preference must list at least one work item type")
	}
	if c.Matcher.Workers <= 0 {
		c.Matcher.Workers = 4
	}

	validFormats := map[string]bool{"json": true, "csv": true, "html": true, "xlsx": true}
	for _, format := range c.Report.Formats {
		if !validFormats[format] {
			return fmt.Errorf("invalid report format: %s", format)
		}
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLogLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validOutputs := []string{"console", "file", "both"}
	validOutput := false
	for _, output := range validOutputs {
		if c.Logging.Output == output {
			validOutput = true
			break
		}
	}
	if !validOutput {
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Reconciler.Environment == "production"
}
