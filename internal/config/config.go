package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sigreer/pal/internal/cache"
	"github.com/sigreer/pal/internal/lvm"
)

type Config struct {
	Paths     Paths     `yaml:"paths"`
	LVM       LVM       `yaml:"lvm"`
	Cache     Cache     `yaml:"cache"`
	Inventory Inventory `yaml:"inventory"`
	Log       Log       `yaml:"log"`
}

type Paths struct {
	DevRoot    string `yaml:"dev_root"`
	SysBlock   string `yaml:"sys_block"`
	MountTable string `yaml:"mount_table"`
	LvmTab     string `yaml:"lvmtab"`
}

type LVM struct {
	// LegacySysfs marks systems whose sysfs LVM slave information is incomplete
	LegacySysfs bool `yaml:"legacy_sysfs"`
}

type Cache struct {
	SlavesTTL time.Duration `yaml:"slaves_ttl"`
}

type Inventory struct {
	DBPath        string `yaml:"db_path"`
	RetentionDays int    `yaml:"retention_days"`
}

type Log struct {
	Level string `yaml:"level"`
}

// defaultConfig matches a stock Linux host
var defaultConfig = Config{
	Paths: Paths{
		DevRoot:    lvm.DefaultDevRoot,
		SysBlock:   lvm.DefaultSysBlock,
		MountTable: "/proc/mounts",
		LvmTab:     lvm.DefaultLvmTabPath,
	},
	Cache:     Cache{SlavesTTL: cache.TTLSlaves},
	Inventory: Inventory{DBPath: "/var/lib/pal/inventory.db", RetentionDays: 30},
	Log:       Log{Level: "info"},
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := defaultConfig
	return &cfg
}

// Load reads path, or the first existing default location when path is empty.
// Missing fields take defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		candidates := []string{
			"/etc/pal/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/pal/config.yaml"),
			"config.yaml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Paths.DevRoot == "" {
		c.Paths.DevRoot = defaultConfig.Paths.DevRoot
	}
	if c.Paths.SysBlock == "" {
		c.Paths.SysBlock = defaultConfig.Paths.SysBlock
	}
	if c.Paths.MountTable == "" {
		c.Paths.MountTable = defaultConfig.Paths.MountTable
	}
	if c.Paths.LvmTab == "" {
		c.Paths.LvmTab = defaultConfig.Paths.LvmTab
	}
	if c.Cache.SlavesTTL <= 0 {
		c.Cache.SlavesTTL = defaultConfig.Cache.SlavesTTL
	}
	if c.Inventory.DBPath == "" {
		c.Inventory.DBPath = defaultConfig.Inventory.DBPath
	}
	if c.Inventory.RetentionDays <= 0 {
		c.Inventory.RetentionDays = defaultConfig.Inventory.RetentionDays
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultConfig.Log.Level
	}
}

// LogLevel returns the configured slog level
func (c *Config) LogLevel() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

// ResolverOptions returns resolver options for these paths
func (c *Config) ResolverOptions(logger *slog.Logger, obs lvm.Observer) lvm.Options {
	return lvm.Options{
		DevRoot:     c.Paths.DevRoot,
		SysBlock:    c.Paths.SysBlock,
		LegacySysfs: c.LVM.LegacySysfs,
		Logger:      logger,
		Observer:    obs,
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
