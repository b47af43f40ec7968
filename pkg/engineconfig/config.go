package engineconfig

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/dbcore/pkg/dberr"
	"github.com/cuemby/dbcore/pkg/log"
)

// TierThresholds describes the TPS predictor's classification boundaries.
// engine.New does not pass these values to the page store, whose
// predictor starts from its own built-in defaults (the same values as
// Default here).
type TierThresholds struct {
	HotAccessFreqPerMinute float64 `yaml:"hot_access_freq_per_minute"`
	HotRecencySeconds      int64   `yaml:"hot_recency_seconds"`
	WarmRecencySeconds     int64   `yaml:"warm_recency_seconds"`
}

// Config is the top-level configuration for an engine instance.
type Config struct {
	PageSize               int            `yaml:"page_size"`
	TierThresholds         TierThresholds `yaml:"tier_thresholds"`
	MigrationBatchSize     int            `yaml:"migration_batch_size"`
	MigrationQueueCapacity int            `yaml:"migration_queue_capacity"`
	ReadCacheSize          int            `yaml:"read_cache_size"`
	ColdStoragePath        string         `yaml:"cold_storage_path"` // empty: in-memory Cold tier
	CatalogDataDir         string         `yaml:"catalog_data_dir"`
	MaintenanceInterval    string         `yaml:"maintenance_interval"` // Go duration string, e.g. "30s"
	LogLevel               log.Level      `yaml:"log_level"`
	LogJSON                bool           `yaml:"log_json"`
	MetricsAddr            string         `yaml:"metrics_addr"`
}

// Default returns the configuration used when no file is supplied; Load
// also starts from it.
func Default() Config {
	return Config{
		PageSize: 8192,
		TierThresholds: TierThresholds{
			HotAccessFreqPerMinute: 1.0,
			HotRecencySeconds:      3600,
			WarmRecencySeconds:     86400,
		},
		MigrationBatchSize:     10,
		MigrationQueueCapacity: 1024,
		ReadCacheSize:          4096,
		CatalogDataDir:         "/var/lib/dbcore/catalog",
		MaintenanceInterval:    "30s",
		LogLevel:               log.InfoLevel,
		LogJSON:                true,
		MetricsAddr:            ":9090",
	}
}

// Load reads and parses a YAML configuration file, filling any field the
// document omits from Default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, dberr.New(dberr.IOError, "engineconfig.Load", err.Error())
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, dberr.Wrap("engineconfig.Load", err)
	}

	return cfg, nil
}
