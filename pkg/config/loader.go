package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".cif"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for cif settings.
const envPrefix = "CIF"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("signals.diff_size.medium", DefaultDiffSizeMedium)
	viperCfg.SetDefault("signals.diff_size.large", DefaultDiffSizeLarge)
	viperCfg.SetDefault("signals.diff_size.huge", DefaultDiffSizeHuge)
	viperCfg.SetDefault("signals.file_count.medium", DefaultFileCountMedium)
	viperCfg.SetDefault("signals.file_count.large", DefaultFileCountLarge)
	viperCfg.SetDefault("signals.file_count.huge", DefaultFileCountHuge)
	viperCfg.SetDefault("signals.critical_areas", DefaultCriticalAreas())
	viperCfg.SetDefault("signals.coverage_tolerance", DefaultCoverageTolerance)
	viperCfg.SetDefault("signals.dependency_manifests", DefaultDependencyManifests())

	viperCfg.SetDefault("rules.order", []string{})

	viperCfg.SetDefault("rules.diff_size.enabled", true)
	viperCfg.SetDefault("rules.diff_size.severity.small", DefaultDiffSizeSeveritySmall)
	viperCfg.SetDefault("rules.diff_size.severity.medium", DefaultDiffSizeSeverityMedium)
	viperCfg.SetDefault("rules.diff_size.severity.large", DefaultDiffSizeSeverityLarge)
	viperCfg.SetDefault("rules.diff_size.severity.huge", DefaultDiffSizeSeverityHuge)

	viperCfg.SetDefault("rules.file_count.enabled", true)
	viperCfg.SetDefault("rules.file_count.severity.small", DefaultFileCountSeveritySmall)
	viperCfg.SetDefault("rules.file_count.severity.medium", DefaultFileCountSeverityMedium)
	viperCfg.SetDefault("rules.file_count.severity.large", DefaultFileCountSeverityLarge)
	viperCfg.SetDefault("rules.file_count.severity.huge", DefaultFileCountSeverityHuge)

	viperCfg.SetDefault("rules.critical_area.enabled", true)
	viperCfg.SetDefault("rules.critical_area.severity", DefaultCriticalAreaSeverity)
	viperCfg.SetDefault("rules.coverage_regression.enabled", true)
	viperCfg.SetDefault("rules.coverage_regression.severity", DefaultCoverageSeverity)
	viperCfg.SetDefault("rules.dependency_change.enabled", true)
	viperCfg.SetDefault("rules.dependency_change.severity", DefaultDependencySeverity)
	viperCfg.SetDefault("rules.breaking_change.enabled", true)
	viperCfg.SetDefault("rules.breaking_change.severity", DefaultBreakingSeverity)
	viperCfg.SetDefault("rules.breaking_change.metadata_key", DefaultBreakingMetadataKey)
	viperCfg.SetDefault("rules.missing_tests.enabled", DefaultMissingTestsEnabled)
	viperCfg.SetDefault("rules.missing_tests.severity", DefaultMissingTestsSeverity)

	viperCfg.SetDefault("aggregation.policy", DefaultPolicy)

	viperCfg.SetDefault("classification", defaultClassificationMaps())

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)
}

// defaultClassificationMaps renders the default table in the generic form
// viper stores for YAML lists.
func defaultClassificationMaps() []map[string]any {
	bands := DefaultClassification()
	out := make([]map[string]any, 0, len(bands))

	for _, b := range bands {
		out = append(out, map[string]any{
			"threshold":      b.Threshold,
			"classification": b.Classification,
		})
	}

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
