package configloader

import (
	"strings"

	"github.com/hyp3rd/ewrap"
	"github.com/spf13/viper"

	"github.com/hyp3rd/lndl"
	"github.com/hyp3rd/lndl/internal/constants"
	"github.com/hyp3rd/lndl/internal/output"
	"github.com/hyp3rd/lndl/pkg/config"
)

// Settings are the process-level knobs around a configuration document.
type Settings struct {
	// Config is the path of the document to load.
	Config string `mapstructure:"config" yaml:"config"`
	// Level, when set, overrides the threshold of every logger and output.
	Level string `mapstructure:"level" yaml:"level"`
	// Environment selects the preset used by the log package.
	Environment string `mapstructure:"environment" yaml:"environment"`
	// Watch reloads the document when its file changes.
	Watch bool `mapstructure:"watch" yaml:"watch"`
	// ColorMode is auto, always or never.
	ColorMode string `mapstructure:"color_mode" yaml:"color_mode"`
	// LogDir is the directory preset file outputs write to.
	LogDir string `mapstructure:"log_dir" yaml:"log_dir"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Environment: constants.NonProductionEnvironment,
		ColorMode:   output.ColorModeAuto.String(),
		LogDir:      lndl.DefaultLogDir,
	}
}

// LoadSettings reads settings from the optional file at path and from
// environment variables named after the prefix (LNDL_CONFIG, LNDL_LEVEL, ...).
// Environment values win over the file. An empty prefix selects LNDL.
func LoadSettings(path, prefix string) (Settings, error) {
	viperInstance := viper.New()

	defaults := DefaultSettings()
	viperInstance.SetDefault(constants.SettingEnvironment, defaults.Environment)
	viperInstance.SetDefault(constants.SettingColorMode, defaults.ColorMode)
	viperInstance.SetDefault(constants.SettingLogDirectory, defaults.LogDir)

	err := bindEnvironment(viperInstance, normalizePrefix(prefix))
	if err != nil {
		return Settings{}, err
	}

	if path != "" {
		viperInstance.SetConfigFile(path)

		err = viperInstance.ReadInConfig()
		if err != nil {
			return Settings{}, ewrap.Wrap(err, "failed to read settings file").
				WithMetadata("path", path)
		}
	}

	var settings Settings

	err = viperInstance.Unmarshal(&settings)
	if err != nil {
		return Settings{}, ewrap.Wrap(err, "failed to decode settings")
	}

	err = settings.Validate()
	if err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// Validate checks the level and colour mode.
func (s Settings) Validate() error {
	if s.Level != "" {
		_, err := lndl.ParseLevel(s.Level)
		if err != nil {
			return ewrap.Wrap(err, "invalid level setting")
		}
	}

	_, err := output.ParseColorMode(s.ColorMode)
	if err != nil {
		return ewrap.Wrap(err, "invalid color_mode setting")
	}

	return nil
}

// ParsedLevel returns the level override and whether one is set.
func (s Settings) ParsedLevel() (lndl.Level, bool) {
	if s.Level == "" {
		return 0, false
	}

	level, err := lndl.ParseLevel(s.Level)
	if err != nil {
		return 0, false
	}

	return level, true
}

// Apply loads the configured document into storage and applies the level
// override to every registered logger and its outputs.
func (s Settings) Apply(storage *config.Storage) (config.Report, error) {
	var report config.Report

	if s.Config != "" {
		loaded, err := Load(storage, s.Config)
		if err != nil {
			return config.Report{}, err
		}

		report = loaded
	}

	if level, ok := s.ParsedLevel(); ok {
		for _, name := range storage.Names(constants.SectionLogger) {
			storage.GetLogger(name).SetGlobalLevel(level)
		}
	}

	return report, nil
}

func bindEnvironment(viperInstance *viper.Viper, prefix string) error {
	replacer := strings.NewReplacer(".", "_")
	viperInstance.SetEnvKeyReplacer(replacer)
	viperInstance.SetEnvPrefix(prefix)
	viperInstance.AutomaticEnv()

	for _, key := range settingKeys() {
		err := viperInstance.BindEnv(key)
		if err != nil {
			return ewrap.Wrap(err, "failed to bind environment key").
				WithMetadata("key", key).
				WithMetadata("prefix", prefix)
		}
	}

	return nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return constants.EnvPrefix
	}

	prefix = strings.TrimSuffix(prefix, "_")
	prefix = strings.ReplaceAll(prefix, "-", "_")

	return strings.ToUpper(prefix)
}

func settingKeys() []string {
	return []string{
		constants.SettingConfig,
		constants.SettingLevel,
		constants.SettingEnvironment,
		constants.SettingWatch,
		constants.SettingColorMode,
		constants.SettingLogDirectory,
	}
}
