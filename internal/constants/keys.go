package constants

// Keys read from formatter, output and logger definitions.
const (
	KeyClass         = "class"
	KeySubFormatter  = "sub_formatter"
	KeyFormatter     = "formatter"
	KeyLevel         = "level"
	KeyLevelName     = "level_name"
	KeyOutputs       = "outputs"
	KeyEnable        = "enable"
	KeyTag           = "tag"
	KeyCaptureCaller = "capture_caller"
)

// Settings keys and the environment prefix viper binds them under.
const (
	EnvPrefix           = "LNDL"
	SettingConfig       = "config"
	SettingLevel        = "level"
	SettingEnvironment  = "environment"
	SettingWatch        = "watch"
	SettingColorMode    = "color_mode"
	SettingLogDirectory = "log_dir"
)
