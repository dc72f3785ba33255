package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gitayam/markdown2dokuwiki/pkg/converter"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/encoding"
	"github.com/gitayam/markdown2dokuwiki/pkg/converter/language"
	libtemplate "github.com/gitayam/markdown2dokuwiki/pkg/converter/template"
)

const (
	EnvPrefix         = "WIKICONVERT"
	DefaultConfigName = "wiki-converter"
)

// flagKeys maps flag names to the configuration keys they override.
var flagKeys = map[string]string{
	"output":         "output",
	"verbose":        "verbose",
	"dialect":        "dialect",
	"flatten":        "flatten",
	"protected":      "protected",
	"collision":      "collision",
	"wiki-base-url":  "wikiBaseURL",
	"dash-mode":      "dashMode",
	"heading-mode":   "headingMode",
	"media-dir":      "mediaDir",
	"ignore":         "ignore",
	"on-error":       "onError",
	"output-format":  "outputFormat",
	"audit-template": "auditTemplate",
}

// Config is the fully merged CLI configuration: the library options plus the
// settings that only affect the command-line front end.
type Config struct {
	Options converter.Options

	// Interactive enables prompting for dialect, flattening and protected
	// directories when they were not configured.
	Interactive bool
	// TUIEnabled selects the full-screen dialect picker over line prompts.
	TUIEnabled bool
	// ProbeEnabled looks for a running wiki container after the run.
	ProbeEnabled bool

	// FlattenSet and ProtectedSet report whether the value came from a config
	// file, the environment or a flag rather than the built-in default.
	FlattenSet   bool
	ProtectedSet bool
}

// LoadAndValidate loads configuration from all sources (defaults, file, profile,
// env, flags), validates the merged configuration, sets up the logger and
// injects the default library dependencies. inputPath is the positional source
// directory.
func LoadAndValidate(inputPath, cfgFile, profileName, appVersion string, flags *pflag.FlagSet) (Config, *slog.Logger, error) {
	var cfg Config
	opts := &cfg.Options
	v := viper.New()

	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	setDefaults(v)

	// --- Load Config File ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			tempLogger.Error("Failed to get user home directory", slog.Any("error", err))
			return cfg, tempLogger, fmt.Errorf("failed to get user home directory: %w", err)
		}
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			used := cfgFile
			if used == "" {
				used = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", used), slog.Any("error", err))
			return cfg, tempLogger, fmt.Errorf("error reading config file '%s': %w", used, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
		tempLogger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	// --- Apply Profile ---
	opts.ProfileName = profileName
	if profileName != "" {
		profileKey := "profiles." + profileName
		if !v.IsSet(profileKey) {
			configPath := v.ConfigFileUsed()
			if configPath == "" {
				configPath = "(no config file found)"
			}
			err := fmt.Errorf("profile '%s' not found in config file '%s'", profileName, configPath)
			tempLogger.Error(err.Error())
			return cfg, tempLogger, err
		}
		profileSettings := v.Sub(profileKey)
		if profileSettings == nil {
			err := fmt.Errorf("failed to load profile '%s' settings from config file '%s'", profileName, v.ConfigFileUsed())
			tempLogger.Error(err.Error())
			return cfg, tempLogger, err
		}
		if err := v.MergeConfigMap(profileSettings.AllSettings()); err != nil {
			tempLogger.Error("Error merging profile", slog.String("profile", profileName), slog.Any("error", err))
			return cfg, tempLogger, fmt.Errorf("error merging profile '%s': %w", profileName, err)
		}
		tempLogger.Debug("Applied configuration profile", slog.String("profile", profileName))
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Bind Flags (Highest Priority) ---
	if flags != nil {
		for flagName, key := range flagKeys {
			flag := flags.Lookup(flagName)
			if flag == nil {
				tempLogger.Debug("Flag lookup failed during binding", slog.String("flag", flagName))
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				tempLogger.Error("Error binding flag", slog.String("flag", flagName), slog.Any("error", err))
				return cfg, tempLogger, fmt.Errorf("error binding flag '--%s': %w", flagName, err)
			}
		}
	}

	// --- Unmarshal Final Configuration ---
	opts.AppVersion = appVersion
	if err := v.Unmarshal(opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return cfg, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}
	opts.InputPath = inputPath
	cfg.Interactive = v.GetBool("interactive")
	cfg.TUIEnabled = v.GetBool("tui")
	cfg.ProbeEnabled = v.GetBool("probe")
	cfg.FlattenSet = v.IsSet("flatten")
	cfg.ProtectedSet = v.IsSet("protected")

	// Boolean flags always win when given explicitly.
	if flags != nil {
		if flags.Changed("verbose") {
			opts.Verbose, _ = flags.GetBool("verbose")
		}
		if flags.Changed("flatten") {
			opts.Flatten, _ = flags.GetBool("flatten")
			cfg.FlattenSet = true
		}
		if noPrompt, _ := flags.GetBool("no-prompt"); noPrompt {
			cfg.Interactive = false
		}
		if noTUI, _ := flags.GetBool("no-tui"); noTUI {
			cfg.TUIEnabled = false
		}
		if noProbe, _ := flags.GetBool("no-probe"); noProbe {
			cfg.ProbeEnabled = false
		}
	}

	// --- Setup Final Logger ---
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler

	if err := validateAndDeriveOptions(&cfg, logger); err != nil {
		return cfg, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.String("profile", opts.ProfileName),
		slog.String("output", opts.OutputPath),
		slog.Bool("interactive", cfg.Interactive),
		slog.String("logLevel", logLevel.String()),
	)
	return cfg, logger, nil
}

// setDefaults establishes the default values for configuration options in Viper.
// dialect, flatten and protected have no default so that an unset value can be
// asked for interactively.
func setDefaults(v *viper.Viper) {
	// --- Conversion ---
	v.SetDefault("collision", string(converter.DefaultCollisionPolicy))
	v.SetDefault("wikiBaseURL", converter.DefaultWikiBaseURL)
	v.SetDefault("dashMode", string(converter.DefaultDashMode))
	v.SetDefault("headingMode", string(converter.DefaultHeadingMode))

	// --- File Handling ---
	v.SetDefault("markupExtensions", converter.DefaultMarkupExtensions())
	v.SetDefault("caseInsensitiveExtensions", converter.DefaultCaseInsensitiveExtensions)
	v.SetDefault("mediaExtensions", converter.DefaultMediaExtensions())
	v.SetDefault("mediaDir", converter.DefaultMediaDirName)
	v.SetDefault("ignore", []string{".git/"})
	v.SetDefault("defaultEncoding", "")
	v.SetDefault("languageMappings", map[string]string{})

	// --- Behavior & Output ---
	v.SetDefault("verbose", converter.DefaultVerbose)
	v.SetDefault("onError", string(converter.DefaultOnErrorMode))
	v.SetDefault("outputFormat", string(converter.DefaultOutputFormat))
	v.SetDefault("auditTemplate", "")

	// --- Front End ---
	v.SetDefault("interactive", true)
	v.SetDefault("tui", true)
	v.SetDefault("probe", converter.DefaultProbeEnabled)
}

// isValidEnumValue checks if a given string value is present in a slice of allowed enum values.
// Case-sensitive comparison.
func isValidEnumValue[T ~string](value T, allowedValues []T) bool {
	return slices.Contains(allowedValues, value)
}

// validateAndDeriveOptions performs semantic validation of the merged values,
// derives the output path and injects default dependencies. Path existence and
// the remaining library rules are checked again by converter.GenerateWiki.
// Errors wrap converter.ErrConfigValidation.
func validateAndDeriveOptions(cfg *Config, logger *slog.Logger) error {
	opts := &cfg.Options

	// === Path Derivations ===
	if opts.InputPath == "" {
		err := fmt.Errorf("%w: source directory is required", converter.ErrConfigValidation)
		logger.Error(err.Error(), slog.String("key", "InputPath"))
		return err
	}
	info, err := os.Stat(opts.InputPath)
	if err != nil {
		err = fmt.Errorf("%w: cannot access source directory '%s': %w", converter.ErrConfigValidation, opts.InputPath, err)
		logger.Error(err.Error(), slog.String("key", "InputPath"))
		return err
	}
	if !info.IsDir() {
		err := fmt.Errorf("%w: source path '%s' is not a directory", converter.ErrConfigValidation, opts.InputPath)
		logger.Error(err.Error(), slog.String("key", "InputPath"))
		return err
	}
	if opts.OutputPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("%w: cannot determine working directory: %w", converter.ErrConfigValidation, err)
		}
		opts.OutputPath = converter.DefaultOutputPath(cwd, opts.InputPath)
		logger.Debug("Output path not set, using default", slog.String("path", opts.OutputPath))
	}
	if opts.AuditTemplatePath != "" {
		abs, err := filepath.Abs(opts.AuditTemplatePath)
		if err != nil {
			return fmt.Errorf("%w: cannot resolve audit template path '%s': %w", converter.ErrConfigValidation, opts.AuditTemplatePath, err)
		}
		opts.AuditTemplatePath = abs
	}

	// === Enum String Validations ===
	if opts.Dialect != "" {
		allowed := []converter.Dialect{converter.DialectDokuWiki, converter.DialectMediaWiki}
		if !isValidEnumValue(opts.Dialect, allowed) {
			err := fmt.Errorf("%w: invalid value '%s' for key 'dialect' (flag --dialect). Allowed: %v", converter.ErrConfigValidation, opts.Dialect, allowed)
			logger.Error(err.Error(), slog.String("key", "dialect"), slog.String("value", string(opts.Dialect)))
			return err
		}
	}
	allowedCollision := []converter.CollisionPolicy{converter.CollisionOverwrite, converter.CollisionRename, converter.CollisionError}
	if !isValidEnumValue(opts.CollisionPolicy, allowedCollision) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'collision' (flag --collision). Allowed: %v", converter.ErrConfigValidation, opts.CollisionPolicy, allowedCollision)
		logger.Error(err.Error(), slog.String("key", "collision"), slog.String("value", string(opts.CollisionPolicy)))
		return err
	}
	allowedDash := []converter.DashMode{converter.DashAll, converter.DashFrontMatter}
	if !isValidEnumValue(opts.DashMode, allowedDash) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'dashMode' (flag --dash-mode). Allowed: %v", converter.ErrConfigValidation, opts.DashMode, allowedDash)
		logger.Error(err.Error(), slog.String("key", "dashMode"), slog.String("value", string(opts.DashMode)))
		return err
	}
	allowedHeading := []converter.HeadingMode{converter.HeadingLiteral, converter.HeadingLine}
	if !isValidEnumValue(opts.HeadingMode, allowedHeading) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'headingMode' (flag --heading-mode). Allowed: %v", converter.ErrConfigValidation, opts.HeadingMode, allowedHeading)
		logger.Error(err.Error(), slog.String("key", "headingMode"), slog.String("value", string(opts.HeadingMode)))
		return err
	}
	allowedOnError := []converter.OnErrorMode{converter.OnErrorContinue, converter.OnErrorStop}
	if !isValidEnumValue(opts.OnErrorMode, allowedOnError) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'onError' (flag --on-error). Allowed: %v", converter.ErrConfigValidation, opts.OnErrorMode, allowedOnError)
		logger.Error(err.Error(), slog.String("key", "onError"), slog.String("value", string(opts.OnErrorMode)))
		return err
	}
	allowedOutputFormat := []converter.OutputFormat{converter.OutputFormatText, converter.OutputFormatJSON}
	if !isValidEnumValue(opts.OutputFormat, allowedOutputFormat) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'outputFormat' (flag --output-format). Allowed: %v", converter.ErrConfigValidation, opts.OutputFormat, allowedOutputFormat)
		logger.Error(err.Error(), slog.String("key", "outputFormat"), slog.String("value", string(opts.OutputFormat)))
		return err
	}

	// === Inject Default Dependencies (if nil) ===
	if opts.LanguageDetector == nil {
		opts.LanguageDetector = language.NewGoEnryDetector(opts.LanguageMappingsOverride)
		logger.Debug("LanguageDetector not provided, using default (GoEnryDetector).")
	}
	if opts.EncodingHandler == nil {
		opts.EncodingHandler = encoding.NewCharsetHandler(opts.DefaultEncoding)
		logger.Debug("EncodingHandler not provided, using default (CharsetHandler).")
	}
	if opts.TemplateExecutor == nil {
		opts.TemplateExecutor = libtemplate.NewGoTemplateExecutor()
		logger.Debug("TemplateExecutor not provided, using default (GoTemplateExecutor).")
	}

	if opts.Verbose && cfg.TUIEnabled {
		logger.Debug("Verbose mode enabled, TUI picker disabled")
		cfg.TUIEnabled = false
	}
	return nil
}
