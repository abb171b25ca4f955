package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration from:
// 1. Default values
// 2. The config file at configPath (optional)
// 3. BOT_* environment variables
//
// Required keys with no default (credentials, API keys) must come from the
// file or the environment; validation fails at startup when they are absent.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow missing config file; env vars and defaults may be enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// isNotExist reports whether err is a file-not-found error from viper's
// underlying fs (SetConfigFile bypasses ConfigFileNotFoundError).
func isNotExist(err error) bool {
	return strings.Contains(err.Error(), "no such file")
}

// setDefaults registers default values for optional configuration keys.
// Credentials default to empty strings so env-variable binding picks them up.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("server.addr", DefaultServerAddr)

	v.SetDefault("line.channel_secret", "")
	v.SetDefault("line.channel_token", "")

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", DefaultAIModel)
	v.SetDefault("ai.temperature", DefaultAITemperature)
	v.SetDefault("ai.instruction", DefaultAIInstruction)
	v.SetDefault("ai.timeout", DefaultAITimeout)

	v.SetDefault("classifier.backend", DefaultClassifierBackend)
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.base_url", DefaultClassifierBaseURL)
	v.SetDefault("classifier.model", DefaultClassifierModel)
	v.SetDefault("classifier.timeout", DefaultClassifierTimeout)

	v.SetDefault("nutrition.db_path", DefaultNutritionDBPath)
	v.SetDefault("nutrition.table_path", DefaultNutritionTablePath)
	v.SetDefault("nutrition.label_map_path", DefaultNutritionLabelMapPath)

	v.SetDefault("scheduler.tasks.table_maintenance.enabled", false)
	v.SetDefault("scheduler.tasks.table_maintenance.schedule", DefaultMaintenanceSchedule)

	v.SetDefault("messages.food_fact", DefaultMessages.FoodFact)
	v.SetDefault("messages.unknown_food", DefaultMessages.UnknownFood)
	v.SetDefault("messages.unreadable_image", DefaultMessages.UnreadableImage)
	v.SetDefault("messages.chat_apology", DefaultMessages.ChatApology)
	v.SetDefault("messages.image_error", DefaultMessages.ImageError)
}
