// Package config manages application configuration from environment
// variables, config files, and default values.
package config

import (
	"time"
)

// Config defines the application configuration. Values can be set via
// environment variables prefixed with BOT_ (e.g., BOT_LINE_CHANNEL_SECRET)
// or through config.yaml.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	Line       LineConfig       `mapstructure:"line"`
	AI         AIConfig         `mapstructure:"ai"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Nutrition  NutritionConfig  `mapstructure:"nutrition"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Messages   MessagesConfig   `mapstructure:"messages"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// LineConfig holds LINE Messaging API credentials. Both values are issued
// per channel in the LINE developer console and are required at startup.
type LineConfig struct {
	ChannelSecret string `mapstructure:"channel_secret" validate:"required"`
	ChannelToken  string `mapstructure:"channel_token"  validate:"required"`
}

// AIConfig holds chat-completion provider settings for the conversational
// fallback.
type AIConfig struct {
	APIKey      string        `mapstructure:"api_key"     validate:"required"`
	Model       string        `mapstructure:"model"       validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	Instruction string        `mapstructure:"instruction" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"required,min=1s,max=10m"`
}

// ClassifierConfig selects and configures the food image classifier backend.
// Exactly one backend runs per deployment.
type ClassifierConfig struct {
	Backend string        `mapstructure:"backend"  validate:"required,oneof=spoonacular gemini"`
	APIKey  string        `mapstructure:"api_key"  validate:"required_if=Backend spoonacular"`
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Model   string        `mapstructure:"model"    validate:"required_if=Backend gemini"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"required,min=1s,max=5m"`
}

// NutritionConfig locates the static lookup assets. The nutrition table is
// required; a missing label map only degrades image replies to raw labels.
type NutritionConfig struct {
	DBPath       string `mapstructure:"db_path"        validate:"required"`
	TablePath    string `mapstructure:"table_path"     validate:"required"`
	LabelMapPath string `mapstructure:"label_map_path"`
}

// SchedulerConfig holds scheduled task settings keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a single scheduled task with a cron expression
// (six fields, seconds first).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds the user-facing reply templates.
type MessagesConfig struct {
	FoodFact        string `mapstructure:"food_fact"         validate:"required"`
	UnknownFood     string `mapstructure:"unknown_food"      validate:"required"`
	UnreadableImage string `mapstructure:"unreadable_image"  validate:"required"`
	ChatApology     string `mapstructure:"chat_apology"      validate:"required"`
	ImageError      string `mapstructure:"image_error"       validate:"required"`
}
