package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ScoringPrompts 結構：揮棒評分 Prompt 的版本表
type ScoringPrompts struct {
	CurrentVersion string            `mapstructure:"currentVersion"`
	Versions       map[string]string `mapstructure:"versions"`
}

// DrillTaggingPrompts 結構：訓練影片自動標記 Prompt 的版本表
type DrillTaggingPrompts struct {
	CurrentVersion string            `mapstructure:"currentVersion"`
	Versions       map[string]string `mapstructure:"versions"`
}

// PromptConfig 結構
type PromptConfig struct {
	SwingScoring ScoringPrompts      `mapstructure:"swingScoring"`
	DrillTagging DrillTaggingPrompts `mapstructure:"drillTagging"`
}

// SchedulerConfig 結構
type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	DispatchCronSpec string `mapstructure:"dispatchCronSpec"`
	AutoTagCronSpec  string `mapstructure:"autoTagCronSpec"`
}

// Config 結構
type Config struct {
	AppName       string             `mapstructure:"appName"`
	AdminToken    string             `mapstructure:"adminToken"`
	PublicBaseURL string             `mapstructure:"publicBaseURL"`
	OnFormClient  OnFormClientConfig `mapstructure:"onFormClient"`
	SMSClient     SMSClientConfig    `mapstructure:"smsClient"`
	SlackClient   SlackClientConfig  `mapstructure:"slackClient"`
	GeminiClient  GeminiClientConfig `mapstructure:"geminiClient"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Media         MediaConfig        `mapstructure:"media"`
	Prompts       PromptConfig       `mapstructure:"prompts"`
	Scheduler     SchedulerConfig    `mapstructure:"scheduler"`
}

// OnFormClientConfig：影片匯入來源 (OAuth2 client credentials)
type OnFormClientConfig struct {
	ClientID     string `mapstructure:"clientID"`
	ClientSecret string `mapstructure:"clientSecret"`
	TokenURL     string `mapstructure:"tokenURL"`
	BaseURL      string `mapstructure:"baseURL"`
}

// SMSClientConfig：對外簡訊閘道
type SMSClientConfig struct {
	APIKey     string `mapstructure:"apiKey"`
	BaseURL    string `mapstructure:"baseURL"`
	FromNumber string `mapstructure:"fromNumber"`
}

// SlackClientConfig：教練工作區的通知頻道
type SlackClientConfig struct {
	BotToken  string `mapstructure:"botToken"`
	ChannelID string `mapstructure:"channelID"`
}

type GeminiClientConfig struct {
	APIKey string `mapstructure:"apiKey"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
}

type MediaConfig struct {
	VideoPath string `mapstructure:"videoPath"`
}

// Load 讀取設定檔，環境變數可覆寫（點號換成底線）。
func Load(configPath string, configName string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 設定預設值
	v.SetDefault("appName", "SwingLab-DefaultApp")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("publicBaseURL", "http://localhost:8080")
	v.SetDefault("prompts.swingScoring.currentVersion", "default-v1")
	v.SetDefault("prompts.swingScoring.versions.default-v1", "請分析這組揮棒影片並給出 4B 評分。")
	v.SetDefault("prompts.drillTagging.currentVersion", "default-v1")
	v.SetDefault("prompts.drillTagging.versions.default-v1", "請依固定分類法標記此訓練影片逐字稿。")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.dispatchCronSpec", "0 * * * * *")
	v.SetDefault("scheduler.autoTagCronSpec", "0 */5 * * * *")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("警告：找不到設定檔，將使用預設值和環境變數。")
		} else {
			return nil, fmt.Errorf("讀取設定檔時發生錯誤: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("無法解析設定檔到結構: %w", err)
	}

	if cfg.GeminiClient.APIKey == "" {
		fmt.Println("警告：Gemini API Key 未設定！")
	}
	if cfg.AdminToken == "" {
		fmt.Println("警告：Admin Token 未設定，後台路由將拒絕所有請求。")
	}

	fmt.Println("資訊：設定載入成功。")
	return &cfg, nil
}
