package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv         = "CITATION_WATCH_CONFIG"
	databasePathEnv       = "DATABASE_PATH"
	thresholdEnv          = "CITATION_THRESHOLD"
	pubmedAPIKeyEnv       = "PUBMED_API_KEY"
	openCitationsTokenEnv = "OPENCITATIONS_ACCESS_TOKEN"
	geminiAPIKeyEnv       = "GEMINI_API_KEY"
	geminiModelEnv        = "GEMINI_MODEL"
	smtpHostEnv           = "SMTP_HOST"
	smtpUsernameEnv       = "SMTP_USERNAME"
	smtpPasswordEnv       = "SMTP_PASSWORD"
	mailFromEnv           = "MAIL_FROM"
	mailToEnv             = "MAIL_TO"
	telegramTokenEnv      = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv     = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Database      DatabaseConfig      `yaml:"database"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Alerts        AlertConfig         `yaml:"alerts"`
	PubMed        PubMedConfig        `yaml:"pubmed"`
	OpenCitations OpenCitationsConfig `yaml:"opencitations"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	Mail          MailConfig          `yaml:"mail"`
	Notifications NotificationConfig  `yaml:"notifications"`
	Impact        ImpactConfig        `yaml:"impact"`
	Topics        []TopicConfig       `yaml:"topics"`
}

// LoggingConfig selects handler level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig describes the SQLite alert store location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines whether and how often the watcher reruns in place.
type SchedulerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Interval string         `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// TickInterval parses the configured rerun interval, defaulting to 24h.
func (s SchedulerConfig) TickInterval() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// AlertConfig holds the spike-detection policy.
type AlertConfig struct {
	Threshold int `yaml:"threshold"`
}

// PubMedConfig describes the E-utilities article index.
type PubMedConfig struct {
	BaseURL    string `yaml:"baseUrl"`
	APIKey     string `yaml:"apiKey"`
	Tool       string `yaml:"tool"`
	Email      string `yaml:"email"`
	RetMax     int    `yaml:"retMax"`
	WindowDays int    `yaml:"windowDays"`
}

// OpenCitationsConfig describes the citation-event feed and its pacing.
type OpenCitationsConfig struct {
	BaseURL        string  `yaml:"baseUrl"`
	AccessToken    string  `yaml:"accessToken"`
	DelaySeconds   float64 `yaml:"delaySeconds"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	Prompt   string `yaml:"prompt"`
}

// MailConfig wires SMTP digest delivery.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// NotificationConfig encapsulates side channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// ImpactConfig overrides or extends the built-in journal factor table.
type ImpactConfig struct {
	Factors map[string]string `yaml:"factors"`
}

// TopicConfig describes a monitored research field and its index query.
type TopicConfig struct {
	Name   string `yaml:"name"`
	Query  string `yaml:"query"`
	Source string `yaml:"source"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. Secrets typically arrive through a local .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Topics) == 0 {
		cfg.Topics = defaultConfig().Topics
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(thresholdEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Alerts.Threshold = n
		} else {
			log.Printf("config: invalid %s value %q: %v", thresholdEnv, v, err)
		}
	}

	if v := os.Getenv(pubmedAPIKeyEnv); v != "" {
		c.PubMed.APIKey = v
	}

	if v := os.Getenv(openCitationsTokenEnv); v != "" {
		c.OpenCitations.AccessToken = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Mail.Host = v
	}

	if v := os.Getenv(smtpUsernameEnv); v != "" {
		c.Mail.Username = v
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Mail.Password = v
	}

	if v := os.Getenv(mailFromEnv); v != "" {
		c.Mail.From = v
	}

	if v := os.Getenv(mailToEnv); v != "" {
		c.Mail.To = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.Interval != "" {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Alerts.Threshold != 0 {
		base.Alerts.Threshold = override.Alerts.Threshold
	}

	if override.PubMed.BaseURL != "" {
		base.PubMed.BaseURL = override.PubMed.BaseURL
	}
	if override.PubMed.APIKey != "" {
		base.PubMed.APIKey = override.PubMed.APIKey
	}
	if override.PubMed.Tool != "" {
		base.PubMed.Tool = override.PubMed.Tool
	}
	if override.PubMed.Email != "" {
		base.PubMed.Email = override.PubMed.Email
	}
	if override.PubMed.RetMax > 0 {
		base.PubMed.RetMax = override.PubMed.RetMax
	}
	if override.PubMed.WindowDays > 0 {
		base.PubMed.WindowDays = override.PubMed.WindowDays
	}

	if override.OpenCitations.BaseURL != "" {
		base.OpenCitations.BaseURL = override.OpenCitations.BaseURL
	}
	if override.OpenCitations.AccessToken != "" {
		base.OpenCitations.AccessToken = override.OpenCitations.AccessToken
	}
	if override.OpenCitations.DelaySeconds > 0 {
		base.OpenCitations.DelaySeconds = override.OpenCitations.DelaySeconds
	}
	if override.OpenCitations.TimeoutSeconds > 0 {
		base.OpenCitations.TimeoutSeconds = override.OpenCitations.TimeoutSeconds
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Prompt != "" {
		base.Gemini.Prompt = override.Gemini.Prompt
	}

	if override.Mail.Host != "" {
		base.Mail.Host = override.Mail.Host
	}
	if override.Mail.Port > 0 {
		base.Mail.Port = override.Mail.Port
	}
	if override.Mail.Username != "" {
		base.Mail.Username = override.Mail.Username
	}
	if override.Mail.Password != "" {
		base.Mail.Password = override.Mail.Password
	}
	if override.Mail.From != "" {
		base.Mail.From = override.Mail.From
	}
	if override.Mail.To != "" {
		base.Mail.To = override.Mail.To
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Impact.Factors) > 0 {
		base.Impact.Factors = override.Impact.Factors
	}

	if len(override.Topics) > 0 {
		base.Topics = override.Topics
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Database:  DatabaseConfig{Path: "citationwatch.db"},
		Scheduler: SchedulerConfig{Enabled: false, Interval: "24h", Timezone: defaultTimezone, location: tz},
		Alerts:    AlertConfig{Threshold: 10},
		PubMed: PubMedConfig{
			BaseURL:    "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			Tool:       "citationwatch",
			RetMax:     100,
			WindowDays: 365,
		},
		OpenCitations: OpenCitationsConfig{
			BaseURL:        "https://opencitations.net/index/coci/api/v1/citations",
			DelaySeconds:   1,
			TimeoutSeconds: 60,
		},
		Gemini: GeminiConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-2.0-flash",
			Prompt:   "Summarize the following biomedical abstract in two or three plain sentences for a monthly research alert.",
		},
		Mail: MailConfig{Host: "smtp.gmail.com", Port: 587},
		Topics: []TopicConfig{
			{Name: "cancer immunotherapy", Query: `"Immunotherapy"[MeSH] AND "Neoplasms"[MeSH]`, Source: "pubmed"},
			{Name: "CRISPR gene editing", Query: `"CRISPR-Cas Systems"[MeSH]`, Source: "pubmed"},
			{Name: "mRNA vaccines", Query: `"mRNA Vaccines"[MeSH]`, Source: "pubmed"},
			{Name: "gut microbiome", Query: `"Gastrointestinal Microbiome"[MeSH]`, Source: "pubmed"},
		},
	}
}
