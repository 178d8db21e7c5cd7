package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		configPathEnv, databasePathEnv, thresholdEnv,
		pubmedAPIKeyEnv, openCitationsTokenEnv,
		geminiAPIKeyEnv, geminiModelEnv,
		smtpHostEnv, smtpUsernameEnv, smtpPasswordEnv,
		mailFromEnv, mailToEnv,
		telegramTokenEnv, telegramChatIDEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg := Load()

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Database.Path != "citationwatch.db" {
		t.Fatalf("database path = %s", cfg.Database.Path)
	}
	if cfg.Alerts.Threshold != 10 {
		t.Fatalf("threshold = %d, want 10", cfg.Alerts.Threshold)
	}
	if cfg.Scheduler.Enabled {
		t.Fatalf("scheduler enabled by default")
	}
	if cfg.PubMed.BaseURL != "https://eutils.ncbi.nlm.nih.gov/entrez/eutils" {
		t.Fatalf("pubmed base url = %s", cfg.PubMed.BaseURL)
	}
	if cfg.OpenCitations.DelaySeconds != 1 {
		t.Fatalf("delay seconds = %v, want 1", cfg.OpenCitations.DelaySeconds)
	}
	if len(cfg.Topics) == 0 {
		t.Fatalf("no default topics")
	}
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("default location = %s", cfg.Scheduler.Location())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(databasePathEnv, "/tmp/alt.db")
	t.Setenv(thresholdEnv, "25")
	t.Setenv(geminiAPIKeyEnv, "gem-key")
	t.Setenv(telegramTokenEnv, "bot-token")
	t.Setenv(telegramChatIDEnv, "chat-42")

	cfg := Load()

	if cfg.Database.Path != "/tmp/alt.db" {
		t.Fatalf("database path = %s", cfg.Database.Path)
	}
	if cfg.Alerts.Threshold != 25 {
		t.Fatalf("threshold = %d, want 25", cfg.Alerts.Threshold)
	}
	if cfg.Gemini.APIKey != "gem-key" {
		t.Fatalf("gemini api key = %s", cfg.Gemini.APIKey)
	}
	if cfg.Notifications.Telegram.BotToken != "bot-token" || cfg.Notifications.Telegram.ChatID != "chat-42" {
		t.Fatalf("telegram overrides not applied: %+v", cfg.Notifications.Telegram)
	}
}

func TestLoadInvalidThresholdKeepsDefault(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(thresholdEnv, "plenty")

	cfg := Load()

	if cfg.Alerts.Threshold != 10 {
		t.Fatalf("threshold = %d, want default 10", cfg.Alerts.Threshold)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearConfigEnv(t)

	raw := `
logging:
  level: debug
scheduler:
  enabled: true
  interval: 12h
  timezone: Europe/Berlin
alerts:
  threshold: 7
mail:
  from: alerts@example.org
  to: team@example.org
impact:
  factors:
    "Journal of Tests": "3.1"
topics:
  - name: custom topic
    query: '"Custom"[MeSH]'
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %s, want debug", cfg.Logging.Level)
	}
	if !cfg.Scheduler.Enabled {
		t.Fatalf("scheduler not enabled")
	}
	if cfg.Scheduler.TickInterval().Hours() != 12 {
		t.Fatalf("interval = %v, want 12h", cfg.Scheduler.TickInterval())
	}
	if cfg.Scheduler.Location().String() != "Europe/Berlin" {
		t.Fatalf("location = %s", cfg.Scheduler.Location())
	}
	if cfg.Alerts.Threshold != 7 {
		t.Fatalf("threshold = %d, want 7", cfg.Alerts.Threshold)
	}
	if cfg.Mail.From != "alerts@example.org" || cfg.Mail.To != "team@example.org" {
		t.Fatalf("mail overrides not applied: %+v", cfg.Mail)
	}
	if cfg.Impact.Factors["Journal of Tests"] != "3.1" {
		t.Fatalf("impact factors not applied: %+v", cfg.Impact.Factors)
	}
	if len(cfg.Topics) != 1 || cfg.Topics[0].Name != "custom topic" {
		t.Fatalf("topics not replaced: %+v", cfg.Topics)
	}

	// File values only override what they name.
	if cfg.PubMed.BaseURL != "https://eutils.ncbi.nlm.nih.gov/entrez/eutils" {
		t.Fatalf("pubmed base url lost: %s", cfg.PubMed.BaseURL)
	}
	if cfg.Mail.Host != "smtp.gmail.com" || cfg.Mail.Port != 587 {
		t.Fatalf("mail defaults lost: %+v", cfg.Mail)
	}
}

func TestLoadBadTimezoneFallsBack(t *testing.T) {
	clearConfigEnv(t)

	raw := `
scheduler:
  timezone: Mars/Olympus
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("location = %s, want UTC fallback", cfg.Scheduler.Location())
	}
}

func TestLoadUnreadableFileFallsBack(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()

	if cfg.Alerts.Threshold != 10 {
		t.Fatalf("threshold = %d, want default 10", cfg.Alerts.Threshold)
	}
}
