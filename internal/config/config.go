// Package config maps the viper configuration onto typed settings for the
// triage pipeline.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type IMAP struct {
	Server      string        `mapstructure:"server"`
	Port        int           `mapstructure:"port"`
	Security    string        `mapstructure:"security"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	Folder      string        `mapstructure:"folder"`
	SpamLabel   string        `mapstructure:"spam_label"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// Address returns host:port for dialing.
func (c IMAP) Address() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

type Classifier struct {
	Threshold float64 `mapstructure:"threshold"`
}

type Model struct {
	Path           string `mapstructure:"path"`
	VectorizerPath string `mapstructure:"vectorizer_path"`
	Dataset        string `mapstructure:"dataset"`
}

type Poll struct {
	Interval time.Duration `mapstructure:"interval"`
	Backoff  time.Duration `mapstructure:"backoff"`
}

type Sweep struct {
	Enabled bool `mapstructure:"enabled"`
}

type Unsubscribe struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	Rate      float64       `mapstructure:"rate"`
	UserAgent string        `mapstructure:"user_agent"`
}

type SMTP struct {
	Server   string `mapstructure:"server"`
	Port     int    `mapstructure:"port"`
	Security string `mapstructure:"security"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type Report struct {
	To   []string `mapstructure:"to"`
	SMTP SMTP     `mapstructure:"smtp"`
}

// Enabled reports whether summaries should be mailed.
func (r Report) Enabled() bool {
	return len(r.To) > 0 && r.SMTP.Server != ""
}

type Config struct {
	IMAP        IMAP        `mapstructure:"imap"`
	Classifier  Classifier  `mapstructure:"classifier"`
	Model       Model       `mapstructure:"model"`
	Poll        Poll        `mapstructure:"poll"`
	Sweep       Sweep       `mapstructure:"sweep"`
	Unsubscribe Unsubscribe `mapstructure:"unsubscribe"`
	Report      Report      `mapstructure:"report"`
}

// SetDefaults registers every key with its default so environment variables
// are picked up by Unmarshal even when config.yaml omits the key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("imap.server", "")
	v.SetDefault("imap.port", 993)
	v.SetDefault("imap.security", "ssl")
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.password", "")
	v.SetDefault("imap.folder", "INBOX")
	v.SetDefault("imap.spam_label", `\Spam`)
	v.SetDefault("imap.dial_timeout", 30*time.Second)

	v.SetDefault("classifier.threshold", 0.8)

	v.SetDefault("model.path", "spam_model.json")
	v.SetDefault("model.vectorizer_path", "vectorizer.json")
	v.SetDefault("model.dataset", "processed_spam_dataset.csv")

	v.SetDefault("poll.interval", 5*time.Minute)
	v.SetDefault("poll.backoff", 60*time.Second)

	v.SetDefault("sweep.enabled", true)

	v.SetDefault("unsubscribe.timeout", 15*time.Second)
	v.SetDefault("unsubscribe.rate", 1.0)
	v.SetDefault("unsubscribe.user_agent", "mail-sweeper/1.0")

	v.SetDefault("report.to", []string{})
	v.SetDefault("report.smtp.server", "")
	v.SetDefault("report.smtp.port", 465)
	v.SetDefault("report.smtp.security", "ssl")
	v.SetDefault("report.smtp.username", "")
	v.SetDefault("report.smtp.password", "")
	v.SetDefault("report.smtp.from", "")
}

// BindEnv wires the legacy deployment environment variables
// (EMAIL, PASSWORD, IMAP_SERVER) next to the automatic IMAP_* style names.
func BindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("imap.username", "IMAP_USERNAME", "EMAIL")
	_ = v.BindEnv("imap.password", "IMAP_PASSWORD", "PASSWORD")
	_ = v.BindEnv("imap.server", "IMAP_SERVER")
}

// Load decodes the viper state into a Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.IMAP.Security = strings.ToLower(strings.TrimSpace(cfg.IMAP.Security))
	cfg.Report.SMTP.Security = strings.ToLower(strings.TrimSpace(cfg.Report.SMTP.Security))
	if cfg.IMAP.Folder == "" {
		cfg.IMAP.Folder = "INBOX"
	}

	return cfg, nil
}
