package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Sender struct {
	Name           string `yaml:"name"`
	Email          string `yaml:"email"`
	Username       string `yaml:"username"`
	KeyringAccount string `yaml:"keyring_account"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Worker struct {
		IntervalSeconds int `yaml:"interval_seconds"`
		KeywordsPerRun  int `yaml:"keywords_per_run"`
		QualifyBatch    int `yaml:"qualify_batch"`
	} `yaml:"worker"`

	Harvest struct {
		MaxItemsPerKeyword int      `yaml:"max_items_per_keyword"`
		EnrichWorkers      int      `yaml:"enrich_workers"`
		EnrichTimeoutSec   int      `yaml:"enrich_timeout_seconds"`
		EnrichBatchSec     int      `yaml:"enrich_batch_timeout_seconds"`
		Disallow           []string `yaml:"disallow"`
		TooSmallBelow      int64    `yaml:"too_small_below"`
		SmallBelow         int64    `yaml:"small_below"`
		SweetSpotBelow     int64    `yaml:"sweet_spot_below"`
		SourceReqPerSec    float64  `yaml:"source_req_per_sec"`
		SourceBurst        int      `yaml:"source_burst"`
	} `yaml:"harvest"`

	Qualify struct {
		MinScore           int      `yaml:"min_score"`
		MaxScore           int      `yaml:"max_score"`
		MaxVideoCount      int      `yaml:"max_video_count"`
		LanguagesAllow     []string `yaml:"languages_allow"`
		TranscriptMaxChars int      `yaml:"transcript_max_chars"`
	} `yaml:"qualify"`

	Followup struct {
		CadenceDays []int `yaml:"cadence_days"`
	} `yaml:"followup"`

	Evaluator struct {
		Model     string `yaml:"model"`
		APIKeyEnv string `yaml:"api_key_env"`
	} `yaml:"evaluator"`

	Dispatch struct {
		Enabled  bool     `yaml:"enabled"`
		SMTPHost string   `yaml:"smtp_host"`
		SMTPPort int      `yaml:"smtp_port"`
		Senders  []Sender `yaml:"senders"`
	} `yaml:"dispatch"`

	Replies struct {
		Enabled      bool   `yaml:"enabled"`
		IMAPHost     string `yaml:"imap_host"`
		IMAPPort     int    `yaml:"imap_port"`
		Username     string `yaml:"username"`
		Mailbox      string `yaml:"mailbox"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"replies"`

	Retry struct {
		MaxAttempts     int `yaml:"max_attempts"`
		BaseDelayMillis int `yaml:"base_delay_ms"`
		MaxDelayMillis  int `yaml:"max_delay_ms"`
		CooldownSeconds int `yaml:"cooldown_seconds"`
	} `yaml:"retry"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
