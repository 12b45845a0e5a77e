package config

import (
	"errors"
	"os"
	"path/filepath"
)

// defaultYAML is written to the data dir on first run so the user has a
// complete, editable config without hunting for documentation.
const defaultYAML = `app:
  port: 38471
  data_dir: ""

worker:
  interval_seconds: 300
  keywords_per_run: 3
  qualify_batch: 10

harvest:
  max_items_per_keyword: 30
  enrich_workers: 10
  enrich_timeout_seconds: 30
  enrich_batch_timeout_seconds: 120
  too_small_below: 5000
  small_below: 100000
  sweet_spot_below: 1000000
  source_req_per_sec: 1.0
  source_burst: 2
  disallow:
    - vlog
    - reaction
    - unboxing
    - gaming
    - gameplay
    - "let's play"
    - mukbang
    - asmr
    - podcast
    - news
    - politics
    - cooking
    - recipe
    - travel
    - fashion
    - makeup
    - beauty
    - fitness
    - workout
    - sports
    - movie review
    - music video
    - song
    - cover
    - remix
    - trailer
    - prank

qualify:
  min_score: 6
  max_score: 10
  max_video_count: 2500
  transcript_max_chars: 5000
  languages_allow:
    - english
    - spanish
    - french
    - german
    - italian
    - portuguese

followup:
  cadence_days: [3, 7, 10, 15]

evaluator:
  model: gemini-3-flash-preview
  api_key_env: GEMINI_API_KEY

dispatch:
  enabled: false
  smtp_host: smtp.zeptomail.com
  smtp_port: 587
  senders: []

replies:
  enabled: false
  imap_host: ""
  imap_port: 993
  username: ""
  mailbox: INBOX
  lookback_days: 14

retry:
  max_attempts: 3
  base_delay_ms: 500
  max_delay_ms: 10000
  cooldown_seconds: 15
`

// EnsureUserConfig makes sure dataDir holds a config.yml, writing the
// default one if absent, and returns its path.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.WriteFile(userPath, []byte(defaultYAML), 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}
