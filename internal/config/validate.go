package config

import (
	"fmt"
	"sort"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills defaults, normalizes lists and reports
// anything that would make a run misbehave.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Harvest.Disallow = trimList(out.Harvest.Disallow)
	out.Qualify.LanguagesAllow = trimList(out.Qualify.LanguagesAllow)

	// ---- Defaults ----

	if out.App.Port <= 0 {
		out.App.Port = 38471
	}
	if out.Worker.KeywordsPerRun <= 0 {
		out.Worker.KeywordsPerRun = 3
	}
	if out.Worker.QualifyBatch <= 0 {
		out.Worker.QualifyBatch = 10
	}
	if out.Harvest.MaxItemsPerKeyword <= 0 {
		out.Harvest.MaxItemsPerKeyword = 30
	}
	if out.Harvest.EnrichWorkers <= 0 {
		out.Harvest.EnrichWorkers = 10
	}
	if out.Harvest.EnrichTimeoutSec <= 0 {
		out.Harvest.EnrichTimeoutSec = 30
	}
	if out.Harvest.EnrichBatchSec <= 0 {
		out.Harvest.EnrichBatchSec = 120
	}
	if out.Harvest.TooSmallBelow <= 0 {
		out.Harvest.TooSmallBelow = 5_000
	}
	if out.Harvest.SmallBelow <= 0 {
		out.Harvest.SmallBelow = 100_000
	}
	if out.Harvest.SweetSpotBelow <= 0 {
		out.Harvest.SweetSpotBelow = 1_000_000
	}
	if out.Harvest.SourceReqPerSec <= 0 {
		out.Harvest.SourceReqPerSec = 1.0
	}
	if out.Harvest.SourceBurst <= 0 {
		out.Harvest.SourceBurst = 2
	}
	if out.Qualify.MaxScore <= 0 {
		out.Qualify.MaxScore = 10
	}
	if out.Qualify.MinScore <= 0 {
		out.Qualify.MinScore = 6
	}
	if out.Qualify.MaxVideoCount <= 0 {
		out.Qualify.MaxVideoCount = 2500
	}
	if out.Qualify.TranscriptMaxChars <= 0 {
		out.Qualify.TranscriptMaxChars = 5000
	}
	if len(out.Followup.CadenceDays) == 0 {
		out.Followup.CadenceDays = []int{3, 7, 10, 15}
	}
	if out.Evaluator.Model == "" {
		out.Evaluator.Model = "gemini-3-flash-preview"
	}
	if out.Evaluator.APIKeyEnv == "" {
		out.Evaluator.APIKeyEnv = "GEMINI_API_KEY"
	}
	if out.Retry.MaxAttempts <= 0 {
		out.Retry.MaxAttempts = 3
	}
	if out.Retry.BaseDelayMillis <= 0 {
		out.Retry.BaseDelayMillis = 500
	}
	if out.Retry.MaxDelayMillis <= 0 {
		out.Retry.MaxDelayMillis = 10_000
	}
	if out.Retry.CooldownSeconds <= 0 {
		out.Retry.CooldownSeconds = 15
	}
	if out.Replies.LookbackDays <= 0 {
		out.Replies.LookbackDays = 14
	}
	if out.Replies.Mailbox == "" {
		out.Replies.Mailbox = "INBOX"
	}

	// ---- Validation rules ----

	if out.Worker.IntervalSeconds < 0 {
		res.addErr("worker.interval_seconds must be >= 0")
	} else if out.Worker.IntervalSeconds > 0 && out.Worker.IntervalSeconds < 30 {
		res.addWarn("worker.interval_seconds is very low (%d) and may cause rate limits.", out.Worker.IntervalSeconds)
	}

	if !sort.IntsAreSorted(out.Followup.CadenceDays) {
		res.addErr("followup.cadence_days must be strictly ascending, got %v", out.Followup.CadenceDays)
	}
	for i := 1; i < len(out.Followup.CadenceDays); i++ {
		if out.Followup.CadenceDays[i] == out.Followup.CadenceDays[i-1] {
			res.addErr("followup.cadence_days has duplicate offset %d", out.Followup.CadenceDays[i])
		}
	}
	if len(out.Followup.CadenceDays) > 0 && out.Followup.CadenceDays[0] <= 0 {
		res.addErr("followup.cadence_days offsets must be positive")
	}

	if out.Qualify.MinScore > out.Qualify.MaxScore {
		res.addErr("qualify.min_score (%d) exceeds qualify.max_score (%d)", out.Qualify.MinScore, out.Qualify.MaxScore)
	}
	if len(out.Qualify.LanguagesAllow) == 0 {
		res.addWarn("qualify.languages_allow is empty; every evaluator language result will disqualify.")
	}

	if out.Harvest.TooSmallBelow >= out.Harvest.SmallBelow ||
		out.Harvest.SmallBelow >= out.Harvest.SweetSpotBelow {
		res.addErr("harvest tier thresholds must ascend: too_small_below < small_below < sweet_spot_below")
	}
	if len(out.Harvest.Disallow) == 0 {
		res.addWarn("harvest.disallow is empty; the fast reject filter is disabled.")
	}

	if out.Dispatch.Enabled {
		if strings.TrimSpace(out.Dispatch.SMTPHost) == "" {
			res.addErr("dispatch.smtp_host is required when dispatch.enabled=true")
		}
		if out.Dispatch.SMTPPort == 0 {
			res.addErr("dispatch.smtp_port is required when dispatch.enabled=true")
		}
		if len(out.Dispatch.Senders) == 0 {
			res.addErr("dispatch.senders is empty; nothing can be sent")
		}
	}

	if out.Replies.Enabled {
		if strings.TrimSpace(out.Replies.IMAPHost) == "" {
			res.addErr("replies.imap_host is required when replies.enabled=true")
		}
		if out.Replies.IMAPPort == 0 {
			res.addErr("replies.imap_port is required when replies.enabled=true")
		}
		if strings.TrimSpace(out.Replies.Username) == "" {
			res.addErr("replies.username is required when replies.enabled=true")
		}
	}

	return out, res
}
