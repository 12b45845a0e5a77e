package qualify

func clampFactor(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Score combines the evaluator's per-factor scores with a contactability
// bonus and clamps the total to the configured band. The breakdown keys
// each contribution so the stored record explains the number.
func Score(ev *Evaluation, hasEmail bool, maxScore int) (int, map[string]int) {
	breakdown := map[string]int{
		"language":    clampFactor(*ev.Language.Score, -2, 2),
		"content_fit": clampFactor(*ev.ContentFit.Score, 0, 3),
		"quality":     clampFactor(*ev.Quality.Score, 0, 2),
		"subscribers": clampFactor(*ev.SubscriberFit.Score, 0, 2),
	}
	if hasEmail {
		breakdown["email_bonus"] = 1
	}

	total := 0
	for _, v := range breakdown {
		total += v
	}
	if total < 0 {
		total = 0
	}
	if total > maxScore {
		total = maxScore
	}
	return total, breakdown
}
