package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"outreach-engine/internal/domain"
)

const (
	searchURL = "https://www.youtube.com/youtubei/v1/search"

	// innertube web client identity; the search endpoint refuses
	// requests without one.
	clientName    = "WEB"
	clientVersion = "2.20250801.01.00"

	// sort-by-upload-date filter param
	sortByUploadDate = "CAI%3D"
)

// YouTubeSearch queries the public innertube search endpoint and walks the
// renderer tree for video results. Items whose owning channel cannot be
// extracted are skipped, never fatal.
type YouTubeSearch struct {
	hc      *http.Client
	limiter *HostLimiter
}

func NewYouTubeSearch(limiter *HostLimiter) *YouTubeSearch {
	return &YouTubeSearch{
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *YouTubeSearch) Query(ctx context.Context, term string, limit int) ([]Item, error) {
	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, searchURL); err != nil {
			return nil, err
		}
	}

	payload := map[string]any{
		"context": map[string]any{
			"client": map[string]any{
				"clientName":    clientName,
				"clientVersion": clientVersion,
				"hl":            "en",
				"gl":            "US",
			},
		},
		"query":  term,
		"params": sortByUploadDate,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, &domain.TransientError{Op: "source query", Err: err}
	}
	defer res.Body.Close()

	if err := classifyStatus("source query", res.StatusCode); err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, &domain.TransientError{Op: "source query", Err: fmt.Errorf("decode: %w", err)}
	}

	items := walkVideoRenderers(doc, limit)
	return items, nil
}

func classifyStatus(op string, code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return &domain.TransientError{
			Op:       op,
			Err:      fmt.Errorf("status %d", code),
			Cooldown: 30 * time.Second,
		}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &domain.PermanentError{Op: op, Err: fmt.Errorf("status %d", code)}
	case code >= 500:
		return &domain.TransientError{Op: op, Err: fmt.Errorf("status %d", code)}
	case code >= 400:
		return &domain.PermanentError{Op: op, Err: fmt.Errorf("status %d", code)}
	}
	return nil
}

// walkVideoRenderers digs through the renderer tree collecting
// videoRenderer nodes wherever they appear.
func walkVideoRenderers(node any, limit int) []Item {
	var out []Item
	var walk func(any)
	walk = func(n any) {
		if limit > 0 && len(out) >= limit {
			return
		}
		switch v := n.(type) {
		case map[string]any:
			if vr, ok := v["videoRenderer"].(map[string]any); ok {
				if it, ok := itemFromRenderer(vr); ok {
					out = append(out, it)
				}
				return
			}
			for _, child := range v {
				walk(child)
			}
		case []any:
			for _, child := range v {
				walk(child)
			}
		}
	}
	walk(node)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func itemFromRenderer(vr map[string]any) (Item, bool) {
	var it Item

	it.ItemID, _ = vr["videoId"].(string)
	it.Title = firstRunText(vr["title"])

	owner, _ := vr["ownerText"].(map[string]any)
	runs, _ := owner["runs"].([]any)
	if len(runs) == 0 {
		return it, false
	}
	run, _ := runs[0].(map[string]any)
	it.EntityName, _ = run["text"].(string)

	nav, _ := run["navigationEndpoint"].(map[string]any)
	browse, _ := nav["browseEndpoint"].(map[string]any)
	it.EntityID, _ = browse["browseId"].(string)
	if it.EntityID == "" {
		// no channel id means nothing to dedup or enrich against
		return it, false
	}
	if base, _ := browse["canonicalBaseUrl"].(string); base != "" {
		it.EntityURL = "https://youtube.com" + base
	} else {
		it.EntityURL = "https://youtube.com/channel/" + it.EntityID
	}

	if snippets, ok := vr["detailedMetadataSnippets"].([]any); ok && len(snippets) > 0 {
		if sn, ok := snippets[0].(map[string]any); ok {
			it.Description = firstRunText(sn["snippetText"])
		}
	}
	it.Engagement = simpleText(vr["viewCountText"])
	it.PublishedText = simpleText(vr["publishedTimeText"])

	return it, true
}

func firstRunText(v any) string {
	m, _ := v.(map[string]any)
	runs, _ := m["runs"].([]any)
	if len(runs) == 0 {
		return ""
	}
	run, _ := runs[0].(map[string]any)
	s, _ := run["text"].(string)
	return s
}

func simpleText(v any) string {
	m, _ := v.(map[string]any)
	s, _ := m["simpleText"].(string)
	return s
}

// parseHumanCount turns "1.2M" / "830K" / "250,000" style count tokens
// into an integer. Returns false when the token carries no number.
func parseHumanCount(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}

	mult := int64(1)
	switch s[len(s)-1] {
	case 'K', 'k':
		mult, s = 1_000, s[:len(s)-1]
	case 'M', 'm':
		mult, s = 1_000_000, s[:len(s)-1]
	case 'B', 'b':
		mult, s = 1_000_000_000, s[:len(s)-1]
	}

	clean := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			continue
		}
		clean = append(clean, s[i])
	}
	f, err := strconv.ParseFloat(string(clean), 64)
	if err != nil {
		return 0, false
	}
	return int64(f * float64(mult)), true
}
