package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"outreach-engine/internal/domain"
)

// WatchExcerpt pulls a video's watch page and assembles a transcript
// stand-in from its title and full description. Caption tracks need a
// signed player request; the page text is the longest excerpt available
// without one.
type WatchExcerpt struct {
	hc      *http.Client
	limiter *HostLimiter
}

func NewWatchExcerpt(limiter *HostLimiter) *WatchExcerpt {
	return &WatchExcerpt{
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (w *WatchExcerpt) Excerpt(ctx context.Context, videoID string, maxChars int) (string, error) {
	if videoID == "" {
		return "", nil
	}
	u := "https://www.youtube.com/watch?v=" + videoID
	if w.limiter != nil {
		if err := w.limiter.WaitURL(ctx, u); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept-Language", "en")

	res, err := w.hc.Do(req)
	if err != nil {
		return "", &domain.TransientError{Op: "transcript excerpt", Err: err}
	}
	defer res.Body.Close()

	if err := classifyStatus("transcript excerpt", res.StatusCode); err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", &domain.PermanentError{Op: "transcript excerpt", Err: fmt.Errorf("parse html: %w", err)}
	}

	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content")
	if !ok || strings.TrimSpace(desc) == "" {
		desc, _ = doc.Find(`meta[name="description"]`).Attr("content")
	}
	return buildExcerpt(title, desc, maxChars), nil
}

func buildExcerpt(title, desc string, maxChars int) string {
	title = strings.TrimSpace(title)
	desc = strings.TrimSpace(desc)
	if title == "" && desc == "" {
		return ""
	}
	s := fmt.Sprintf("Title: %s\n\nDescription: %s", title, desc)
	if maxChars > 0 && len(s) > maxChars {
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
