package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"outreach-engine/internal/domain"
)

var (
	subscriberRe = regexp.MustCompile(`([\d.,]+[KMBkmb]?)\s+subscribers`)
	videoCountRe = regexp.MustCompile(`([\d,]+)\s+videos`)
)

// AboutEnricher scrapes a channel's about page for the subscriber count,
// description and video count.
type AboutEnricher struct {
	hc      *http.Client
	limiter *HostLimiter
}

func NewAboutEnricher(limiter *HostLimiter) *AboutEnricher {
	return &AboutEnricher{
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (e *AboutEnricher) Lookup(ctx context.Context, entityID string) (Enrichment, error) {
	u := fmt.Sprintf("https://www.youtube.com/channel/%s/about", entityID)
	if e.limiter != nil {
		if err := e.limiter.WaitURL(ctx, u); err != nil {
			return Enrichment{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Enrichment{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept-Language", "en")

	res, err := e.hc.Do(req)
	if err != nil {
		return Enrichment{}, &domain.TransientError{Op: "enrich lookup", Err: err}
	}
	defer res.Body.Close()

	if err := classifyStatus("enrich lookup", res.StatusCode); err != nil {
		return Enrichment{}, err
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return Enrichment{}, &domain.PermanentError{Op: "enrich lookup", Err: fmt.Errorf("parse html: %w", err)}
	}

	var enr Enrichment

	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		enr.ProfileText = strings.TrimSpace(desc)
	}
	if enr.ProfileText == "" {
		if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			enr.ProfileText = strings.TrimSpace(desc)
		}
	}

	// Counts live in the embedded page data, not the DOM; regex over the
	// raw document text is the steadiest way to get at them.
	body, _ := doc.Html()
	if m := subscriberRe.FindStringSubmatch(body); len(m) == 2 {
		if n, ok := parseHumanCount(m[1]); ok {
			enr.SubscriberCount = &n
		}
	}
	if m := videoCountRe.FindStringSubmatch(body); len(m) == 2 {
		if n, ok := parseHumanCount(m[1]); ok {
			enr.VideoCount = int(n)
		}
	}

	return enr, nil
}
