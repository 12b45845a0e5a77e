package frontier

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/retry"
	"outreach-engine/internal/store"
)

// Generator produces fresh search terms given a list of recently used
// ones to avoid. The result is newline-delimited text.
type Generator interface {
	Generate(ctx context.Context, avoid []string) (string, error)
}

// Frontier owns the pool of search terms the harvester draws from.
type Frontier struct {
	db     *sql.DB
	gen    Generator
	policy retry.Policy
}

func New(db *sql.DB, gen Generator, policy retry.Policy) *Frontier {
	return &Frontier{db: db, gen: gen, policy: policy}
}

// TakeBatch returns up to n unused keywords without claiming them.
func (f *Frontier) TakeBatch(ctx context.Context, n int) ([]string, error) {
	return store.TakeKeywords(ctx, f.db, n)
}

// Claim atomically marks a keyword used; false means another run got
// there first.
func (f *Frontier) Claim(ctx context.Context, keyword string) (bool, error) {
	return store.ClaimKeyword(ctx, f.db, keyword)
}

func (f *Frontier) CountAvailable(ctx context.Context) (int, error) {
	return store.CountAvailableKeywords(ctx, f.db)
}

// Replenish asks the generator for new terms when the pool runs dry.
// Terms already known (case-insensitively) are dropped; the rest are
// inserted with insert-if-absent semantics, so replenishing twice never
// duplicates rows.
func (f *Frontier) Replenish(ctx context.Context) (added int, err error) {
	if f.gen == nil {
		return 0, fmt.Errorf("replenish: no keyword generator configured")
	}

	avoid, err := store.RecentlyUsedKeywords(ctx, f.db, 30)
	if err != nil {
		return 0, fmt.Errorf("replenish: load avoid list: %w", err)
	}

	var raw string
	err = f.policy.Do(ctx, "keyword-generate", func(ctx context.Context) error {
		var gerr error
		raw, gerr = f.gen.Generate(ctx, avoid)
		return gerr
	})
	if err != nil {
		return 0, fmt.Errorf("replenish: generate: %w", err)
	}

	known, err := store.AllKeywords(ctx, f.db)
	if err != nil {
		return 0, fmt.Errorf("replenish: load known: %w", err)
	}

	for _, term := range ParseTerms(raw) {
		if known[strings.ToLower(term)] {
			continue
		}
		ok, err := store.InsertKeywordIgnore(ctx, f.db, term)
		if err != nil {
			return added, err
		}
		if ok {
			known[strings.ToLower(term)] = true
			added++
		}
	}

	log.Printf("[frontier] replenished pool with %d new keywords", added)
	return added, nil
}

// ParseTerms splits generator output into clean terms, dropping blank
// lines and list markers.
func ParseTerms(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// List returns pooled keywords, unused only unless includeUsed is set.
func (f *Frontier) List(ctx context.Context, includeUsed bool) ([]domain.Keyword, error) {
	kws, err := store.ListKeywords(ctx, f.db, false)
	if err != nil || includeUsed {
		return kws, err
	}
	var out []domain.Keyword
	for _, k := range kws {
		if !k.Used {
			out = append(out, k)
		}
	}
	return out, nil
}

// SeedFromFile loads one keyword per line, skipping comments. Used once
// to bootstrap a fresh store.
func (f *Frontier) SeedFromFile(ctx context.Context, path string) (added int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ok, err := store.InsertKeywordIgnore(ctx, f.db, line)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, sc.Err()
}
