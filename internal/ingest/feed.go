package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobtailor/internal/config"
	"jobtailor/internal/logging"
	"jobtailor/pkg/models"
)

// Source delivers raw postings from one job board.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Posting, error)
}

// FeedSource pulls postings from an HTTP JSON feed. Job boards disagree on
// field names and envelope shapes, so decoding is permissive: the first
// recognized field wins.
type FeedSource struct {
	cfg    config.FeedConfig
	client *http.Client
	logger *zap.Logger
}

// NewFeedSource creates a source for one configured feed.
func NewFeedSource(cfg config.FeedConfig) *FeedSource {
	return &FeedSource{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logging.GetGlobalLogger(),
	}
}

func (f *FeedSource) Name() string { return f.cfg.Name }

// Fetch downloads and decodes the feed, applying the configured keyword
// filter to posting titles.
func (f *FeedSource) Fetch(ctx context.Context) ([]models.Posting, error) {
	u, err := url.Parse(f.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	q := u.Query()
	for k, v := range f.cfg.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", f.cfg.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed %s returned status %d: %s", f.cfg.Name, resp.StatusCode, string(b))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	items, err := decodeFeedItems(body)
	if err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", f.cfg.Name, err)
	}

	var postings []models.Posting
	for _, item := range items {
		p := item.toPosting(f.cfg.Name)
		if p.Title == "" || p.Company == "" {
			continue
		}
		if !matchesKeywords(p.Title, f.cfg.Keywords) {
			continue
		}
		postings = append(postings, p)
	}

	f.logger.Debug("feed fetched",
		zap.String("feed", f.cfg.Name),
		zap.Int("items", len(items)),
		zap.Int("kept", len(postings)),
	)
	return postings, nil
}

// feedItem covers the field name variants seen across feed APIs.
type feedItem struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	CompanyName string `json:"company_name"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	ApplyURL    string `json:"apply_url"`
	Description string `json:"description"`
	Text        string `json:"text"`
}

type feedEnvelope struct {
	Jobs    []feedItem `json:"jobs"`
	Docs    []feedItem `json:"docs"`
	Results []feedItem `json:"results"`
}

func decodeFeedItems(body []byte) ([]feedItem, error) {
	var items []feedItem
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	var env feedEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	switch {
	case len(env.Jobs) > 0:
		return env.Jobs, nil
	case len(env.Docs) > 0:
		return env.Docs, nil
	default:
		return env.Results, nil
	}
}

func (it feedItem) toPosting(feedName string) models.Posting {
	return models.Posting{
		Platform:    models.Platform(feedName),
		PlatformID:  firstNonEmpty(it.ID, it.Key),
		Title:       strings.TrimSpace(firstNonEmpty(it.Title, it.Name)),
		Company:     strings.TrimSpace(firstNonEmpty(it.Company, it.CompanyName)),
		URL:         firstNonEmpty(it.URL, it.Link, it.ApplyURL),
		Description: firstNonEmpty(it.Description, it.Text),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func matchesKeywords(title string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
