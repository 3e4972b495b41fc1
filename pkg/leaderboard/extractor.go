package leaderboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// Column names carrying identity/pricing rather than benchmark scores.
const (
	ColumnInputCost  = "Input $/M"
	ColumnOutputCost = "Output $/M"
)

// metadataColumns are leaderboard columns that are never benchmarks.
var metadataColumns = map[string]bool{
	"Rank": true, "Model": true, "Country": true, "License": true,
	"Context": true, "Input": true, "Output": true, "Speed": true,
	"Organization": true, "Created": true, "Description": true,
	"Multimodal": true,
	ColumnInputCost: true, ColumnOutputCost: true,
}

// Group selects one origin-filtered slice of the upstream leaderboard.
type Group struct {
	Code  string // origin code recorded on every extracted model, e.g. "US"
	URL   string // fully parameterized leaderboard URL for this group
	Limit int    // max rows taken from the top of the table
}

// Extractor fetches leaderboard tables and turns them into RawModel
// sequences. Every cell is captured verbatim; numeric interpretation is the
// normalizer's job.
type Extractor struct {
	client *http.Client
	retry  RetryPolicy
	log    *logrus.Entry
}

// NewExtractor creates an extractor with the given retry schedule.
func NewExtractor(retry RetryPolicy, log *logrus.Entry) *Extractor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Extractor{
		client: &http.Client{Timeout: 30 * time.Second},
		retry:  retry,
		log:    log,
	}
}

// Extract scrapes every configured group in order and returns the combined
// model sequence plus the benchmark column list. The first group's headers
// are canonical for the run. Extraction indexes are assigned across the
// concatenation, so downstream ordering stays deterministic.
func (e *Extractor) Extract(ctx context.Context, groups []Group) ([]RawModel, []string, error) {
	var (
		combined   []RawModel
		benchmarks []string
	)

	for i, g := range groups {
		models, headers, err := e.extractGroup(ctx, g)
		if err != nil {
			return nil, nil, err
		}
		if i == 0 {
			benchmarks = headers
		}
		combined = append(combined, models...)
	}

	for i := range combined {
		combined[i].Index = i
	}

	if len(combined) == 0 {
		url := ""
		if len(groups) > 0 {
			url = groups[0].URL
		}
		return nil, nil, &EmptyResultError{URL: url}
	}
	return combined, benchmarks, nil
}

func (e *Extractor) extractGroup(ctx context.Context, g Group) ([]RawModel, []string, error) {
	body, err := e.get(ctx, g.URL)
	if err != nil {
		return nil, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse leaderboard %s: %w", g.URL, err)
	}

	var headers []string
	doc.Find("thead th").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(s.Text()))
	})

	var benchmarks []string
	for _, h := range headers {
		if h != "" && !metadataColumns[h] {
			benchmarks = append(benchmarks, h)
		}
	}

	var models []RawModel
	doc.Find("tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if g.Limit > 0 && len(models) >= g.Limit {
			return false
		}

		link := row.Find("a").First()
		name := strings.TrimSpace(link.Text())
		if name == "" {
			return true // header filler or ad row, skip
		}
		href, _ := link.Attr("href")
		if href != "" && !strings.HasPrefix(href, "http") {
			href = baseOf(g.URL) + href
		}

		m := RawModel{
			Name:       name,
			Origin:     g.Code,
			DetailURL:  href,
			Cells:      make(map[string]RawCell),
			InputCost:  MissingCell(),
			OutputCost: MissingCell(),
		}

		cells := row.Find("td")
		for col, header := range headers {
			if col >= cells.Length() || header == "" {
				continue
			}
			text := strings.TrimSpace(cells.Eq(col).Text())
			switch header {
			case ColumnInputCost:
				m.InputCost = ParseCell(text)
			case ColumnOutputCost:
				m.OutputCost = ParseCell(text)
			case "Organization":
				m.Company = text
			case "Created":
				m.Created = text
			default:
				if !metadataColumns[header] {
					m.Cells[header] = ParseCell(text)
				}
			}
		}

		models = append(models, m)
		return true
	})

	e.log.WithFields(logrus.Fields{
		"group":      g.Code,
		"models":     len(models),
		"benchmarks": len(benchmarks),
	}).Info("extracted leaderboard group")

	return models, benchmarks, nil
}

// Enrich visits each model's detail page and fills in description and
// company metadata. A failure for one model logs a warning and leaves its
// enrichment fields absent; it never aborts the others.
func (e *Extractor) Enrich(ctx context.Context, models []RawModel) {
	for i := range models {
		if models[i].DetailURL == "" {
			continue
		}
		if err := e.enrichOne(ctx, &models[i]); err != nil {
			e.log.WithField("model", models[i].Name).WithError(err).Warn("detail page enrichment failed")
		}
	}
}

func (e *Extractor) enrichOne(ctx context.Context, m *RawModel) error {
	body, err := e.get(ctx, m.DetailURL)
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse detail page: %w", err)
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		m.Description = truncate(strings.TrimSpace(desc), 200)
	}
	if m.Company == "" {
		org := strings.TrimSpace(doc.Find(`[data-field="organization"]`).First().Text())
		m.Company = truncate(org, 100)
	}
	return nil
}

// get fetches a URL through the retry schedule. Exhaustion yields a
// FetchError carrying the attempt count.
func (e *Extractor) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	attempts, err := e.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", "airace/1.0")

		resp, err := e.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &FetchError{URL: url, Attempts: attempts, Err: err}
	}
	return body, nil
}

func baseOf(url string) string {
	rest := url
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			return url[:len(url)-len(rest)+j]
		}
	}
	return url
}

// truncate caps s at maxLen runes, never splitting a multibyte character.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
