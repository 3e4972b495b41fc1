// Package news maintains news.json: a capped, relevance-ranked list of
// AI-race headlines collected from RSS/Atom feeds.
package news

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

const maxHeadlineLength = 120

// Feed is a named RSS/Atom feed URL.
type Feed struct {
	Name string
	URL  string
}

// Article is one transformed news item.
type Article struct {
	ID             string  `json:"id"`
	Headline       string  `json:"headline"`
	URL            string  `json:"url"`
	Source         string  `json:"source"`
	Country        string  `json:"country"`
	PublishedAt    string  `json:"publishedAt"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// Collector fetches and transforms articles from configured feeds.
type Collector struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []Feed
	log    *logrus.Entry
}

// NewCollector creates a collector over the given feeds.
func NewCollector(feeds []Feed, log *logrus.Entry) *Collector {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Collector{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
		log:    log,
	}
}

// Collect fetches every feed and returns the transformed articles. A
// failing feed logs a warning and is skipped; it never aborts the others.
func (c *Collector) Collect(ctx context.Context) []Article {
	var all []Article

	for _, feed := range c.feeds {
		articles, err := c.collectFeed(ctx, feed)
		if err != nil {
			c.log.WithField("feed", feed.Name).WithError(err).Warn("news feed failed")
			continue
		}
		all = append(all, articles...)
	}

	return all
}

func (c *Collector) collectFeed(ctx context.Context, feed Feed) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "airace/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}

	var articles []Article
	for _, entry := range parsed.Items {
		published := ""
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC().Format(time.RFC3339)
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC().Format(time.RFC3339)
		}

		a := Article{
			ID:             articleID(entry.Link, published),
			Headline:       cleanHeadline(entry.Title),
			URL:            entry.Link,
			Source:         feed.Name,
			Country:        classifyCountry(entry.Title + " " + entry.Description),
			PublishedAt:    published,
			RelevanceScore: relevance(entry.Title + " " + entry.Description),
		}
		if a.Headline == "" || a.URL == "" {
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// articleID derives a stable dedup key from URL plus publication date.
func articleID(url, published string) string {
	sum := sha256.Sum256([]byte(url + published))
	return hex.EncodeToString(sum[:])[:16]
}

// cleanHeadline trims and caps a headline at a word boundary. The cap
// counts runes, not bytes, so CJK headlines are never split mid-character.
func cleanHeadline(title string) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= maxHeadlineLength {
		return title
	}
	cut := string(runes[:maxHeadlineLength-3])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
