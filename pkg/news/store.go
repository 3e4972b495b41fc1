package news

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

const maxArticles = 20

// File is the persisted news.json shape.
type File struct {
	LastUpdated string    `json:"lastUpdated"`
	Items       []Article `json:"items"`
}

// Merge combines freshly collected articles with the existing file
// contents: dedup by id and near-identical headline, relevance filter,
// sort by relevance then recency, cap at maxArticles.
func Merge(fresh, existing []Article) []Article {
	// When anything relevant came in, drop the zero-relevance noise.
	var relevant []Article
	for _, a := range fresh {
		if a.RelevanceScore > 0 {
			relevant = append(relevant, a)
		}
	}
	if len(relevant) > 0 {
		fresh = relevant
	}

	combined := append(append([]Article{}, fresh...), existing...)
	deduped := deduplicate(combined)

	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].RelevanceScore != deduped[j].RelevanceScore {
			return deduped[i].RelevanceScore > deduped[j].RelevanceScore
		}
		return deduped[i].PublishedAt > deduped[j].PublishedAt
	})

	if len(deduped) > maxArticles {
		deduped = deduped[:maxArticles]
	}
	return deduped
}

func deduplicate(articles []Article) []Article {
	seenIDs := make(map[string]bool)
	seenTitles := make(map[string]bool)

	var unique []Article
	for _, a := range articles {
		titleKey := strings.ToLower(strings.TrimSpace(a.Headline))
		if len(titleKey) > 60 {
			titleKey = titleKey[:60]
		}
		if seenIDs[a.ID] || seenTitles[titleKey] {
			continue
		}
		seenIDs[a.ID] = true
		seenTitles[titleKey] = true
		unique = append(unique, a)
	}
	return unique
}

// Load reads an existing news file; a missing file is an empty one.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return File{}, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Save writes the news file atomically via a temp-file rename.
func Save(path string, items []Article, now time.Time) error {
	f := File{
		LastUpdated: now.UTC().Format(time.RFC3339),
		Items:       items,
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal news: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
