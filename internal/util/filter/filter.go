// Package filter provides reusable file filtering logic.
// It is the consumer of committed search queries: the picker applies the
// query against the currently listed folder.
package filter

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/jodinathan/filedrive/internal/models"
)

// Config holds filter configuration.
type Config struct {
	// Include patterns (glob-style). Empty means include all.
	// Example: []string{"*.png", "*.jpg"}
	Include []string

	// Exclude patterns (glob-style). Takes precedence over Include.
	Exclude []string

	// Search terms (case-insensitive substring match).
	// An item must match ALL search terms to be included.
	Search []string

	// FoldersFirst sorts folders ahead of files in the result.
	FoldersFirst bool

	// KeepFolders keeps folders in the result even when they do not match
	// Include patterns, so the user can still navigate while filtering.
	KeepFolders bool
}

// FromQuery builds a filter config from a committed search query.
// Whitespace-separated words become independent search terms; words
// containing glob metacharacters become include patterns instead.
func FromQuery(query string) Config {
	cfg := Config{KeepFolders: true}
	for _, word := range strings.Fields(query) {
		if strings.ContainsAny(word, "*?[") {
			cfg.Include = append(cfg.Include, word)
		} else {
			cfg.Search = append(cfg.Search, word)
		}
	}
	return cfg
}

// Apply filters a slice of file items based on the filter configuration.
// The input slice is not modified.
func Apply(items []models.FileItem, config Config) []models.FileItem {
	noFilters := len(config.Include) == 0 && len(config.Exclude) == 0 && len(config.Search) == 0

	filtered := make([]models.FileItem, 0, len(items))
	for _, item := range items {
		if noFilters {
			filtered = append(filtered, item)
			continue
		}
		if item.IsFolder && config.KeepFolders {
			// Folders bypass Include but still honor Exclude and Search.
			if excluded(item.Name, config.Exclude) {
				continue
			}
			if matchesSearch(item.Name, config.Search) {
				filtered = append(filtered, item)
			}
			continue
		}
		if matches(item.Name, config) {
			filtered = append(filtered, item)
		}
	}

	if config.FoldersFirst {
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].IsFolder && !filtered[j].IsFolder
		})
	}

	return filtered
}

// matches checks if a filename passes the full filter configuration.
func matches(filename string, config Config) bool {
	if excluded(filename, config.Exclude) {
		return false
	}

	if len(config.Include) > 0 {
		included := false
		for _, pattern := range config.Include {
			if globMatch(pattern, filename) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}

	return matchesSearch(filename, config.Search)
}

// excluded checks the exclude patterns (highest priority).
func excluded(filename string, patterns []string) bool {
	for _, pattern := range patterns {
		if globMatch(pattern, filename) {
			return true
		}
	}
	return false
}

// matchesSearch requires every term to appear, case-insensitively.
func matchesSearch(filename string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	lower := strings.ToLower(filename)
	for _, term := range terms {
		if !strings.Contains(lower, strings.ToLower(term)) {
			return false
		}
	}
	return true
}

// globMatch matches pattern against the name and its base, case-insensitively.
func globMatch(pattern, name string) bool {
	pattern = strings.ToLower(pattern)
	name = strings.ToLower(name)
	if matched, _ := filepath.Match(pattern, name); matched {
		return true
	}
	matched, _ := filepath.Match(pattern, filepath.Base(name))
	return matched
}

// ParsePatternList parses a comma-separated list of patterns into a slice.
// Example: "*.png,*.jpg" -> []string{"*.png", "*.jpg"}
func ParsePatternList(patternStr string) []string {
	if patternStr == "" {
		return nil
	}
	parts := strings.Split(patternStr, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}
