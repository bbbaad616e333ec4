package tour

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	anchorStrip  = regexp.MustCompile(`[^a-z0-9\s-]`)
	anchorSpaces = regexp.MustCompile(`\s+`)
	anchorDashes = regexp.MustCompile(`-+`)
)

// Anchor turns a waypoint title into the fragment used in shareable links.
func Anchor(title string) string {
	if title == "" {
		return ""
	}
	a := strings.ToLower(title)
	a = anchorStrip.ReplaceAllString(a, "")
	a = anchorSpaces.ReplaceAllString(a, "-")
	a = anchorDashes.ReplaceAllString(a, "-")
	return strings.Trim(a, "-")
}

// IndexForAnchor returns the first waypoint whose title anchors to a, or -1.
func (t *Tour) IndexForAnchor(a string) int {
	a = strings.TrimPrefix(a, "#")
	if a == "" || t == nil {
		return -1
	}
	for i := range t.Waypoints {
		if Anchor(t.Waypoints[i].Title) == a {
			return i
		}
	}
	return -1
}

// ResolveURL leaves absolute http(s) URLs and CDS HiPS identifiers alone and
// prefixes everything else with base.
func ResolveURL(base, rel string) string {
	switch {
	case rel == "":
		return rel
	case strings.HasPrefix(rel, "http://"), strings.HasPrefix(rel, "https://"):
		return rel
	case strings.HasPrefix(rel, "CDS/P/"):
		return rel
	case base == "":
		return rel
	case strings.HasPrefix(rel, base):
		return rel
	}
	return base + rel
}

// FindLatestTour finds the most recent tour descriptor in dir
func FindLatestTour(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read tours directory: %w", err)
	}

	var tours []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			tours = append(tours, filepath.Join(dir, entry.Name()))
		}
	}

	if len(tours) == 0 {
		return "", fmt.Errorf("no tour files found in %s", dir)
	}

	// Sort by modification time (newest first)
	sort.Slice(tours, func(i, j int) bool {
		infoI, _ := os.Stat(tours[i])
		infoJ, _ := os.Stat(tours[j])
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return tours[0], nil
}
