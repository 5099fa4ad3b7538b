package graph

import (
	"sort"
	"strings"

	"github.com/siherrmann/meetgraph/model"
)

// Before reports whether discussion point a comes before b in a timeline:
// by clock offset, points without an offset last, then by timestamp text.
func Before(a, b *model.DiscussionPoint) bool {
	switch {
	case a.Offset != nil && b.Offset != nil:
		if *a.Offset != *b.Offset {
			return *a.Offset < *b.Offset
		}
	case a.Offset != nil:
		return true
	case b.Offset != nil:
		return false
	}

	switch {
	case a.Timestamp != nil && b.Timestamp != nil:
		return *a.Timestamp < *b.Timestamp
	case a.Timestamp != nil:
		return true
	default:
		return false
	}
}

// SortChronologically orders points in place and keeps insertion order for ties.
func SortChronologically(points []*model.DiscussionPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return Before(points[i], points[j])
	})
}

// NormalizeKeywords lower-cases and trims keywords and drops empty ones.
func NormalizeKeywords(keywords []string) []string {
	normalized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			normalized = append(normalized, keyword)
		}
	}
	return normalized
}
