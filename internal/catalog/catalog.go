package catalog

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// Catalog is the ordered collection of Items currently subject to search.
// Not safe for concurrent use; all mutation happens on the loop that owns it.
type Catalog struct {
	items []Item
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// FromItems creates a catalog over the given items, keeping their order.
func FromItems(items []Item) *Catalog {
	c := &Catalog{items: make([]Item, len(items))}
	copy(c.items, items)
	return c
}

// Add appends an item, preserving insertion order.
func (c *Catalog) Add(item Item) {
	c.items = append(c.items, item)
}

// Append appends a batch of items.
func (c *Catalog) Append(items []Item) {
	c.items = append(c.items, items...)
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns the backing slice. Callers must not mutate it.
func (c *Catalog) Items() []Item {
	return c.items
}

// source adapts the catalog's display names to fuzzy.Source.
type source struct {
	items []Item
}

func (s source) String(i int) string { return s.items[i].Name }
func (s source) Len() int            { return len(s.items) }

// Search ranks items against the query. An empty query returns the whole
// catalog in insertion order (full browse). Non-empty queries keep only
// case-insensitive subsequence matches. Compact matches near the start
// of the name win over scattered ones: "ff" puts Firefox above
// Free Form Text even though the latter matches two word starts.
// Remaining ties fall back to the matcher's score, then name length,
// then insertion order.
func (c *Catalog) Search(query string) []Item {
	if query == "" {
		return c.items
	}

	matches := fuzzy.FindFrom(query, source{items: c.items})
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if sa, sb := matchSpan(a), matchSpan(b); sa != sb {
			return sa < sb
		}
		if a.MatchedIndexes[0] != b.MatchedIndexes[0] {
			return a.MatchedIndexes[0] < b.MatchedIndexes[0]
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return len(a.Str) < len(b.Str)
	})

	results := make([]Item, 0, len(matches))
	for _, m := range matches {
		results = append(results, c.items[m.Index])
	}
	return results
}

// matchSpan is the distance covered by the matched runes.
func matchSpan(m fuzzy.Match) int {
	return m.MatchedIndexes[len(m.MatchedIndexes)-1] - m.MatchedIndexes[0]
}
