package help

import "sort"

// Category groups commands in the listing.
type Category string

// Command categories.
const (
	CategorySession Category = "session"
	CategoryRequest Category = "request"
	CategoryConfig  Category = "config"
	CategoryUsers   Category = "users"
	CategoryContent Category = "content"
	CategoryAdmin   Category = "admin"
	CategoryGeneral Category = "general"
)

// CategoryOrder is the order categories appear in the listing.
var CategoryOrder = []Category{
	CategorySession,
	CategoryRequest,
	CategoryConfig,
	CategoryUsers,
	CategoryContent,
	CategoryAdmin,
	CategoryGeneral,
}

var categoryNames = map[Category]string{
	CategorySession: "Session",
	CategoryRequest: "Requests",
	CategoryConfig:  "Tenant Configuration",
	CategoryUsers:   "Users",
	CategoryContent: "Content",
	CategoryAdmin:   "Administration",
	CategoryGeneral: "General",
}

// DisplayName returns the heading shown for the category.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// GroupByCategory buckets entries by category, each bucket sorted by name.
// Entries with an unknown category land in CategoryGeneral.
func GroupByCategory(entries []Entry) map[Category][]Entry {
	out := make(map[Category][]Entry)
	for _, e := range entries {
		cat := e.Category
		if _, ok := categoryNames[cat]; !ok {
			cat = CategoryGeneral
		}
		out[cat] = append(out[cat], e)
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	return out
}
