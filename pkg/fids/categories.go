package fids

import (
	"strings"

	"github.com/samber/lo"
)

// AllCategories selects every known category.
const AllCategories = "all"

// Categories lists the YUDL fid export views, in processing order.
var Categories = []string{"audio", "documents", "files", "images", "videos"}

// ParseCategories splits a comma-separated selection into known and unknown
// category names, keeping the order given. "all" selects every category.
// Blank entries are ignored.
func ParseCategories(selection string) (known []string, unknown []string) {
	if strings.TrimSpace(selection) == AllCategories {
		return append([]string(nil), Categories...), nil
	}

	for _, name := range strings.Split(selection, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if lo.Contains(Categories, name) {
			known = append(known, name)
		} else {
			unknown = append(unknown, name)
		}
	}

	return known, unknown
}
