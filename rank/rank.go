/*
Package rank classifies personnel rank strings.

PURPOSE:
  Maps a rank label to a category (officer / non-commissioned / civilian)
  and to a total ordering used for display. Both are pure lookups against
  a closed rank table - there are no side effects and no storage access.

KEY CONCEPTS:
  - Order: the fixed display ordering of all known rank labels
  - Category: which of the three roster buckets a rank belongs to
  - Unknown ranks: classified as CategoryUnknown and sorted after all
    known ranks. They are excluded from category-partitioned views but
    still appear in flat listings.

USAGE:
  cat := rank.Classify("น.อ.")        // rank.CategoryOfficer
  key := rank.SortKey("น.อ.")         // 3
  key  = rank.SortKey("unheard-of")   // len(rank.Order), sorts last

SEE ALSO:
  - muster/service.go: uses SortKey to order availability listings
  - muster/daily.go: uses Classify to partition the daily roster
*/
package rank

// Category is the roster bucket a rank belongs to.
type Category string

const (
	CategoryOfficer         Category = "officer"
	CategoryNonCommissioned Category = "nco"
	CategoryCivilian        Category = "civilian"

	// CategoryUnknown is the explicit sentinel for ranks not present in the
	// table. Callers must never treat it as one of the three real buckets.
	CategoryUnknown Category = ""
)

// Order is the display ordering of every known rank label, most senior first.
// The table is closed: edits here are the only way a rank becomes known.
var Order = []string{
	"น.อ.(พ)", "น.อ.(พ).หญิง", "น.อ.หม่อมหลวง", "น.อ.", "น.อ.หญิง",
	"น.ท.", "น.ท.หญิง", "น.ต.", "น.ต.หญิง",
	"ร.อ.", "ร.อ.หญิง", "ร.ท.", "ร.ท.หญิง", "ร.ต.", "ร.ต.หญิง",
	"พ.อ.อ.(พ)", "พ.อ.อ.", "พ.อ.อ.หญิง", "พ.อ.ท.", "พ.อ.ท.หญิง",
	"พ.อ.ต.", "พ.อ.ต.หญิง", "จ.อ.", "จ.อ.หญิง", "จ.ท.", "จ.ท.หญิง",
	"จ.ต.", "จ.ต.หญิง", "นาย", "นาง", "นางสาว",
}

// commissioned ranks run from น.อ.(พ) through ร.ต.หญิง, non-commissioned from
// พ.อ.อ.(พ) through จ.ต.หญิง, the civilian titles close the table.
const (
	firstNonCommissioned = 15 // index of พ.อ.อ.(พ)
	firstCivilian        = 28 // index of นาย
)

var sortIndex = buildSortIndex()

func buildSortIndex() map[string]int {
	idx := make(map[string]int, len(Order))
	for i, r := range Order {
		idx[r] = i
	}
	return idx
}

// Classify returns the category for a rank label.
// Unknown ranks return CategoryUnknown.
func Classify(rankLabel string) Category {
	i, ok := sortIndex[rankLabel]
	switch {
	case !ok:
		return CategoryUnknown
	case i < firstNonCommissioned:
		return CategoryOfficer
	case i < firstCivilian:
		return CategoryNonCommissioned
	default:
		return CategoryCivilian
	}
}

// SortKey returns the index of a rank in the display ordering.
// Unknown ranks return len(Order) so they sort after all known ranks.
func SortKey(rankLabel string) int {
	if i, ok := sortIndex[rankLabel]; ok {
		return i
	}
	return len(Order)
}
