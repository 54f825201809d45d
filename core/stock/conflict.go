package stock

import "sort"

// FindOverlap cross-references the item ids a caller selected directly (for
// example, parts added straight onto a service order) against an active
// reservation set for the same context. It returns the item ids that appear
// in both, sorted, so the caller can warn about double-booking the same part
// through two mechanisms. Only pending and confirmed reservations count;
// terminal reservations no longer commit stock.
//
// The detector is a pure function over its inputs and holds no state, so it
// is safe to call on every edit of either set.
func FindOverlap(directSelections []string, activeReservations []Reservation) []string {
	reserved := make(map[string]bool, len(activeReservations))
	for _, r := range activeReservations {
		if r.Status.Active() {
			reserved[r.ItemID] = true
		}
	}

	seen := make(map[string]bool, len(directSelections))
	overlap := make([]string, 0)
	for _, itemID := range directSelections {
		if reserved[itemID] && !seen[itemID] {
			overlap = append(overlap, itemID)
			seen[itemID] = true
		}
	}

	sort.Strings(overlap)
	return overlap
}
