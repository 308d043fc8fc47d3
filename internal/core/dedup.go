package core

import "time"

// DedupWindow is the span within which two structurally identical candidates
// are treated as one real-world purchase. It covers the extractor firing
// twice for one checkout (initial load plus a mutation-triggered rescan)
// while letting two genuine same-amount purchases through once they are far
// enough apart.
const DedupWindow = 5 * time.Minute

// IsDuplicate reports whether the candidate repeats a recently recorded
// purchase: same amount, same platform, recorded strictly less than
// DedupWindow away from now. At exactly the window boundary the candidate is
// not a duplicate.
func IsDuplicate(candidate PurchaseCandidate, history []Purchase, now time.Time) bool {
	nowMillis := now.UnixMilli()
	window := DedupWindow.Milliseconds()
	for _, p := range history {
		diff := nowMillis - p.Timestamp
		if diff < 0 {
			diff = -diff
		}
		if p.Amount.Cents == candidate.Amount.Cents &&
			p.Platform == candidate.Platform &&
			diff < window {
			return true
		}
	}
	return false
}
