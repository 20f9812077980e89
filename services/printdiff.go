package services

// ComputePrintDiff returns, for every menu item whose current quantity is above
// what was already printed, the difference. Unchanged and reduced items are
// left out, so a reduction is never "un-printed". An empty result means there
// is nothing new for the kitchen.
func ComputePrintDiff(current, printed map[uint]int) map[uint]int {
	diff := make(map[uint]int)
	for id, qty := range current {
		if d := qty - printed[id]; d > 0 {
			diff[id] = d
		}
	}
	return diff
}
