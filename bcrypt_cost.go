//go:build !race

package forum

// passwordHashCost is deliberately slow; tuned to resist brute force while
// keeping login latency acceptable.
func passwordHashCost() int {
	return 10
}
