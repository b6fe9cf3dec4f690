package internal

import (
	"math"
	"sort"
)

// Stats holds the derived numbers shown in the transcript header. They are
// recomputed from the full message log on every change, never maintained
// incrementally.
type Stats struct {
	TokensIn  int
	TokensOut int
	P50       int
	P95       int
}

// Percentile returns the nearest-rank percentile of values: sort ascending
// and take the element at floor((p/100)*(n-1)). Returns 0 for empty input.
func Percentile(values []int, p float64) int {
	if len(values) == 0 {
		return 0
	}
	s := append([]int(nil), values...)
	sort.Ints(s)
	idx := int(math.Floor(p / 100 * float64(len(s)-1)))
	return s[idx]
}

// ComputeStats sums token counts across all messages (absent counts
// contribute zero) and takes p50/p95 over the latencies recorded on
// assistant messages.
func ComputeStats(messages []Message) Stats {
	var st Stats
	var latencies []int
	for _, m := range messages {
		st.TokensIn += m.TokensIn
		st.TokensOut += m.TokensOut
		if m.Role == RoleAssistant && m.LatencyMs > 0 {
			latencies = append(latencies, m.LatencyMs)
		}
	}
	st.P50 = Percentile(latencies, 50)
	st.P95 = Percentile(latencies, 95)
	return st
}
