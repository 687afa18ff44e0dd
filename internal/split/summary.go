package split

// Summary reports per-split sizes.
type Summary struct {
	Counts map[Name]int `json:"counts"`
	Total  int          `json:"total"`
}

// Summarize counts the records of every split.
func Summarize(res *Result) Summary {
	s := Summary{Counts: make(map[Name]int, len(Names))}
	for _, n := range Names {
		s.Counts[n] = len(res.Get(n))
	}
	s.Total = res.Total()
	return s
}

// Ratio returns the share of one split, or 0 for an empty result.
func (s Summary) Ratio(n Name) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Counts[n]) / float64(s.Total)
}
