package domain

// Stats summarises the collection for the admin analytics panel.
type Stats struct {
	Total             int
	Completed         int
	InProgress        int
	AveragePercentage float64
	SectionCounts     map[string]int
}

func ComputeStats(records []Record) Stats {
	stats := Stats{SectionCounts: make(map[string]int, len(SectionKeys))}
	for _, key := range SectionKeys {
		stats.SectionCounts[key] = 0
	}
	sum := 0
	for _, r := range records {
		stats.Total++
		if r.UserInfo.CompletionStatus == StatusCompleted {
			stats.Completed++
		} else {
			stats.InProgress++
		}
		sum += r.UserInfo.CompletionPercentage
		for key := range r.Sections {
			if _, ok := stats.SectionCounts[key]; ok {
				stats.SectionCounts[key]++
			}
		}
	}
	if stats.Total > 0 {
		stats.AveragePercentage = float64(sum) / float64(stats.Total)
	}
	return stats
}
