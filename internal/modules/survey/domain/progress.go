package domain

import "math"

// TotalSteps budgets one extra slot for the conditional sub-screens.
// Demographics and family both expand, so the bar never reaches the last step.
var TotalSteps = len(MainOrder) + 1

type Progress struct {
	Step  int
	Total int
	Label string
}

// Fraction is the progress bar fill in [0,1].
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Step) / float64(p.Total)
}

// ComputeProgress maps a main-section index and the rendered screen to a
// step. Sub-screens report the step of their parent slot.
func ComputeProgress(index int, screen Screen) Progress {
	if index < 0 {
		index = 0
	}
	if index > len(MainOrder)-1 {
		index = len(MainOrder) - 1
	}
	return Progress{Step: index + 1, Total: TotalSteps, Label: Label(screen)}
}

// CompletionPercentage is round(100 * answered main sections / 6).
func CompletionPercentage(responses Responses) int {
	present := 0
	for _, section := range MainOrder {
		if _, ok := responses[section]; ok {
			present++
		}
	}
	return int(math.Round(100 * float64(present) / float64(len(MainOrder))))
}
