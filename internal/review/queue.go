package review

import (
	"sort"

	"github.com/Leorasaharia/provider-directory/internal/model"
)

// BuildQueue filters reports to those needing review and orders them by
// descending priority score. The sort is stable, so reports with equal
// scores keep their original relative order; reapplying BuildQueue to its
// own output does not reorder.
func BuildQueue(reports []model.Report) []model.Report {
	queue := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		if r.Status == model.StatusNeedsReview {
			queue = append(queue, r)
		}
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].PriorityScore > queue[j].PriorityScore
	})

	return queue
}
