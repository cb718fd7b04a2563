package processor

import (
	"github.com/samber/lo"
	"github.com/web3tea/fixture-sentinel/models"
)

// attentionCategories are change categories that affect whether people can
// show up at the right place at the right time. They escalate an envelope
// regardless of the publisher's own priority level.
var attentionCategories = []string{
	models.CategoryTimeChange,
	models.CategoryDateChange,
	models.CategoryVenueChange,
	models.CategoryOfficialsChange,
}

// HasHighPriorityChanges reports whether any change is marked high priority
// by the publisher or falls into an attention category. An empty list is
// never high priority. The result steers alerting and logging only; the
// reconcile path is identical either way.
func HasHighPriorityChanges(changes []models.DetailedChange) bool {
	return lo.SomeBy(changes, func(c models.DetailedChange) bool {
		return c.Priority == models.PriorityHigh || lo.Contains(attentionCategories, c.Category)
	})
}
