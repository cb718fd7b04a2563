package processor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/web3tea/fixture-sentinel/models"
	"github.com/web3tea/fixture-sentinel/processor"
)

func TestHasHighPriorityChanges(t *testing.T) {
	assert.False(t, processor.HasHighPriorityChanges(nil))
	assert.False(t, processor.HasHighPriorityChanges([]models.DetailedChange{}))

	assert.False(t, processor.HasHighPriorityChanges([]models.DetailedChange{
		{Field: "referee_report", Category: "report_change", Priority: models.PriorityMedium},
	}))

	assert.True(t, processor.HasHighPriorityChanges([]models.DetailedChange{
		{Field: "referee_report", Category: "report_change", Priority: models.PriorityHigh},
	}))

	// Attention categories escalate regardless of the publisher's level.
	for _, category := range []string{
		models.CategoryTimeChange,
		models.CategoryDateChange,
		models.CategoryVenueChange,
		models.CategoryOfficialsChange,
	} {
		assert.True(t, processor.HasHighPriorityChanges([]models.DetailedChange{
			{Category: category, Priority: models.PriorityLow},
		}), category)
	}
}
