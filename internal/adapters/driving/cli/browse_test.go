package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/foodsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/foodsync/internal/core/services"
)

func TestBrowseCmd_NotConfigured(t *testing.T) {
	useServices(t, &Services{})

	_, err := execute("browse")

	assert.EqualError(t, err, "product service not configured")
}

func TestBrowseCmd_NoRunHistory(t *testing.T) {
	useServices(t, &Services{Products: services.NewProductService(memory.NewProductStore())})

	_, err := execute("browse")

	assert.EqualError(t, err, "run history not configured")
}

func TestBrowseCmd_RequiresTerminal(t *testing.T) {
	useServices(t, &Services{
		Products: services.NewProductService(memory.NewProductStore()),
		Runs:     services.NewRunHistoryService(memory.NewRunLedger()),
	})

	_, err := execute("browse")

	assert.EqualError(t, err, "browse requires an interactive terminal")
}
