package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, "https://challenges.coode.sh/food/data/json", s.Remote.BaseURL)
	assert.Equal(t, 30*time.Second, s.Remote.Timeout)
	assert.Equal(t, 3, s.Remote.RetryAttempts)
	assert.Equal(t, 2, s.Remote.BackoffBase)
	assert.Equal(t, time.Second, s.Remote.BackoffUnit)
	assert.Equal(t, 100, s.Import.LimitPerFile)
	assert.True(t, s.Import.Enabled)
	assert.Equal(t, ":8080", s.API.Addr)
	assert.Empty(t, s.API.Key)
}
