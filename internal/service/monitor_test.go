package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorStats(t *testing.T) {
	m := &Monitor{}

	m.RecordOrderRequest()
	m.RecordOrderRequest()
	m.RecordOrderCreated()
	m.RecordOrderFailure()
	m.RecordMessageSent()
	m.RecordDBError()

	stats := m.GetStats()
	orders, ok := stats["orders"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(2), orders["requests"])
	assert.Equal(t, int64(1), orders["created"])
	assert.Equal(t, float64(50), orders["success_rate"])

	errs, ok := stats["errors"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(1), errs["db"])

	m.Reset()
	stats = m.GetStats()
	orders = stats["orders"].(map[string]interface{})
	assert.Equal(t, int64(0), orders["requests"])
}
