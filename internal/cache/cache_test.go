package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestSnapshot 测试统计快照
func TestSnapshot(t *testing.T) {
	c := New(nil, "approvals:", 15*time.Second)

	stats := c.Snapshot()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
	assert.Equal(t, uint64(0), stats.Sets)
	assert.Equal(t, uint64(0), stats.Deletes)
	assert.Equal(t, uint64(0), stats.Errors)

	// 快照是副本,修改快照不影响内部计数
	stats.Hits = 99
	assert.Equal(t, uint64(0), c.Snapshot().Hits)
}
