package sqlbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhere(t *testing.T) {
	var where Where

	assert.Empty(t, where.SQL())
	assert.Equal(t, "$1", where.Next())

	where.Add("trigger_type = ?", "OFFER_SENT")
	where.Add("is_active = ?", true)
	where.Add("executed_at BETWEEN ? AND ?", 1, 2)

	assert.Equal(t, "WHERE trigger_type = $1 AND is_active = $2 AND executed_at BETWEEN $3 AND $4", where.SQL())
	assert.Equal(t, []any{"OFFER_SENT", true, 1, 2}, where.Args())
	assert.Equal(t, "$5", where.Next())
}
