package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageParams(t *testing.T) {
	params := usageParams("/views/home.blade.php", []string{"a", "b"})

	assert.Equal(t, "/views/home.blade.php", params["template"])
	assert.Equal(t, []any{"a", "b"}, params["keys"])
}

func TestUsageParamsEmpty(t *testing.T) {
	params := usageParams("t", nil)
	assert.Equal(t, []any{}, params["keys"])
}
