package prefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeFilterNeverRejectsEqualCounts(t *testing.T) {
	for n := 0; n < 50; n++ {
		assert.False(t, sizeRejects(n, n))
	}
}

func TestSizeFilterRejectsBeyondThreshold(t *testing.T) {
	assert.True(t, sizeRejects(10, 6)) // |10-6|/10 = 0.4 > 0.30
	assert.False(t, sizeRejects(10, 8)) // 0.2 <= 0.30
}
