package texts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticPool_DrawsFromGivenSet(t *testing.T) {
	p := NewStaticPool(1, "alpha", "beta")
	for i := 0; i < 20; i++ {
		assert.Contains(t, []string{"alpha", "beta"}, p.Passage())
	}
}

func TestStaticPool_DefaultsWhenEmpty(t *testing.T) {
	p := NewStaticPool(1)
	assert.NotEmpty(t, p.Passage())
}
