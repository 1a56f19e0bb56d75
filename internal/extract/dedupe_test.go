package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedSet(t *testing.T) {
	s := NewOrderedSet[string]()

	assert.True(t, s.Add("b"))
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("b"))
	assert.True(t, s.Add("c"))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"b", "a", "c"}, s.Items())
	assert.Equal(t, []string{"b", "a"}, s.Head(2))
	assert.Equal(t, []string{"b", "a", "c"}, s.Head(10))
	assert.Equal(t, []string{"b", "a", "c"}, s.Head(-1))
}

func TestUnique(t *testing.T) {
	items := []string{"x", "y", "x", "z", "y", "w"}

	assert.Equal(t, []string{"x", "y", "z"}, Unique(items, 3))
	assert.Equal(t, []string{"x", "y", "z", "w"}, Unique(items, -1))
	assert.Empty(t, Unique([]string(nil), 5))
}
