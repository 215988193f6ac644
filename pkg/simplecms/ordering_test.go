package simplecms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func TestMove(t *testing.T) {
	items := []string{"a", "b", "c"}

	tests := []struct {
		name      string
		index     int
		direction simplecms.Direction
		want      []string
	}{
		{"up", 1, simplecms.DirectionUp, []string{"b", "a", "c"}},
		{"down", 1, simplecms.DirectionDown, []string{"a", "c", "b"}},
		{"first up is a no-op", 0, simplecms.DirectionUp, []string{"a", "b", "c"}},
		{"last down is a no-op", 2, simplecms.DirectionDown, []string{"a", "b", "c"}},
		{"index out of range", 5, simplecms.DirectionUp, []string{"a", "b", "c"}},
		{"negative index", -1, simplecms.DirectionDown, []string{"a", "b", "c"}},
		{"unknown direction", 1, simplecms.Direction("left"), []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, simplecms.Move(items, tt.index, tt.direction))
			assert.Equal(t, []string{"a", "b", "c"}, items, "input is not modified")
		})
	}
}

func orders(blocks simplecms.Blocks) []int {
	out := make([]int, len(blocks))
	for i, b := range blocks {
		out[i] = b.Order
	}
	return out
}

func texts(blocks simplecms.Blocks) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Text()
	}
	return out
}

func TestBlockEditing(t *testing.T) {
	blocks := simplecms.Blocks{
		simplecms.NewTextBlock(simplecms.BlockTitle, "one"),
		simplecms.NewTextBlock(simplecms.BlockTitle, "two"),
	}
	simplecms.Reindex(blocks)

	inserted := simplecms.InsertBlock(blocks, 1, simplecms.NewTextBlock(simplecms.BlockContent, "middle"))
	assert.Equal(t, []string{"one", "middle", "two"}, texts(inserted))
	assert.Equal(t, []int{0, 1, 2}, orders(inserted))

	appended := simplecms.InsertBlock(blocks, 10, simplecms.NewTextBlock(simplecms.BlockContent, "end"))
	assert.Equal(t, []string{"one", "two", "end"}, texts(appended))

	moved := simplecms.MoveBlock(inserted, 2, simplecms.DirectionUp)
	assert.Equal(t, []string{"one", "two", "middle"}, texts(moved))
	assert.Equal(t, []int{0, 1, 2}, orders(moved))

	removed, err := simplecms.RemoveBlock(moved, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "middle"}, texts(removed))
	assert.Equal(t, []int{0, 1}, orders(removed))

	_, err = simplecms.RemoveBlock(removed, 2)
	assert.Error(t, err)
}

func TestRemoveImage(t *testing.T) {
	gallery := simplecms.ImageData{Files: []string{"a.png", "b.png"}}

	one := simplecms.RemoveImage(gallery, 0)
	assert.Equal(t, simplecms.ImageData{Files: []string{"b.png"}, Single: true}, one)
	assert.Equal(t, []string{"a.png", "b.png"}, gallery.Files)

	none := simplecms.RemoveImage(one, 0)
	assert.Empty(t, none.Files)
	assert.False(t, none.Single)

	assert.Equal(t, gallery, simplecms.RemoveImage(gallery, 3))
}
