package simplecms

import "fmt"

// Direction is the way an item moves inside an ordered listing
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is up or down.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Move returns a copy of items with the item at index swapped with its
// neighbour in direction d. The copy is unchanged when the neighbour is
// out of bounds or index is not a valid position.
func Move[T any](items []T, index int, d Direction) []T {
	out := append([]T(nil), items...)
	if index < 0 || index >= len(out) {
		return out
	}
	target := index - 1
	if d == DirectionDown {
		target = index + 1
	} else if d != DirectionUp {
		return out
	}
	if target < 0 || target >= len(out) {
		return out
	}
	out[index], out[target] = out[target], out[index]
	return out
}

// Reindex sets each block's Order to its index.
func Reindex(blocks Blocks) {
	for i := range blocks {
		blocks[i].Order = i
	}
}

// InsertBlock returns a copy of blocks with b inserted at index and the
// orders reindexed. An index past the end appends.
func InsertBlock(blocks Blocks, index int, b ContentBlock) Blocks {
	if index < 0 {
		index = 0
	}
	if index > len(blocks) {
		index = len(blocks)
	}
	out := make(Blocks, 0, len(blocks)+1)
	out = append(out, blocks[:index]...)
	out = append(out, b)
	out = append(out, blocks[index:]...)
	Reindex(out)
	return out
}

// RemoveBlock returns a copy of blocks without the block at index and the
// orders reindexed.
func RemoveBlock(blocks Blocks, index int) (Blocks, error) {
	if index < 0 || index >= len(blocks) {
		return nil, fmt.Errorf("block index %d out of range [0,%d)", index, len(blocks))
	}
	out := make(Blocks, 0, len(blocks)-1)
	out = append(out, blocks[:index]...)
	out = append(out, blocks[index+1:]...)
	Reindex(out)
	return out, nil
}

// MoveBlock returns a copy of blocks with the block at index moved one
// step in direction d and the orders reindexed.
func MoveBlock(blocks Blocks, index int, d Direction) Blocks {
	out := Blocks(Move([]ContentBlock(blocks), index, d))
	Reindex(out)
	return out
}

// RemoveImage drops file at index from an image gallery. A single
// remaining file collapses back to the single-filename shape.
func RemoveImage(data ImageData, index int) ImageData {
	if index < 0 || index >= len(data.Files) {
		return data
	}
	files := make([]string, 0, len(data.Files)-1)
	files = append(files, data.Files[:index]...)
	files = append(files, data.Files[index+1:]...)
	return ImageData{Files: files, Single: len(files) == 1}
}
