package world

import (
	"bytes"
	"testing"

	"github.com/annel0/voxel-world/internal/grid"
	"github.com/annel0/voxel-world/internal/world/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockBox(origin grid.Point) grid.Box {
	return grid.NewBox(origin, origin.Add(grid.Point{X: 15, Y: 15, Z: 15}))
}

func TestNewBlockValidation(t *testing.T) {
	_, err := NewBlock(blockBox(grid.Point{}), make([]byte, 100))
	assert.ErrorIs(t, err, ErrVoxelCount)

	_, err = NewBlock(grid.NewBox(grid.Point{}, grid.Point{X: 31, Y: 15, Z: 15}), make([]byte, BlockVoxels))
	assert.ErrorIs(t, err, ErrGeometryMismatch)

	b, err := NewBlock(blockBox(grid.Point{X: 16}), make([]byte, BlockVoxels))
	require.NoError(t, err)
	assert.Equal(t, grid.Size{X: 1, Y: 1, Z: 1}, b.Scale)
}

func TestNewBlockCopiesVoxels(t *testing.T) {
	data := bytes.Repeat([]byte{byte(voxel.Stone)}, BlockVoxels)
	b, err := NewBlock(blockBox(grid.Point{}), data)
	require.NoError(t, err)

	data[0] = byte(voxel.Dirt)
	v, ok := b.Voxel(grid.Point{})
	require.True(t, ok)
	assert.Equal(t, voxel.Stone, v, "блок должен хранить собственную копию данных")
	assert.Equal(t, BlockVoxels, b.SolidCount())
}

func TestBlockVoxelLayout(t *testing.T) {
	data := make([]byte, BlockVoxels)
	// y=1, x=2, z=3 -> 1*256 + 2*16 + 3
	data[1*256+2*16+3] = byte(voxel.Grass)
	origin := grid.Point{X: -32, Y: 16, Z: 48}
	b, err := NewBlock(blockBox(origin), data)
	require.NoError(t, err)

	v, ok := b.Voxel(origin.Add(grid.Point{X: 2, Y: 1, Z: 3}))
	require.True(t, ok)
	assert.Equal(t, voxel.Grass, v)

	v, ok = b.VoxelAt(grid.Index{X: 2, Y: 1, Z: 3})
	require.True(t, ok)
	assert.Equal(t, voxel.Grass, v)

	assert.Equal(t, data, b.Bytes())
}

func TestBlockVoxelMissConvention(t *testing.T) {
	b, err := NewBlock(blockBox(grid.Point{}), make([]byte, BlockVoxels))
	require.NoError(t, err)

	// внутри блока незаписанный воксель равен воздуху, и данные есть
	for _, p := range []grid.Point{{}, {X: 15, Y: 15, Z: 15}, {X: 7, Y: 3, Z: 11}} {
		v, ok := b.Voxel(p)
		assert.True(t, ok)
		assert.Equal(t, voxel.Air, v)
	}

	// вне блока данных нет
	v, ok := b.Voxel(grid.Point{X: 16})
	assert.False(t, ok)
	assert.Equal(t, voxel.Air, v)

	_, ok = b.VoxelAt(grid.Index{X: 16})
	assert.False(t, ok)
	_, ok = b.VoxelAt(grid.Index{Y: -1})
	assert.False(t, ok)
}
