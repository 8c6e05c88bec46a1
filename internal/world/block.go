package world

import (
	"fmt"

	"github.com/annel0/voxel-world/internal/grid"
	"github.com/annel0/voxel-world/internal/world/voxel"
)

// Размеры уровней иерархии
const (
	BlockEdge   = 16                                // вокселей вдоль ребра блока
	BlockVoxels = BlockEdge * BlockEdge * BlockEdge // 4096
	RegionEdge  = BlockEdge * 16                    // вокселей вдоль ребра региона
)

var blockSize = grid.Size{X: BlockEdge, Y: BlockEdge, Z: BlockEdge}

// Block: плотный массив 16x16x16 вокселей, лист иерархии.
// Порядок Voxels совпадает с линейным индексом сетки: y, затем x, затем z.
type Block struct {
	grid.Grid
	Voxels [BlockVoxels]voxel.ID
}

// NewBlock создаёт блок с указанной коробкой и копией данных вокселей.
// Коробка должна охватывать ровно 16 вокселей по каждой оси.
func NewBlock(box grid.Box, voxels []byte) (Block, error) {
	if len(voxels) != BlockVoxels {
		return Block{}, fmt.Errorf("%w: %d вместо %d", ErrVoxelCount, len(voxels), BlockVoxels)
	}
	if box.Extent() != blockSize {
		return Block{}, fmt.Errorf("%w: коробка блока %s", ErrGeometryMismatch, box)
	}

	b := Block{Grid: grid.NewWithBox(blockSize, box)}
	for i, v := range voxels {
		b.Voxels[i] = voxel.ID(v)
	}
	return b, nil
}

// Voxel возвращает тип вокселя в точке мира.
// ok == false означает «нет данных»: точка вне блока. Воксели внутри блока
// всегда инициализированы, незаписанный воксель читается как voxel.Air.
func (b *Block) Voxel(p grid.Point) (voxel.ID, bool) {
	id, ok := b.Index(p)
	if !ok {
		return voxel.Air, false
	}
	return b.Voxels[id], true
}

// VoxelAt возвращает тип вокселя по локальному индексу
func (b *Block) VoxelAt(i grid.Index) (voxel.ID, bool) {
	if i.X < 0 || i.Y < 0 || i.Z < 0 || i.X >= BlockEdge || i.Y >= BlockEdge || i.Z >= BlockEdge {
		return voxel.Air, false
	}
	return b.Voxels[b.Linear(i)], true
}

// Bytes возвращает копию данных вокселей в порядке хранения
func (b *Block) Bytes() []byte {
	out := make([]byte, BlockVoxels)
	for i, v := range b.Voxels {
		out[i] = byte(v)
	}
	return out
}

// SolidCount возвращает число непустых вокселей
func (b *Block) SolidCount() int {
	n := 0
	for _, v := range b.Voxels {
		if v != voxel.Air {
			n++
		}
	}
	return n
}
