package world

import "github.com/annel0/voxel-world/internal/grid"

// slot: ячейка пространственного индекса: либо пусто, либо позиция
// в упорядоченном хранилище дочерних элементов.
type slot struct {
	index uint16
	set   bool
}

var regionSize = grid.Size{X: 16, Y: 16, Z: 16}

// Region: разреженная сетка 16x16x16 блоков (256x256x256 вокселей).
// Блоки хранятся по значению в порядке вставки, blocks хранит их позиции.
type Region struct {
	grid.Grid
	blocks [16 * 16 * 16]slot
	data   []Block
}

func newRegion(box grid.Box) Region {
	return Region{Grid: grid.NewWithBox(regionSize, box)}
}

// Block возвращает блок, содержащий точку
func (r *Region) Block(p grid.Point) (*Block, bool) {
	id, ok := r.Index(p)
	if !ok || !r.blocks[id].set {
		return nil, false
	}
	return &r.data[r.blocks[id].index], true
}

// Blocks возвращает блоки региона в порядке вставки
func (r *Region) Blocks() []*Block {
	out := make([]*Block, len(r.data))
	for i := range r.data {
		out[i] = &r.data[i]
	}
	return out
}

// Len возвращает число блоков
func (r *Region) Len() int {
	return len(r.data)
}

func (r *Region) occupied(p grid.Point) bool {
	id, ok := r.Index(p)
	return ok && r.blocks[id].set
}
