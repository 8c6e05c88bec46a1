package world

import (
	"fmt"

	"github.com/annel0/voxel-world/internal/grid"
	"github.com/annel0/voxel-world/internal/world/voxel"
)

// Иерархия пространственного хеша:
//
//	1 block  = 16x16x16 вокселей
//	1 region = 16x16x16 блоков  = 256x256x256 вокселей
//	1 map    = 16x1x16 регионов = 4096x256x4096 вокселей
//	1 world  = 16x1x16 карт     = 65536x256x65536 вокселей
var (
	worldSize = grid.Size{X: 16, Y: 1, Z: 16}

	// WorldBox: фиксированная область мира
	WorldBox = grid.NewBox(
		grid.Point{X: -32768, Y: 0, Z: -32768},
		grid.Point{X: 32767, Y: 255, Z: 32767},
	)
)

// World: пространственный хеш верхнего уровня: разреженная сетка 16x1x16 карт.
//
// Мир строится однопоточно на этапе загрузки (Insert), после чего только
// читается. Параллельные чтения после загрузки безопасны без блокировок;
// параллельная вставка не поддерживается. Указатели, возвращаемые
// методами поиска, действительны до следующего Insert.
type World struct {
	grid.Grid
	maps [16 * 16]slot
	data []Map
}

// NewWorld создаёт пустой мир
func NewWorld() *World {
	return &World{Grid: grid.NewWithBox(worldSize, WorldBox)}
}

// Map возвращает карту, содержащую точку
func (w *World) Map(p grid.Point) (*Map, bool) {
	id, ok := w.Index(p)
	if !ok || !w.maps[id].set {
		return nil, false
	}
	return &w.data[w.maps[id].index], true
}

// Region возвращает регион, содержащий точку
func (w *World) Region(p grid.Point) (*Region, bool) {
	m, ok := w.Map(p)
	if !ok {
		return nil, false
	}
	return m.Region(p)
}

// Block возвращает блок, содержащий точку
func (w *World) Block(p grid.Point) (*Block, bool) {
	r, ok := w.Region(p)
	if !ok {
		return nil, false
	}
	return r.Block(p)
}

// Voxel возвращает тип вокселя в точке. ok == false, если блока нет.
func (w *World) Voxel(p grid.Point) (voxel.ID, bool) {
	b, ok := w.Block(p)
	if !ok {
		return voxel.Air, false
	}
	return b.Voxel(p)
}

// cellBoxes выводит коробки карты, региона и блока, содержащих p, только из
// геометрии сеток. Результат не зависит от порядка вставок.
func (w *World) cellBoxes(p grid.Point) (mbox, rbox, bbox grid.Box) {
	mbox = w.CellBox(w.IndexOf(p))
	mg := grid.NewWithBox(mapSize, mbox)
	rbox = mg.CellBox(mg.IndexOf(p))
	rg := grid.NewWithBox(regionSize, rbox)
	bbox = rg.CellBox(rg.IndexOf(p))
	return mbox, rbox, bbox
}

// CanInsert проверяет, можно ли вставить блок с такой коробкой, ничего не
// создавая. Возвращает те же ошибки, что и Insert.
func (w *World) CanInsert(box grid.Box) error {
	p := box.Min
	if !w.BBox.Contains(p) {
		return fmt.Errorf("%w: блок %s вне мира %s", ErrOutOfBounds, box, w.BBox)
	}

	_, _, cell := w.cellBoxes(p)
	if !cell.Equal(box) {
		return fmt.Errorf("%w: блок %s, ячейка %s", ErrGeometryMismatch, box, cell)
	}

	if r, ok := w.Region(p); ok && r.occupied(p) {
		return fmt.Errorf("%w: %s", ErrDuplicate, box)
	}
	return nil
}

// Insert вставляет блок в иерархию, создавая недостающие карту и регион.
// Отклонённая вставка ничего не создаёт и не меняет уже вставленные блоки.
func (w *World) Insert(b Block) error {
	if err := w.CanInsert(b.BBox); err != nil {
		return err
	}

	p := b.BBox.Min

	id, _ := w.Index(p)
	if !w.maps[id].set {
		box := w.CellBox(w.IndexOf(p))
		mustContain("map", box, p)
		w.maps[id] = slot{index: uint16(len(w.data)), set: true}
		w.data = append(w.data, newMap(box))
	}
	m := &w.data[w.maps[id].index]

	mid, ok := m.Index(p)
	if !ok {
		panic(fmt.Sprintf("world: точка %s вне карты %s", p, m.BBox))
	}
	if !m.regions[mid].set {
		box := m.CellBox(m.IndexOf(p))
		mustContain("region", box, p)
		m.regions[mid] = slot{index: uint16(len(m.data)), set: true}
		m.data = append(m.data, newRegion(box))
	}
	r := &m.data[m.regions[mid].index]

	rid, ok := r.Index(p)
	if !ok {
		panic(fmt.Sprintf("world: точка %s вне региона %s", p, r.BBox))
	}
	cell := r.CellBox(r.IndexOf(p))
	mustContain("block", cell, p)
	if !cell.Equal(b.BBox) {
		return fmt.Errorf("%w: блок %s, ячейка %s", ErrGeometryMismatch, b.BBox, cell)
	}

	r.blocks[rid] = slot{index: uint16(len(r.data)), set: true}
	r.data = append(r.data, b)
	return nil
}

func mustContain(level string, box grid.Box, p grid.Point) {
	if !box.Contains(p) {
		panic(fmt.Sprintf("world: ячейка %s %s не содержит %s", level, box, p))
	}
}

// Maps возвращает карты в порядке создания
func (w *World) Maps() []*Map {
	out := make([]*Map, len(w.data))
	for i := range w.data {
		out[i] = &w.data[i]
	}
	return out
}

// EachBlock обходит все блоки мира в порядке создания карт, регионов и блоков.
// Обход прекращается, если fn возвращает false.
func (w *World) EachBlock(fn func(b *Block) bool) {
	for mi := range w.data {
		m := &w.data[mi]
		for ri := range m.data {
			r := &m.data[ri]
			for bi := range r.data {
				if !fn(&r.data[bi]) {
					return
				}
			}
		}
	}
}

// RegionBlocks возвращает блоки региона, содержащего точку
func (w *World) RegionBlocks(p grid.Point) []*Block {
	r, ok := w.Region(p)
	if !ok {
		return nil
	}
	return r.Blocks()
}

// Stats содержит размеры загруженного мира
type Stats struct {
	Maps        int `json:"maps"`
	Regions     int `json:"regions"`
	Blocks      int `json:"blocks"`
	SolidVoxels int `json:"solid_voxels"`
}

// Stats подсчитывает число элементов на каждом уровне
func (w *World) Stats() Stats {
	var s Stats
	s.Maps = len(w.data)
	for mi := range w.data {
		m := &w.data[mi]
		s.Regions += len(m.data)
		for ri := range m.data {
			s.Blocks += len(m.data[ri].data)
		}
	}
	w.EachBlock(func(b *Block) bool {
		s.SolidVoxels += b.SolidCount()
		return true
	})
	return s
}
