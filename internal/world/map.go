package world

import "github.com/annel0/voxel-world/internal/grid"

var mapSize = grid.Size{X: 16, Y: 1, Z: 16}

// Map: разреженная сетка 16x1x16 регионов, горизонтальный срез мира
type Map struct {
	grid.Grid
	regions [16 * 16]slot
	data    []Region
}

func newMap(box grid.Box) Map {
	return Map{Grid: grid.NewWithBox(mapSize, box)}
}

// Region возвращает регион, содержащий точку
func (m *Map) Region(p grid.Point) (*Region, bool) {
	id, ok := m.Index(p)
	if !ok || !m.regions[id].set {
		return nil, false
	}
	return &m.data[m.regions[id].index], true
}

// Block возвращает блок, содержащий точку
func (m *Map) Block(p grid.Point) (*Block, bool) {
	r, ok := m.Region(p)
	if !ok {
		return nil, false
	}
	return r.Block(p)
}

// Regions возвращает регионы карты в порядке создания
func (m *Map) Regions() []*Region {
	out := make([]*Region, len(m.data))
	for i := range m.data {
		out[i] = &m.data[i]
	}
	return out
}

// Len возвращает число регионов
func (m *Map) Len() int {
	return len(m.data)
}
