package grid

import "fmt"

// Grid описывает сетку фиксированной размерности, размещённую в мире.
//
// Size: число ячеек по осям, BBox: охватывающая коробка в координатах
// мира, Scale: сколько единиц мира покрывает одна ячейка по каждой оси.
// Линейный индекс ячейки раскладывается по Y, затем X, затем Z:
//
//	linear = y*Size.X*Size.Z + x*Size.Z + z
//
// Такой порядок удобен для горизонтальных миров, где Size.Y часто равен 1.
type Grid struct {
	Size  Size
	Scale Size
	BBox  Box
}

// New создаёт сетку без положения в мире. До вызова Place она не содержит
// ни одной точки.
func New(size Size) Grid {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		panic(fmt.Sprintf("grid: неверная размерность %+v", size))
	}
	return Grid{Size: size, BBox: EmptyBox()}
}

// NewWithBox создаёт сетку и сразу размещает её в мире
func NewWithBox(size Size, box Box) Grid {
	g := New(size)
	g.Place(box)
	return g
}

// Place задаёт охватывающую коробку и пересчитывает масштаб.
// Коробка должна делиться на размерность нацело: иначе это ошибка
// конфигурации, и Place паникует.
func (g *Grid) Place(box Box) {
	if box.IsEmpty() {
		panic("grid: пустая коробка")
	}
	ext := box.Extent()
	if ext.X%g.Size.X != 0 || ext.Y%g.Size.Y != 0 || ext.Z%g.Size.Z != 0 {
		panic(fmt.Sprintf("grid: коробка %s не делится на размерность %+v", box, g.Size))
	}
	g.BBox = box
	g.Scale = Size{X: ext.X / g.Size.X, Y: ext.Y / g.Size.Y, Z: ext.Z / g.Size.Z}
}

// Cells возвращает общее число ячеек
func (g Grid) Cells() int {
	return g.Size.Volume()
}

// Index возвращает линейный индекс ячейки, содержащей p.
// ok == false, если p лежит вне коробки сетки.
func (g Grid) Index(p Point) (int, bool) {
	if !g.BBox.Contains(p) {
		return 0, false
	}
	return g.Linear(g.IndexOf(p)), true
}

// Linear разворачивает трёхмерный индекс в линейный.
// Индекс вне размерности означает ошибку программиста.
func (g Grid) Linear(i Index) int {
	if i.X < 0 || i.Y < 0 || i.Z < 0 || i.X >= g.Size.X || i.Y >= g.Size.Y || i.Z >= g.Size.Z {
		panic(fmt.Sprintf("grid: индекс %+v вне размерности %+v", i, g.Size))
	}
	return i.Y*g.Size.X*g.Size.Z + i.X*g.Size.Z + i.Z
}

// Unflatten: обратное к Linear преобразование
func (g Grid) Unflatten(linear int) Index {
	if linear < 0 || linear >= g.Cells() {
		panic(fmt.Sprintf("grid: линейный индекс %d вне [0,%d)", linear, g.Cells()))
	}
	layer := g.Size.X * g.Size.Z
	return Index{
		Y: linear / layer,
		X: (linear % layer) / g.Size.Z,
		Z: linear % g.Size.Z,
	}
}

// IndexOf возвращает трёхмерный индекс ячейки без проверки границ.
// Смещения от BBox.Min неотрицательны для точек внутри коробки, поэтому
// обычного целочисленного деления достаточно; вызывающий обязан проверить
// принадлежность заранее.
func (g Grid) IndexOf(p Point) Index {
	return Index{
		X: (p.X - g.BBox.Min.X) / g.Scale.X,
		Y: (p.Y - g.BBox.Min.Y) / g.Scale.Y,
		Z: (p.Z - g.BBox.Min.Z) / g.Scale.Z,
	}
}

// CellOrigin возвращает минимальный угол ячейки в координатах мира
func (g Grid) CellOrigin(i Index) Point {
	return Point{
		X: g.BBox.Min.X + i.X*g.Scale.X,
		Y: g.BBox.Min.Y + i.Y*g.Scale.Y,
		Z: g.BBox.Min.Z + i.Z*g.Scale.Z,
	}
}

// CellBox возвращает коробку ячейки
func (g Grid) CellBox(i Index) Box {
	lo := g.CellOrigin(i)
	hi := Point{X: lo.X + g.Scale.X - 1, Y: lo.Y + g.Scale.Y - 1, Z: lo.Z + g.Scale.Z - 1}
	return Box{Min: lo, Max: hi}
}
