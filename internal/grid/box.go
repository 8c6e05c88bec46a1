package grid

import (
	"fmt"
	"math"
)

// Point представляет точку мира в целочисленных координатах
type Point struct {
	X, Y, Z int
}

// Add складывает две точки покомпонентно
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Index представляет трёхмерный индекс ячейки внутри сетки
type Index struct {
	X, Y, Z int
}

// Size задаёт размерность сетки или масштаб ячейки по каждой оси
type Size struct {
	X, Y, Z int
}

// Volume возвращает произведение размеров по осям
func (s Size) Volume() int {
	return s.X * s.Y * s.Z
}

// Box: выровненная по осям коробка с включительными границами [Min, Max].
// Пустая коробка хранит Min = +inf и Max = -inf и не содержит ни одной точки.
type Box struct {
	Min Point
	Max Point
}

// EmptyBox возвращает пустую коробку
func EmptyBox() Box {
	return Box{
		Min: Point{X: math.MaxInt32, Y: math.MaxInt32, Z: math.MaxInt32},
		Max: Point{X: math.MinInt32, Y: math.MinInt32, Z: math.MinInt32},
	}
}

// NewBox строит коробку, содержащую обе точки (порядок углов не важен)
func NewBox(a, b Point) Box {
	box := EmptyBox()
	box.Extend(a)
	box.Extend(b)
	return box
}

// IsEmpty возвращает true для пустой коробки
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Contains проверяет, лежит ли точка внутри коробки (границы включительно)
func (b Box) Contains(p Point) bool {
	if p.X < b.Min.X || p.Y < b.Min.Y || p.Z < b.Min.Z {
		return false
	}
	if p.X > b.Max.X || p.Y > b.Max.Y || p.Z > b.Max.Z {
		return false
	}
	return true
}

// Extend расширяет коробку так, чтобы она содержала точку
func (b *Box) Extend(p Point) {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Min.Z = min(b.Min.Z, p.Z)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	b.Max.Z = max(b.Max.Z, p.Z)
}

// Union расширяет коробку так, чтобы она содержала o
func (b *Box) Union(o Box) {
	if o.IsEmpty() {
		return
	}
	b.Extend(o.Min)
	b.Extend(o.Max)
}

// Equal сравнивает оба угла покомпонентно
func (b Box) Equal(o Box) bool {
	return b.Min == o.Min && b.Max == o.Max
}

// Extent возвращает число целых точек вдоль каждой оси
func (b Box) Extent() Size {
	if b.IsEmpty() {
		return Size{}
	}
	return Size{
		X: b.Max.X - b.Min.X + 1,
		Y: b.Max.Y - b.Min.Y + 1,
		Z: b.Max.Z - b.Min.Z + 1,
	}
}

func (b Box) String() string {
	if b.IsEmpty() {
		return "[empty]"
	}
	return fmt.Sprintf("[%s %s]", b.Min, b.Max)
}
