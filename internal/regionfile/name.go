package regionfile

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/annel0/voxel-world/internal/grid"
)

// RegionEdge: размер региона в вокселях вдоль каждой оси
const RegionEdge = 256

// Coords: координаты региона, закодированные в имени файла
type Coords struct {
	X, Z int
}

// Origin возвращает минимальный угол региона в координатах мира
func (c Coords) Origin() grid.Point {
	return grid.Point{X: c.X * RegionEdge, Y: 0, Z: c.Z * RegionEdge}
}

// Box возвращает коробку региона
func (c Coords) Box() grid.Box {
	o := c.Origin()
	return grid.NewBox(o, o.Add(grid.Point{X: RegionEdge - 1, Y: RegionEdge - 1, Z: RegionEdge - 1}))
}

func (c Coords) String() string {
	return fmt.Sprintf("%d.%d", c.X, c.Z)
}

// CoordsOf возвращает координаты региона, содержащего точку мира
func CoordsOf(p grid.Point) Coords {
	return Coords{X: floorDiv(p.X, RegionEdge), Z: floorDiv(p.Z, RegionEdge)}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ParseName извлекает координаты региона из имени файла вида
// <name>.<x>.<z>.<ext>. Каталоги в пути игнорируются. Координаты должны
// помещаться в int32.
func ParseName(path string) (Coords, error) {
	base := filepath.Base(path)
	parts := strings.Split(base, ".")
	if len(parts) < 3 || parts[0] == "" {
		return Coords{}, fmt.Errorf("%w: %q", ErrBadName, base)
	}

	x, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return Coords{}, fmt.Errorf("%w: %q: x: %v", ErrBadName, base, err)
	}
	z, err := strconv.ParseInt(parts[2], 10, 32)
	if err != nil {
		return Coords{}, fmt.Errorf("%w: %q: z: %v", ErrBadName, base, err)
	}
	return Coords{X: int(x), Z: int(z)}, nil
}

// CheckMapName проверяет, что имя карты можно закодировать в имени файла
// региона и разобрать обратно
func CheckMapName(name string) error {
	if name == "" || strings.ContainsAny(name, `./\`) {
		return fmt.Errorf("%w: имя карты %q", ErrBadName, name)
	}
	return nil
}

// FileName строит имя файла региона, обратное ParseName
func FileName(name string, c Coords, ext string) string {
	return fmt.Sprintf("%s.%d.%d.%s", name, c.X, c.Z, ext)
}
