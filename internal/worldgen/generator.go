package worldgen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/regionfile"
	"github.com/annel0/voxel-world/internal/world/voxel"
)

// BiomeType представляет тип биома
type BiomeType int

const (
	BiomePlains BiomeType = iota
	BiomeDesert
	BiomeForest
	BiomeMountains
)

const (
	treeHeight = 4   // высота ствола над поверхностью
	maxY       = 255 // верхний воксель мира
)

// Generator строит ландшафт по карте высот из шума Перлина.
// Результат зависит только от параметров и координат, поэтому соседние
// регионы стыкуются без швов.
type Generator struct {
	Seed        int64   // Сид для генерации шума
	NoiseScale  float64 // Масштаб шума высот
	BiomeScale  float64 // Масштаб шума биомов
	SeaLevel    int     // Вода заполняет всё ниже этого уровня включительно
	BaseHeight  int     // Минимальная высота суши
	Amplitude   int     // Размах высот над BaseHeight
	TreeDensity float64 // Доля колонок леса с деревом (от 0 до 1)

	height noise2D
	biome  noise2D
}

// NewGenerator создаёт генератор с параметрами по умолчанию
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:        seed,
		NoiseScale:  0.01,
		BiomeScale:  0.004,
		SeaLevel:    62,
		BaseHeight:  48,
		Amplitude:   64,
		TreeDensity: 0.03,
		height:      newNoise(seed),
		biome:       newNoise(seed + 42),
	}
}

// column описывает вертикальный столбец мира
type column struct {
	height  int
	biome   BiomeType
	surface voxel.ID
	filler  voxel.ID
	tree    bool
}

// Height возвращает высоту поверхности в колонке
func (g *Generator) Height(x, z int) int {
	h := g.BaseHeight + int(g.height.at(float64(x)*g.NoiseScale, float64(z)*g.NoiseScale)*float64(g.Amplitude))
	return min(max(h, 1), maxY-treeHeight-2)
}

// Biome возвращает биом колонки
func (g *Generator) Biome(x, z int) BiomeType {
	return g.biomeFor(g.Height(x, z), g.biome.at(float64(x)*g.BiomeScale, float64(z)*g.BiomeScale))
}

func (g *Generator) biomeFor(height int, value float64) BiomeType {
	switch {
	case height > g.BaseHeight+g.Amplitude*3/4:
		return BiomeMountains
	case value > 0.65:
		return BiomeDesert
	case value < 0.4:
		return BiomeForest
	default:
		return BiomePlains
	}
}

func (g *Generator) column(x, z int) column {
	c := column{height: g.Height(x, z)}
	c.biome = g.biomeFor(c.height, g.biome.at(float64(x)*g.BiomeScale, float64(z)*g.BiomeScale))

	switch {
	case c.biome == BiomeMountains:
		c.surface, c.filler = voxel.Stone, voxel.Stone
	case c.biome == BiomeDesert || c.height <= g.SeaLevel+1:
		c.surface, c.filler = voxel.Sand, voxel.Sand
	case c.height <= g.SeaLevel-4:
		c.surface, c.filler = voxel.Gravel, voxel.Dirt
	default:
		c.surface, c.filler = voxel.Grass, voxel.Dirt
	}

	if c.biome == BiomeForest && c.surface == voxel.Grass {
		c.tree = float64(hash2(g.Seed, x, z)%10000) < g.TreeDensity*10000
	}
	return c
}

// VoxelAt возвращает сгенерированный воксель в точке мира
func (g *Generator) VoxelAt(x, y, z int) voxel.ID {
	return g.voxelIn(g.column, x, y, z)
}

func (g *Generator) voxelIn(col func(x, z int) column, x, y, z int) voxel.ID {
	c := col(x, z)
	switch {
	case y == 0:
		return voxel.Bedrock
	case y < c.height-3:
		return voxel.Stone
	case y < c.height:
		return c.filler
	case y == c.height:
		return c.surface
	case c.tree && y <= c.height+treeHeight:
		return voxel.Wood
	case y <= g.SeaLevel:
		return voxel.WaterStill
	}

	// крона: два слоя листвы вокруг вершины ствола
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			n := col(x+dx, z+dz)
			if !n.tree {
				continue
			}
			top := n.height + treeHeight
			if y >= top && y <= top+1 {
				return voxel.Leaves
			}
		}
	}
	return voxel.Air
}

// columnCache хранит колонки региона с рамкой в одну колонку для крон соседей
type columnCache struct {
	g      *Generator
	x0, z0 int
	size   int
	cols   []column
}

func newColumnCache(g *Generator, c regionfile.Coords) *columnCache {
	origin := c.Origin()
	size := regionfile.RegionEdge + 2
	cc := &columnCache{g: g, x0: origin.X - 1, z0: origin.Z - 1, size: size, cols: make([]column, size*size)}
	for i := 0; i < size; i++ {
		for k := 0; k < size; k++ {
			cc.cols[i*size+k] = g.column(cc.x0+i, cc.z0+k)
		}
	}
	return cc
}

func (cc *columnCache) at(x, z int) column {
	i, k := x-cc.x0, z-cc.z0
	if i < 0 || k < 0 || i >= cc.size || k >= cc.size {
		return cc.g.column(x, z)
	}
	return cc.cols[i*cc.size+k]
}

// top возвращает наибольшую занятую высоту в кэше
func (cc *columnCache) top() int {
	top := cc.g.SeaLevel
	for _, c := range cc.cols {
		h := c.height
		if c.tree {
			h += treeHeight + 1
		}
		top = max(top, h)
	}
	return top
}

// GenerateRegion генерирует файл региона. Блоки, целиком состоящие из
// воздуха, в файл не попадают.
func (g *Generator) GenerateRegion(c regionfile.Coords) *regionfile.File {
	f := &regionfile.File{Coords: c}
	cc := newColumnCache(g, c)
	top := cc.top()
	origin := c.Origin()

	for slot := 0; slot < regionfile.Slots; slot++ {
		local := regionfile.LocalOf(slot)
		y0 := origin.Y + local.Y*regionfile.BlockEdge
		if y0 > top {
			continue
		}
		x0 := origin.X + local.X*regionfile.BlockEdge
		z0 := origin.Z + local.Z*regionfile.BlockEdge

		data := make([]byte, regionfile.BlockBytes)
		solid := false
		i := 0
		for ly := 0; ly < regionfile.BlockEdge; ly++ {
			for lx := 0; lx < regionfile.BlockEdge; lx++ {
				for lz := 0; lz < regionfile.BlockEdge; lz++ {
					v := g.voxelIn(cc.at, x0+lx, y0+ly, z0+lz)
					data[i] = byte(v)
					solid = solid || v != voxel.Air
					i++
				}
			}
		}
		if solid {
			f.Blocks[slot] = data
		}
	}
	return f
}

// WriteMap генерирует регионы карты в dir/<name>/ и пишет манифест
// dir/<name>.txt. Возвращает путь к манифесту.
func (g *Generator) WriteMap(dir, name string, coords []regionfile.Coords, compress bool) (string, error) {
	if err := regionfile.CheckMapName(name); err != nil {
		return "", err
	}
	mapDir := filepath.Join(dir, name)
	if err := os.MkdirAll(mapDir, 0755); err != nil {
		return "", fmt.Errorf("ошибка создания директории %s: %w", mapDir, err)
	}

	entries := make([]string, 0, len(coords))
	for _, c := range coords {
		f := g.GenerateRegion(c)
		file := regionfile.FileName(name, c, "gkmc")
		if err := regionfile.Write(filepath.Join(mapDir, file), f, compress); err != nil {
			return "", err
		}
		entries = append(entries, file)
		logging.Debug("Сгенерирован регион %s: %d блоков", c, f.Len())
	}

	manifest := filepath.Join(dir, name+".txt")
	header := fmt.Sprintf("карта %s, seed %d", name, g.Seed)
	if err := regionfile.WriteManifest(manifest, header, entries); err != nil {
		return "", fmt.Errorf("ошибка записи манифеста %s: %w", manifest, err)
	}

	logging.Info("🌍 Карта %s: %d регионов записано в %s", name, len(coords), mapDir)
	return manifest, nil
}
