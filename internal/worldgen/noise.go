package worldgen

import (
	"github.com/aquilax/go-perlin"
)

// noise2D: шум Перлина, нормированный в диапазон [0, 1]
type noise2D struct {
	p *perlin.Perlin
}

func newNoise(seed int64) noise2D {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return noise2D{p: perlin.NewPerlin(alpha, beta, n, seed)}
}

// at возвращает значение шума для координат (от 0 до 1)
func (n noise2D) at(x, y float64) float64 {
	v := (n.p.Noise2D(x, y) + 1.0) / 2.0
	return min(max(v, 0), 1)
}

// hash2: детерминированный хеш колонки, не зависящий от порядка генерации
func hash2(seed int64, x, z int) uint32 {
	h := uint32(seed) ^ uint32(seed>>32)
	h ^= uint32(int32(x)) * 0x9e3779b1
	h ^= uint32(int32(z)) * 0x85ebca6b
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return h
}
