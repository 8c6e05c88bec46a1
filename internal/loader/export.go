package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/annel0/voxel-world/internal/grid"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/regionfile"
	"github.com/annel0/voxel-world/internal/world"
)

// RegionFile собирает файл региона из блоков загруженного региона
func RegionFile(r *world.Region) (*regionfile.File, error) {
	f := &regionfile.File{Coords: regionfile.CoordsOf(r.BBox.Min)}
	origin := f.Coords.Origin()

	for _, b := range r.Blocks() {
		d := b.BBox.Min
		local := grid.Index{
			X: (d.X - origin.X) / world.BlockEdge,
			Y: (d.Y - origin.Y) / world.BlockEdge,
			Z: (d.Z - origin.Z) / world.BlockEdge,
		}
		if err := f.Set(local, b.Bytes()); err != nil {
			return nil, fmt.Errorf("блок %s: %w", b.BBox, err)
		}
	}
	return f, nil
}

// Export записывает все регионы мира в dir/<name>/ и манифест dir/<name>.txt,
// так что LoadMapManifest восстанавливает тот же мир. Возвращает путь к
// манифесту.
func Export(w *world.World, dir, name string, compress bool) (string, error) {
	if err := regionfile.CheckMapName(name); err != nil {
		return "", err
	}
	mapDir := filepath.Join(dir, name)
	if err := os.MkdirAll(mapDir, 0755); err != nil {
		return "", fmt.Errorf("ошибка создания директории %s: %w", mapDir, err)
	}

	var entries []string
	for _, m := range w.Maps() {
		for _, r := range m.Regions() {
			f, err := RegionFile(r)
			if err != nil {
				return "", err
			}
			file := regionfile.FileName(name, f.Coords, "gkmc")
			if err := regionfile.Write(filepath.Join(mapDir, file), f, compress); err != nil {
				return "", err
			}
			entries = append(entries, file)
		}
	}

	manifest := filepath.Join(dir, name+".txt")
	if err := regionfile.WriteManifest(manifest, "экспорт карты "+name, entries); err != nil {
		return "", fmt.Errorf("ошибка записи манифеста %s: %w", manifest, err)
	}
	logging.Info("💾 Экспортировано регионов: %d → %s", len(entries), manifest)
	return manifest, nil
}
