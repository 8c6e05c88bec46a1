package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/voxel-world/internal/grid"
	"github.com/annel0/voxel-world/internal/regionfile"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/voxel"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(id voxel.ID) []byte {
	data := make([]byte, regionfile.BlockBytes)
	for i := range data {
		data[i] = byte(id)
	}
	return data
}

// writeRegion пишет файл региона с блоками в указанных локальных индексах
func writeRegion(t *testing.T, dir string, c regionfile.Coords, fill voxel.ID, locals ...grid.Index) string {
	t.Helper()
	f := &regionfile.File{Coords: c}
	for _, l := range locals {
		require.NoError(t, f.Set(l, filled(fill)))
	}
	path := filepath.Join(dir, regionfile.FileName("world", c, "gkmc"))
	require.NoError(t, regionfile.Write(path, f, false))
	return path
}

func TestLoadRegionFile(t *testing.T) {
	dir := t.TempDir()
	path := writeRegion(t, dir, regionfile.Coords{X: 3, Z: -2}, voxel.Stone,
		grid.Index{X: 1, Y: 0, Z: 0}, grid.Index{X: 0, Y: 2, Z: 15})

	w := world.NewWorld()
	l := New(w)
	rr, err := l.LoadRegionFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, rr.Path)
	assert.Equal(t, regionfile.Coords{X: 3, Z: -2}, rr.Coords)
	assert.Equal(t, 2, rr.Blocks)

	b, ok := w.Block(grid.Point{X: 790, Y: 5, Z: -505})
	require.True(t, ok)
	assert.True(t, b.BBox.Equal(grid.NewBox(grid.Point{X: 784, Y: 0, Z: -512}, grid.Point{X: 799, Y: 15, Z: -497})))

	id, ok := w.Voxel(grid.Point{X: 770, Y: 40, Z: -270})
	require.True(t, ok)
	assert.Equal(t, voxel.Stone, id)

	_, ok = w.Voxel(grid.Point{X: 768, Y: 0, Z: -512})
	assert.False(t, ok, "слот 0 в файле отсутствует")
}

func TestLoadRegionFileIsAllOrNothing(t *testing.T) {
	dir := t.TempDir()
	first := writeRegion(t, dir, regionfile.Coords{X: 0, Z: 0}, voxel.Stone, grid.Index{X: 5, Y: 5, Z: 5})

	w := world.NewWorld()
	l := New(w)
	_, err := l.LoadRegionFile(context.Background(), first)
	require.NoError(t, err)
	before := w.Stats()

	// второй файл с тем же регионом: один новый блок и один повтор
	other := filepath.Join(t.TempDir(), regionfile.FileName("copy", regionfile.Coords{}, "gkmc"))
	f := &regionfile.File{}
	require.NoError(t, f.Set(grid.Index{X: 0, Y: 0, Z: 0}, filled(voxel.Dirt)))
	require.NoError(t, f.Set(grid.Index{X: 5, Y: 5, Z: 5}, filled(voxel.Dirt)))
	require.NoError(t, regionfile.Write(other, f, false))

	_, err = l.LoadRegionFile(context.Background(), other)
	assert.ErrorIs(t, err, world.ErrDuplicate)
	assert.Equal(t, before, w.Stats(), "отклонённый файл не меняет мир")

	_, ok := w.Block(grid.Point{X: 0, Y: 0, Z: 0})
	assert.False(t, ok)

	id, ok := w.Voxel(grid.Point{X: 85, Y: 85, Z: 85})
	require.True(t, ok)
	assert.Equal(t, voxel.Stone, id, "исходные данные сохранены")
}

func TestLoadRegionFileErrors(t *testing.T) {
	dir := t.TempDir()
	l := New(world.NewWorld())
	ctx := context.Background()

	_, err := l.LoadRegionFile(ctx, filepath.Join(dir, "world.0.0.gkmc"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	noCoords := filepath.Join(dir, "world.gkmc")
	require.NoError(t, os.WriteFile(noCoords, nil, 0644))
	_, err = l.LoadRegionFile(ctx, noCoords)
	assert.ErrorIs(t, err, regionfile.ErrBadName)

	garbage := filepath.Join(dir, "world.1.1.gkmc")
	require.NoError(t, os.WriteFile(garbage, []byte{1, 2, 3}, 0644))
	_, err = l.LoadRegionFile(ctx, garbage)
	assert.ErrorIs(t, err, regionfile.ErrFormat)

	outside := writeRegion(t, dir, regionfile.Coords{X: 128, Z: 0}, voxel.Stone, grid.Index{})
	_, err = l.LoadRegionFile(ctx, outside)
	assert.ErrorIs(t, err, world.ErrOutOfBounds)

	assert.Equal(t, world.Stats{}, l.World().Stats())
}

// mapFixture создаёт world.txt и каталог world/ с двумя исправными
// регионами и одним повреждённым между ними
func mapFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mapDir := filepath.Join(root, "world")
	require.NoError(t, os.Mkdir(mapDir, 0755))

	writeRegion(t, mapDir, regionfile.Coords{X: 0, Z: 0}, voxel.Stone, grid.Index{}, grid.Index{X: 1})
	require.NoError(t, os.WriteFile(filepath.Join(mapDir, "world.1.0.gkmc"), []byte("broken"), 0644))
	writeRegion(t, mapDir, regionfile.Coords{X: -1, Z: -1}, voxel.Grass, grid.Index{Y: 3})

	manifest := filepath.Join(root, "world.txt")
	require.NoError(t, regionfile.WriteManifest(manifest, "карта world", []string{
		"world.0.0.gkmc",
		"world.1.0.gkmc",
		"world.-1.-1.gkmc",
	}))
	return manifest
}

func TestLoadMapManifestStopOnError(t *testing.T) {
	manifest := mapFixture(t)
	w := world.NewWorld()

	report, err := New(w).LoadMapManifest(context.Background(), manifest)
	require.Error(t, err)
	assert.ErrorIs(t, err, regionfile.ErrFormat)

	require.NotNil(t, report)
	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, manifest, report.Source)
	assert.Len(t, report.Regions, 1)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "world.1.0.gkmc", filepath.Base(report.Failed[0].Path))
	assert.Equal(t, 2, report.Blocks)

	_, ok := w.Block(grid.Point{X: -250, Y: 50, Z: -250})
	assert.False(t, ok, "регионы после ошибки не загружаются")
}

func TestLoadMapManifestSkipFailed(t *testing.T) {
	manifest := mapFixture(t)
	w := world.NewWorld()

	report, err := New(w, WithPolicy(SkipFailed)).LoadMapManifest(context.Background(), manifest)
	require.NoError(t, err)
	assert.Len(t, report.Regions, 2)
	assert.Len(t, report.Failed, 1)
	assert.Equal(t, 3, report.Blocks)
	assert.Equal(t, 3, w.Stats().Blocks)

	id, ok := w.Voxel(grid.Point{X: -250, Y: 50, Z: -250})
	require.True(t, ok)
	assert.Equal(t, voxel.Grass, id)

	_, ok = w.Region(grid.Point{X: 300, Y: 0, Z: 0})
	assert.False(t, ok, "на месте повреждённого региона дыра")
}

func TestLoadMapManifestResolvesAgainstManifestDir(t *testing.T) {
	root := t.TempDir()
	writeRegion(t, root, regionfile.Coords{X: 2, Z: 2}, voxel.Sand, grid.Index{})
	manifest := filepath.Join(root, "flat.txt")
	require.NoError(t, regionfile.WriteManifest(manifest, "", []string{"world.2.2.gkmc"}))

	w := world.NewWorld()
	report, err := New(w).LoadMapManifest(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Blocks)

	id, ok := w.Voxel(grid.Point{X: 512, Y: 0, Z: 512})
	require.True(t, ok)
	assert.Equal(t, voxel.Sand, id)
}

func TestLoadMapManifestMissing(t *testing.T) {
	w := world.NewWorld()
	report, err := New(w).LoadMapManifest(context.Background(), filepath.Join(t.TempDir(), "none.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.NotNil(t, report)
	assert.Empty(t, report.Regions)
	assert.Equal(t, world.Stats{}, w.Stats())
}

func TestLoadRegionFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeRegion(t, dir, regionfile.Coords{}, voxel.Stone, grid.Index{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := world.NewWorld()
	report, err := New(w).LoadRegionFiles(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Regions)
	assert.Equal(t, 0, w.Stats().Blocks)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	manifest := mapFixture(t)
	_, err := New(world.NewWorld(), WithPolicy(SkipFailed), WithMetrics(m)).
		LoadMapManifest(context.Background(), manifest)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.regionsLoaded))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.blocksInserted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.regionsFailed.WithLabelValues("format")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.regionsFailed.WithLabelValues("conflict")))
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "name", failureReason(regionfile.ErrBadName))
	assert.Equal(t, "format", failureReason(regionfile.ErrFormat))
	assert.Equal(t, "conflict", failureReason(world.ErrDuplicate))
	assert.Equal(t, "io", failureReason(os.ErrPermission))
}
