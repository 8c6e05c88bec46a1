package regionfile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/annel0/voxel-world/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voxels(seed byte) []byte {
	data := make([]byte, BlockBytes)
	for i := range data {
		data[i] = seed + byte(i%7)
	}
	return data
}

// rawFile собирает файл вручную, чтобы проверить декодер независимо от Encode
func rawFile(t *testing.T, size int32, index map[int]int16, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, size))
	for slot := 0; slot < Slots; slot++ {
		offset, ok := index[slot]
		if !ok {
			offset = -1
		}
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, offset))
	}
	buf.Write(payload)
	return buf.Bytes()
}

func TestParseName(t *testing.T) {
	c, err := ParseName("maps/world/world.3.-2.dat")
	require.NoError(t, err)
	assert.Equal(t, Coords{X: 3, Z: -2}, c)
	assert.Equal(t, grid.Point{X: 768, Y: 0, Z: -512}, c.Origin())
	assert.Equal(t, grid.Point{X: 1023, Y: 255, Z: -257}, c.Box().Max)

	c, err = ParseName("r.-128.127.gkmc.zst")
	require.NoError(t, err)
	assert.Equal(t, Coords{X: -128, Z: 127}, c)

	c, err = ParseName("world.2147483647.-2147483648.gkmc")
	require.NoError(t, err)
	assert.Equal(t, Coords{X: 2147483647, Z: -2147483648}, c)

	for _, bad := range []string{
		"world.dat", "world.a.2.dat", "world.1.b.dat", ".1.2.dat", "world",
		"world.72057594037927937.0.gkmc", "world.0.-2147483649.gkmc",
	} {
		_, err := ParseName(bad)
		assert.ErrorIs(t, err, ErrBadName, bad)
	}
}

func TestFileNameRoundTrip(t *testing.T) {
	c := Coords{X: -7, Z: 12}
	name := FileName("world", c, "gkmc")
	assert.Equal(t, "world.-7.12.gkmc", name)
	parsed, err := ParseName(name)
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}

func TestCheckMapName(t *testing.T) {
	assert.NoError(t, CheckMapName("world"))
	assert.NoError(t, CheckMapName("my-map_2"))
	for _, bad := range []string{"", "my.map", "a/b", `a\b`} {
		assert.ErrorIs(t, CheckMapName(bad), ErrBadName, bad)
	}
}

func TestCoordsOf(t *testing.T) {
	assert.Equal(t, Coords{X: 0, Z: 0}, CoordsOf(grid.Point{X: 255, Z: 0}))
	assert.Equal(t, Coords{X: 1, Z: -1}, CoordsOf(grid.Point{X: 256, Z: -1}))
	assert.Equal(t, Coords{X: -1, Z: -2}, CoordsOf(grid.Point{X: -256, Z: -257}))
}

func TestSlotOrder(t *testing.T) {
	// порядок вложенных циклов: by, bz, bx
	i := 0
	for by := 0; by < 16; by++ {
		for bz := 0; bz < 16; bz++ {
			for bx := 0; bx < 16; bx++ {
				local := grid.Index{X: bx, Y: by, Z: bz}
				require.Equal(t, i, Slot(local))
				require.Equal(t, local, LocalOf(i))
				i++
			}
		}
	}
}

func TestDecodeScenario(t *testing.T) {
	// слот 1 (второй элемент таблицы): bx=1, by=0, bz=0
	payload := append(voxels(10), voxels(50)...)
	data := rawFile(t, int32(len(payload)), map[int]int16{1: 1, 256: 0}, payload)

	f, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	f.Coords = Coords{X: 3, Z: -2}

	entries := f.Entries()
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Slot)
	assert.Equal(t, grid.Index{X: 1, Y: 0, Z: 0}, entries[0].Local)
	assert.Equal(t, grid.Point{X: 784, Y: 0, Z: -512}, entries[0].Box.Min)
	assert.Equal(t, grid.Point{X: 799, Y: 15, Z: -497}, entries[0].Box.Max)
	assert.Equal(t, voxels(50), entries[0].Voxels)

	assert.Equal(t, grid.Index{X: 0, Y: 1, Z: 0}, entries[1].Local)
	assert.Equal(t, grid.Point{X: 768, Y: 16, Z: -512}, entries[1].Box.Min)
	assert.Equal(t, voxels(10), entries[1].Voxels)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	payload := voxels(1)

	cases := map[string][]byte{
		"пустой файл":              {},
		"короткий заголовок":       {1, 2},
		"короткая таблица":         rawFile(t, 0, nil, nil)[:100],
		"короткие данные":          rawFile(t, int32(2*BlockBytes), map[int]int16{0: 0}, payload),
		"смещение за данными":      rawFile(t, int32(BlockBytes), map[int]int16{0: 1}, payload),
		"отрицательное смещение":   rawFile(t, int32(BlockBytes), map[int]int16{0: -2}, payload),
		"отрицательный размер":     rawFile(t, -5, nil, nil),
		"размер не кратен блоку":   rawFile(t, int32(BlockBytes-1), map[int]int16{0: 0}, payload[:BlockBytes-1]),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := Decode(bytes.NewReader(data))
			assert.ErrorIs(t, err, ErrFormat)
			assert.Nil(t, f)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := &File{Coords: Coords{X: -1, Z: 4}}
	present := map[grid.Index][]byte{
		{X: 0, Y: 0, Z: 0}:    voxels(1),
		{X: 15, Y: 0, Z: 0}:   voxels(2),
		{X: 3, Y: 7, Z: 9}:    voxels(3),
		{X: 15, Y: 15, Z: 15}: voxels(4),
	}
	for local, data := range present {
		require.NoError(t, f.Set(local, data))
	}
	assert.Equal(t, len(present), f.Len())

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, f))
	assert.Equal(t, 4+2*Slots+len(present)*BlockBytes, buf.Len())

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	decoded.Coords = f.Coords

	got := map[grid.Index][]byte{}
	for _, e := range decoded.Entries() {
		got[e.Local] = e.Voxels
		assert.Equal(t, e.Box.Min, f.Coords.Origin().Add(grid.Point{X: e.Local.X * 16, Y: e.Local.Y * 16, Z: e.Local.Z * 16}))
	}
	assert.Equal(t, present, got)
}

func TestSetValidation(t *testing.T) {
	f := &File{}
	assert.ErrorIs(t, f.Set(grid.Index{X: 16}, voxels(0)), ErrFormat)
	assert.ErrorIs(t, f.Set(grid.Index{}, []byte{1, 2, 3}), ErrFormat)
	assert.Equal(t, 0, f.Len())
}

func TestReadWriteCompressed(t *testing.T) {
	dir := t.TempDir()
	f := &File{}
	require.NoError(t, f.Set(grid.Index{X: 2, Y: 3, Z: 4}, voxels(9)))

	for _, compress := range []bool{false, true} {
		path := filepath.Join(dir, FileName("world", Coords{X: 5, Z: -6}, "gkmc"))
		if compress {
			path += ".zst"
		}
		require.NoError(t, Write(path, f, compress))

		got, err := Read(path)
		require.NoError(t, err)
		assert.Equal(t, Coords{X: 5, Z: -6}, got.Coords)
		require.Equal(t, 1, got.Len())
		assert.Equal(t, voxels(9), got.Blocks[Slot(grid.Index{X: 2, Y: 3, Z: 4})])
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, "world.1.1.gkmc"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Read(filepath.Join(dir, "noname"))
	assert.ErrorIs(t, err, ErrBadName)

	truncated := filepath.Join(dir, "world.0.0.gkmc")
	require.NoError(t, os.WriteFile(truncated, []byte{0, 0, 0, 0, 1}, 0644))
	_, err = Read(truncated)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestParseManifest(t *testing.T) {
	input := strings.Join([]string{
		"# карта мира",
		"world.0.0.gkmc",
		"",
		"   world.1.0.gkmc   ",
		"#world.2.0.gkmc",
		"world.-1.3.gkmc\r",
	}, "\n")

	entries, err := ParseManifest(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"world.0.0.gkmc", "world.1.0.gkmc", "world.-1.3.gkmc"}, entries)
}

func TestManifestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.txt")
	require.NoError(t, WriteManifest(path, "generated", []string{"a.0.0.gkmc", "a.0.1.gkmc"}))

	entries, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.0.0.gkmc", "a.0.1.gkmc"}, entries)

	_, err = ReadManifest(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
