package regionfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/annel0/voxel-world/internal/grid"
)

// Формат файла региона (little-endian):
//
//	int32  size           число байт данных вокселей после таблицы
//	int16  index[4096]     -1 если блока нет, иначе номер 4096-байтового куска
//	byte   payload[size]   данные блоков, блок i лежит с offset*4096
//
// Слоты таблицы перечисляют блоки в порядке by, bz, bx:
// slot = by*256 + bz*16 + bx.
const (
	Slots      = 16 * 16 * 16
	BlockBytes = 16 * 16 * 16
	BlockEdge  = 16

	absent = -1

	// максимальный объём данных, адресуемый int16 смещениями
	maxPayload = (1 << 15) * BlockBytes
)

var (
	// ErrFormat: файл повреждён: короткое чтение, неверный размер или смещение
	ErrFormat = errors.New("regionfile: неверный формат")

	// ErrBadName: имя файла не содержит координат региона
	ErrBadName = errors.New("regionfile: неверное имя файла")
)

// File: содержимое одного файла региона.
// Blocks[slot] == nil означает, что блока нет.
type File struct {
	Coords Coords
	Blocks [Slots][]byte
}

// Entry описывает присутствующий блок и его положение в мире
type Entry struct {
	Slot   int
	Local  grid.Index
	Box    grid.Box
	Voxels []byte
}

// Slot возвращает номер слота для локального индекса блока
func Slot(local grid.Index) int {
	return local.Y*BlockEdge*BlockEdge + local.Z*BlockEdge + local.X
}

// LocalOf: обратное к Slot преобразование
func LocalOf(slot int) grid.Index {
	return grid.Index{
		X: slot % BlockEdge,
		Z: (slot / BlockEdge) % BlockEdge,
		Y: slot / (BlockEdge * BlockEdge),
	}
}

// Set записывает данные блока по локальному индексу
func (f *File) Set(local grid.Index, voxels []byte) error {
	if local.X < 0 || local.Y < 0 || local.Z < 0 || local.X >= BlockEdge || local.Y >= BlockEdge || local.Z >= BlockEdge {
		return fmt.Errorf("%w: локальный индекс %+v", ErrFormat, local)
	}
	if len(voxels) != BlockBytes {
		return fmt.Errorf("%w: блок из %d байт", ErrFormat, len(voxels))
	}
	f.Blocks[Slot(local)] = voxels
	return nil
}

// Len возвращает число присутствующих блоков
func (f *File) Len() int {
	n := 0
	for _, b := range f.Blocks {
		if b != nil {
			n++
		}
	}
	return n
}

// Entries возвращает присутствующие блоки в порядке слотов вместе с их
// коробками в координатах мира
func (f *File) Entries() []Entry {
	origin := f.Coords.Origin()
	entries := make([]Entry, 0, f.Len())
	for slot, voxels := range f.Blocks {
		if voxels == nil {
			continue
		}
		local := LocalOf(slot)
		lo := origin.Add(grid.Point{X: local.X * BlockEdge, Y: local.Y * BlockEdge, Z: local.Z * BlockEdge})
		hi := lo.Add(grid.Point{X: BlockEdge - 1, Y: BlockEdge - 1, Z: BlockEdge - 1})
		entries = append(entries, Entry{
			Slot:   slot,
			Local:  local,
			Box:    grid.NewBox(lo, hi),
			Voxels: voxels,
		})
	}
	return entries
}

// Decode читает файл региона. Все смещения проверяются до возврата:
// повреждённый файл не возвращает ни одного блока.
func Decode(r io.Reader) (*File, error) {
	var size int32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("%w: заголовок: %v", ErrFormat, err)
	}
	if size < 0 || int64(size) > maxPayload {
		return nil, fmt.Errorf("%w: размер данных %d", ErrFormat, size)
	}

	var index [Slots]int16
	if err := binary.Read(r, binary.LittleEndian, &index); err != nil {
		return nil, fmt.Errorf("%w: таблица блоков: %v", ErrFormat, err)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: данные вокселей (%d байт): %v", ErrFormat, size, err)
	}

	f := &File{}
	for slot, offset := range index {
		if offset == absent {
			continue
		}
		if offset < 0 {
			return nil, fmt.Errorf("%w: слот %d: смещение %d", ErrFormat, slot, offset)
		}
		start := int(offset) * BlockBytes
		if start+BlockBytes > int(size) {
			return nil, fmt.Errorf("%w: слот %d: блок [%d,%d) за пределами данных %d", ErrFormat, slot, start, start+BlockBytes, size)
		}
		f.Blocks[slot] = payload[start : start+BlockBytes : start+BlockBytes]
	}
	return f, nil
}

// Encode записывает файл региона, упаковывая блоки подряд в порядке слотов
func Encode(w io.Writer, f *File) error {
	var index [Slots]int16
	count := 0
	for slot, voxels := range f.Blocks {
		if voxels == nil {
			index[slot] = absent
			continue
		}
		if len(voxels) != BlockBytes {
			return fmt.Errorf("%w: слот %d: блок из %d байт", ErrFormat, slot, len(voxels))
		}
		index[slot] = int16(count)
		count++
	}

	size := int32(count * BlockBytes)
	if err := binary.Write(w, binary.LittleEndian, size); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, &index); err != nil {
		return err
	}
	for _, voxels := range f.Blocks {
		if voxels == nil {
			continue
		}
		if _, err := w.Write(voxels); err != nil {
			return err
		}
	}
	return nil
}
