package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/annel0/voxel-world/internal/grid"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

const (
	blockPrefix = "block:"
	snapshotKey = "meta:snapshot"
)

var (
	// ErrNotFound: блок отсутствует в снимке
	ErrNotFound = errors.New("storage: блок не найден")

	// ErrNotReady: хранилище закрыто
	ErrNotReady = errors.New("storage: хранилище не готово")
)

// SnapshotInfo описывает последний сохранённый снимок мира
type SnapshotInfo struct {
	Blocks  int         `json:"blocks"`
	Stats   world.Stats `json:"stats"`
	SavedAt time.Time   `json:"saved_at"`
}

// WorldStorage хранит снимки блоков мира в BadgerDB.
// Значение каждого ключа block:<x>:<y>:<z>: 4096 вокселей, сжатых zstd.
type WorldStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewWorldStorage открывает (или создаёт) хранилище в dataPath/world
func NewWorldStorage(dataPath string) (*WorldStorage, error) {
	dbPath := filepath.Join(dataPath, "world")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации zstd: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации zstd: %w", err)
	}

	return &WorldStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
		enc:     enc,
		dec:     dec,
	}, nil
}

// Path возвращает каталог базы
func (ws *WorldStorage) Path() string {
	return ws.dbPath
}

// Close закрывает хранилище данных
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	ws.enc.Close()
	ws.dec.Close()
	return ws.db.Close()
}

func blockKey(p grid.Point) []byte {
	return []byte(fmt.Sprintf("%s%d:%d:%d", blockPrefix, p.X, p.Y, p.Z))
}

func parseBlockKey(key []byte) (grid.Point, error) {
	var p grid.Point
	rest := strings.TrimPrefix(string(key), blockPrefix)
	if _, err := fmt.Sscanf(rest, "%d:%d:%d", &p.X, &p.Y, &p.Z); err != nil {
		return p, fmt.Errorf("ошибка парсинга ключа '%s': %w", key, err)
	}
	return p, nil
}

func blockBox(origin grid.Point) grid.Box {
	edge := world.BlockEdge - 1
	return grid.NewBox(origin, origin.Add(grid.Point{X: edge, Y: edge, Z: edge}))
}

// SaveWorld сохраняет все блоки мира и сведения о снимке, заменяя
// блоки предыдущего снимка. Возвращает число записанных блоков.
func (ws *WorldStorage) SaveWorld(w *world.World) (int, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return 0, ErrNotReady
	}

	if err := ws.db.DropPrefix([]byte(blockPrefix)); err != nil {
		return 0, fmt.Errorf("ошибка удаления прежнего снимка: %w", err)
	}

	wb := ws.db.NewWriteBatch()
	defer wb.Cancel()

	var (
		count int
		err   error
	)
	w.EachBlock(func(b *world.Block) bool {
		value := ws.enc.EncodeAll(b.Bytes(), nil)
		if err = wb.Set(blockKey(b.BBox.Min), value); err != nil {
			err = fmt.Errorf("ошибка записи блока %s: %w", b.BBox, err)
			return false
		}
		count++
		return true
	})
	if err != nil {
		return 0, err
	}

	info, err := json.Marshal(SnapshotInfo{Blocks: count, Stats: w.Stats(), SavedAt: time.Now().UTC()})
	if err != nil {
		return 0, fmt.Errorf("ошибка сериализации снимка: %w", err)
	}
	if err := wb.Set([]byte(snapshotKey), info); err != nil {
		return 0, fmt.Errorf("ошибка записи снимка: %w", err)
	}

	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return count, nil
}

// LoadWorld вставляет в w все блоки снимка.
// Ошибка вставки (повтор, неверная геометрия) прерывает загрузку.
func (ws *WorldStorage) LoadWorld(w *world.World) (int, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return 0, ErrNotReady
	}

	count := 0
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(blockPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			origin, err := parseBlockKey(item.Key())
			if err != nil {
				return err
			}

			b, err := ws.decodeBlock(item, origin)
			if err != nil {
				return err
			}
			if err := w.Insert(b); err != nil {
				return fmt.Errorf("ошибка вставки блока %s: %w", b.BBox, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return count, nil
}

// LoadBlock читает один блок по его минимальному углу
func (ws *WorldStorage) LoadBlock(origin grid.Point) (*world.Block, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, ErrNotReady
	}

	var block world.Block
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(origin))
		if err != nil {
			return err
		}
		block, err = ws.decodeBlock(item, origin)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, origin)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return &block, nil
}

// Snapshot возвращает сведения о последнем сохранённом снимке
func (ws *WorldStorage) Snapshot() (*SnapshotInfo, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, ErrNotReady
	}

	var info SnapshotInfo
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &info)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения снимка: %w", err)
	}
	return &info, nil
}

func (ws *WorldStorage) decodeBlock(item *badger.Item, origin grid.Point) (world.Block, error) {
	var voxels []byte
	err := item.Value(func(val []byte) error {
		var err error
		voxels, err = ws.dec.DecodeAll(val, make([]byte, 0, world.BlockVoxels))
		return err
	})
	if err != nil {
		return world.Block{}, fmt.Errorf("ошибка распаковки блока %s: %w", origin, err)
	}
	return world.NewBlock(blockBox(origin), voxels)
}
