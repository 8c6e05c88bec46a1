package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/regionfile"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Policy определяет реакцию на ошибку загрузки региона из манифеста
type Policy int

const (
	// StopOnError прекращает загрузку карты на первом неудачном регионе
	StopOnError Policy = iota
	// SkipFailed пропускает неудачный регион (в мире остаётся дыра) и продолжает
	SkipFailed
)

func (p Policy) String() string {
	if p == SkipFailed {
		return "skip-failed"
	}
	return "stop-on-error"
}

// RegionReport описывает один загруженный файл региона
type RegionReport struct {
	Path     string            `json:"path"`
	Coords   regionfile.Coords `json:"coords"`
	Blocks   int               `json:"blocks"`
	Duration time.Duration     `json:"duration"`
}

// Failure: регион, который не удалось загрузить
type Failure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Error возвращает текст ошибки (для JSON-ответов)
func (f Failure) Error() string {
	return f.Err.Error()
}

// Report: итог загрузки карты
type Report struct {
	ID       uuid.UUID      `json:"id"`
	Source   string         `json:"source"`
	Regions  []RegionReport `json:"regions"`
	Failed   []Failure      `json:"failed"`
	Blocks   int            `json:"blocks"`
	Started  time.Time      `json:"started"`
	Duration time.Duration  `json:"duration"`
}

// Option настраивает Loader
type Option func(*Loader)

// WithPolicy задаёт политику обработки ошибок
func WithPolicy(p Policy) Option {
	return func(l *Loader) { l.policy = p }
}

// WithMetrics подключает Prometheus-метрики
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// Loader заполняет мир блоками из файлов регионов.
// Loader не потокобезопасен: все вставки выполняются последовательно.
type Loader struct {
	world   *world.World
	policy  Policy
	metrics *Metrics
	tracer  trace.Tracer
}

// New создаёт загрузчик для мира
func New(w *world.World, opts ...Option) *Loader {
	l := &Loader{
		world:  w,
		policy: StopOnError,
		tracer: otel.Tracer("github.com/annel0/voxel-world/internal/loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// World возвращает заполняемый мир
func (l *Loader) World() *world.World {
	return l.world
}

// LoadRegionFile загружает один файл региона. Файл применяется целиком или
// не применяется вовсе: повреждённые данные и конфликты с уже загруженными
// блоками не меняют мир.
func (l *Loader) LoadRegionFile(ctx context.Context, path string) (RegionReport, error) {
	_, span := l.tracer.Start(ctx, "loader.LoadRegionFile",
		trace.WithAttributes(attribute.String("region.path", path)))
	defer span.End()

	start := time.Now()
	report := RegionReport{Path: path}

	logging.Debug("Загрузка региона %s...", path)

	f, err := regionfile.Read(path)
	if err != nil {
		return report, l.fail(span, path, err)
	}
	report.Coords = f.Coords
	span.SetAttributes(attribute.Int("region.x", f.Coords.X), attribute.Int("region.z", f.Coords.Z))

	n, err := l.ApplyRegion(f)
	if err != nil {
		return report, l.fail(span, path, err)
	}

	report.Blocks = n
	report.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("region.blocks", n))
	l.metrics.observeLoaded(n, report.Duration.Seconds())

	logging.Debug("Регион %s %s: %d блоков за %s", path, f.Coords.Box(), n, report.Duration)
	return report, nil
}

func (l *Loader) fail(span trace.Span, path string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	l.metrics.observeFailed(err)
	logging.Error("❌ Ошибка загрузки региона %s: %v", path, err)
	return err
}

// ApplyRegion вставляет блоки декодированного файла региона в мир.
// Сначала проверяются все блоки, затем выполняются вставки.
func (l *Loader) ApplyRegion(f *regionfile.File) (int, error) {
	entries := f.Entries()
	for _, e := range entries {
		if err := l.world.CanInsert(e.Box); err != nil {
			return 0, fmt.Errorf("регион %s, слот %d: %w", f.Coords, e.Slot, err)
		}
	}

	for i, e := range entries {
		b, err := world.NewBlock(e.Box, e.Voxels)
		if err == nil {
			err = l.world.Insert(b)
		}
		if err != nil {
			// после успешной проверки CanInsert сюда попасть нельзя
			return i, fmt.Errorf("регион %s, слот %d: %w", f.Coords, e.Slot, err)
		}
	}
	return len(entries), nil
}

// LoadMapManifest загружает все регионы, перечисленные в манифесте карты.
//
// Записи манифеста разрешаются относительно каталога карты: для world.txt это
// каталог world рядом с манифестом, а если его нет, то каталог самого
// манифеста. Нечитаемый манифест считается ошибкой без загрузки регионов.
func (l *Loader) LoadMapManifest(ctx context.Context, path string) (*Report, error) {
	ctx, span := l.tracer.Start(ctx, "loader.LoadMapManifest",
		trace.WithAttributes(attribute.String("manifest.path", path)))
	defer span.End()

	report := newReport(path)
	logging.Info("📦 Загрузка карты %s (%s)...", path, l.policy)

	entries, err := regionfile.ReadManifest(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.Error("❌ Ошибка загрузки карты %s: %v", path, err)
		return report, err
	}

	dir := mapDir(path)
	paths := make([]string, len(entries))
	for i, e := range entries {
		if filepath.IsAbs(e) {
			paths[i] = e
		} else {
			paths[i] = filepath.Join(dir, e)
		}
	}

	err = l.loadAll(ctx, report, paths)
	span.SetAttributes(
		attribute.Int("map.regions", len(report.Regions)),
		attribute.Int("map.failed", len(report.Failed)),
		attribute.Int("map.blocks", report.Blocks),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return report, fmt.Errorf("загрузка карты %s прервана: %w", path, err)
	}
	return report, nil
}

// LoadRegionFiles загружает перечисленные файлы регионов с той же политикой
func (l *Loader) LoadRegionFiles(ctx context.Context, paths []string) (*Report, error) {
	report := newReport(strings.Join(paths, ","))
	if err := l.loadAll(ctx, report, paths); err != nil {
		return report, err
	}
	return report, nil
}

func newReport(source string) *Report {
	return &Report{
		ID:      uuid.New(),
		Source:  source,
		Started: time.Now(),
	}
}

func (l *Loader) loadAll(ctx context.Context, report *Report, paths []string) error {
	defer func() {
		report.Duration = time.Since(report.Started)
		logging.Info("✅ Загрузка %s завершена: регионов %d, ошибок %d, блоков %d за %s",
			report.ID, len(report.Regions), len(report.Failed), report.Blocks, report.Duration)
	}()

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		rr, err := l.LoadRegionFile(ctx, p)
		if err != nil {
			report.Failed = append(report.Failed, Failure{Path: p, Err: err})
			if l.policy == StopOnError {
				return err
			}
			logging.Warn("Регион %s пропущен", p)
			continue
		}
		report.Regions = append(report.Regions, rr)
		report.Blocks += rr.Blocks
	}
	return nil
}

// mapDir возвращает каталог, относительно которого разрешаются записи манифеста
func mapDir(manifest string) string {
	dir := strings.TrimSuffix(manifest, filepath.Ext(manifest))
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return filepath.Dir(manifest)
}
