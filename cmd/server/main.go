package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-world/internal/api"
	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/loader"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/observability"
	"github.com/annel0/voxel-world/internal/storage"
	"github.com/annel0/voxel-world/internal/world"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или VOXEL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Неверная конфигурация: %v", err)
	}

	// Инициализируем систему логирования
	logging.SetLogDir(cfg.Logging.GetDir())
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logging.Warn("%v, используется INFO", err)
	}
	logging.SetDefaultLevel(level)

	logging.Info("🧊 Запуск voxel-world сервера...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		log.Fatalf("❌ Ошибка инициализации OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Error("Ошибка остановки OpenTelemetry: %v", err)
		}
	}()

	// === ЗАГРУЗКА МИРА ===
	w := world.NewWorld()
	report, err := buildWorld(ctx, cfg, w)
	if err != nil {
		logging.Error("❌ Ошибка загрузки мира: %v", err)
		logging.CloseDefaultLogger()
		log.Fatalf("❌ Ошибка загрузки мира: %v", err)
	}

	stats := w.Stats()
	logging.Info("✅ Мир загружен: карт %d, регионов %d, блоков %d", stats.Maps, stats.Regions, stats.Blocks)

	// === REST API ===
	port := fmt.Sprintf(":%d", cfg.Server.GetHTTPPort())
	server := api.NewRestServer(api.Config{Port: port, World: w, Report: report})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	logging.Info("   🌐 REST API: http://localhost%s", port)
	logging.Info("   ❤️  Health check: http://localhost%s/health", port)
	logging.Info("💡 Пример: curl 'http://localhost%s/api/voxel?x=0&y=64&z=0'", port)

	select {
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал завершения, остановка...")
	case err := <-errCh:
		if err != nil {
			logging.Error("❌ REST API остановлен с ошибкой: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

// buildWorld заполняет мир из снимка BadgerDB или из файлов регионов и при
// необходимости сохраняет снимок
func buildWorld(ctx context.Context, cfg *config.Config, w *world.World) (*loader.Report, error) {
	var ws *storage.WorldStorage
	if cfg.Storage.Path != "" {
		var err error
		ws, err = storage.NewWorldStorage(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		defer ws.Close()
	}

	if cfg.Storage.Restore {
		n, err := ws.LoadWorld(w)
		if err != nil {
			return nil, err
		}
		logging.Info("📦 Восстановлено блоков из снимка %s: %d", ws.Path(), n)
		return nil, nil
	}

	policy := loader.StopOnError
	if cfg.World.SkipFailed {
		policy = loader.SkipFailed
	}
	l := loader.New(w, loader.WithPolicy(policy), loader.WithMetrics(loader.NewMetrics(nil)))

	var report *loader.Report
	if manifest := cfg.World.GetManifest(); manifest != "" {
		r, err := l.LoadMapManifest(ctx, manifest)
		if err != nil {
			return r, err
		}
		report = r
	}
	if len(cfg.World.Regions) > 0 {
		r, err := l.LoadRegionFiles(ctx, cfg.World.Regions)
		if err != nil {
			return r, err
		}
		report = mergeReports(report, r)
	}

	if report != nil {
		for _, f := range report.Failed {
			logging.Warn("⚠️ Регион %s пропущен: %v", f.Path, f.Err)
		}
	}

	if cfg.Storage.Save {
		n, err := ws.SaveWorld(w)
		if err != nil {
			return report, err
		}
		logging.Info("💾 Снимок мира сохранён в %s: %d блоков", ws.Path(), n)
	}
	return report, nil
}

func mergeReports(a, b *loader.Report) *loader.Report {
	if a == nil {
		return b
	}
	a.Regions = append(a.Regions, b.Regions...)
	a.Failed = append(a.Failed, b.Failed...)
	a.Blocks += b.Blocks
	a.Duration += b.Duration
	return a
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Использование: %s [-config config.yaml]\n", os.Args[0])
		flag.PrintDefaults()
	}
}
