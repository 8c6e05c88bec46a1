package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/voxel-world/internal/grid"
	"github.com/annel0/voxel-world/internal/loader"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/middleware"
	"github.com/annel0/voxel-world/internal/sysinfo"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/voxel"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer: HTTP API только для чтения поверх загруженного мира.
// Мир после загрузки не меняется, поэтому обработчики читают его без блокировок.
type RestServer struct {
	router  *gin.Engine
	world   *world.World
	report  *loader.Report
	port    string
	metrics *sysinfo.Process
	server  *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string               // порт для запуска сервера
	World    *world.World         // загруженный мир
	Report   *loader.Report       // итог загрузки (может быть nil)
	Registry *prometheus.Registry // регистр метрик; nil: дефолтный
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.World == nil {
		config.World = world.NewWorld()
	}

	// Устанавливаем режим релиза для gin
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("voxel-world"))

	loggerMw := middleware.NewRequestLogger("/health", "/metrics")
	router.Use(loggerMw.Handler())

	promMw := middleware.NewPrometheusMiddleware("voxelworld", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	rs := &RestServer{
		router:  router,
		world:   config.World,
		report:  config.Report,
		port:    config.Port,
		metrics: sysinfo.New(),
	}
	rs.server = &http.Server{
		Addr:              rs.port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	rs.setupRoutes()
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")
	{
		api.GET("/voxel", rs.handleVoxel)
		api.GET("/block", rs.handleBlock)
		api.GET("/region", rs.handleRegion)
		api.GET("/map", rs.handleMap)
		api.GET("/stats", rs.handleStats)
		api.GET("/voxel-types", rs.handleVoxelTypes)
	}

	// Health check
	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

var errMissingCoord = errors.New("не задана координата")

// parsePoint читает координаты x, y, z из query-параметров
func parsePoint(c *gin.Context) (grid.Point, error) {
	var p grid.Point
	for _, axis := range []struct {
		name string
		dst  *int
	}{{"x", &p.X}, {"y", &p.Y}, {"z", &p.Z}} {
		raw, ok := c.GetQuery(axis.name)
		if !ok {
			return p, fmt.Errorf("%w %s", errMissingCoord, axis.name)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("неверная координата %s=%q", axis.name, raw)
		}
		*axis.dst = v
	}
	return p, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: err.Error()})
}

func notFound(c *gin.Context, what string, p grid.Point) {
	c.JSON(http.StatusNotFound, GenericResponse{
		Success: false,
		Message: fmt.Sprintf("%s в точке %s не загружен", what, p),
	})
}

// BoxView: коробка в JSON-ответах
type BoxView struct {
	Min [3]int `json:"min"`
	Max [3]int `json:"max"`
}

func boxView(b grid.Box) BoxView {
	return BoxView{
		Min: [3]int{b.Min.X, b.Min.Y, b.Min.Z},
		Max: [3]int{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// VoxelView: ответ /api/voxel
type VoxelView struct {
	Point [3]int   `json:"point"`
	ID    voxel.ID `json:"id"`
	Name  string   `json:"name"`
}

// BlockView: ответ /api/block
type BlockView struct {
	BBox   BoxView `json:"bbox"`
	Solid  int     `json:"solid"`
	Voxels []byte  `json:"voxels,omitempty"` // base64, порядок y, x, z
}

// RegionView: ответ /api/region
type RegionView struct {
	BBox   BoxView `json:"bbox"`
	Blocks int     `json:"blocks"`
}

// MapView: ответ /api/map
type MapView struct {
	BBox    BoxView `json:"bbox"`
	Regions int     `json:"regions"`
	Blocks  int     `json:"blocks"`
}

func (rs *RestServer) handleVoxel(c *gin.Context) {
	p, err := parsePoint(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	id, ok := rs.world.Voxel(p)
	if !ok {
		notFound(c, "блок", p)
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Воксель",
		Data:    VoxelView{Point: [3]int{p.X, p.Y, p.Z}, ID: id, Name: voxel.Name(id)},
	})
}

func (rs *RestServer) handleBlock(c *gin.Context) {
	p, err := parsePoint(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	b, ok := rs.world.Block(p)
	if !ok {
		notFound(c, "блок", p)
		return
	}

	view := BlockView{BBox: boxView(b.BBox), Solid: b.SolidCount()}
	if withVoxels, _ := strconv.ParseBool(c.Query("voxels")); withVoxels {
		view.Voxels = b.Bytes()
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Блок", Data: view})
}

func (rs *RestServer) handleRegion(c *gin.Context) {
	p, err := parsePoint(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	r, ok := rs.world.Region(p)
	if !ok {
		notFound(c, "регион", p)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Регион",
		Data:    RegionView{BBox: boxView(r.BBox), Blocks: r.Len()},
	})
}

func (rs *RestServer) handleMap(c *gin.Context) {
	p, err := parsePoint(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	m, ok := rs.world.Map(p)
	if !ok {
		notFound(c, "карта", p)
		return
	}

	blocks := 0
	for _, r := range m.Regions() {
		blocks += r.Len()
	}
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Карта",
		Data:    MapView{BBox: boxView(m.BBox), Regions: m.Len(), Blocks: blocks},
	})
}

// handleStats возвращает статистику мира, последней загрузки и процесса
func (rs *RestServer) handleStats(c *gin.Context) {
	stats := map[string]interface{}{
		"world":       rs.world.Stats(),
		"server":      rs.metrics.Snapshot(),
		"server_time": time.Now().Unix(),
	}
	if rs.report != nil {
		failed := make([]map[string]string, 0, len(rs.report.Failed))
		for _, f := range rs.report.Failed {
			failed = append(failed, map[string]string{"path": f.Path, "error": f.Error()})
		}
		stats["load"] = map[string]interface{}{
			"id":       rs.report.ID,
			"source":   rs.report.Source,
			"regions":  len(rs.report.Regions),
			"blocks":   rs.report.Blocks,
			"failed":   failed,
			"duration": rs.report.Duration.String(),
		}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}

// VoxelType: запись таблицы типов вокселей
type VoxelType struct {
	ID   voxel.ID `json:"id"`
	Name string   `json:"name"`
}

func (rs *RestServer) handleVoxelTypes(c *gin.Context) {
	names := voxel.Names()
	types := make([]VoxelType, len(names))
	for i, name := range names {
		types[i] = VoxelType{ID: voxel.ID(i), Name: name}
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Типы вокселей", Data: types})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
		"uptime": rs.metrics.Uptime(),
	})
}

// Start запускает REST сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	logging.Info("🌐 REST API слушает %s", rs.port)

	err := rs.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop останавливает REST сервер, дожидаясь завершения активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.server.Shutdown(ctx)
}
