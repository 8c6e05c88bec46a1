package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/annel0/voxel-world/internal/grid"
	"github.com/annel0/voxel-world/internal/loader"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/regionfile"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/voxel"
	"github.com/annel0/voxel-world/internal/worldgen"
)

func main() {
	var (
		command    = flag.String("cmd", "stats", "Command: load, query, export, generate, names, stats")
		manifest   = flag.String("manifest", "", "Map manifest (<map>.txt)")
		regions    = flag.String("regions", "", "Region files (comma-separated)")
		skipFailed = flag.Bool("skip-failed", false, "Skip broken region files instead of stopping")
		x          = flag.Int("x", 0, "Query X")
		y          = flag.Int("y", 0, "Query Y")
		z          = flag.Int("z", 0, "Query Z")
		out        = flag.String("out", ".", "Output directory for export/generate")
		name       = flag.String("name", "world", "Map name for export/generate")
		seed       = flag.Int64("seed", 1, "Generator seed")
		radius     = flag.Int("radius", 1, "Generate regions in [-radius, radius) on X and Z")
		compress   = flag.Bool("compress", false, "Write zstd-compressed region files")
		verbose    = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		logging.UseDefaultLogger(logging.NewWriterLogger("world-cli", os.Stderr, logging.DEBUG))
	}

	src := source{manifest: *manifest, regions: parseStringList(*regions), skipFailed: *skipFailed}

	var err error
	switch *command {
	case "load":
		err = loadCmd(src)
	case "query":
		err = queryCmd(src, grid.Point{X: *x, Y: *y, Z: *z})
	case "export":
		err = exportCmd(src, *out, *name, *compress)
	case "generate":
		err = generateCmd(*out, *name, *seed, *radius, *compress)
	case "names":
		namesCmd()
	case "stats":
		err = statsCmd(src)
	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: load, query, export, generate, names, stats")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

type source struct {
	manifest   string
	regions    []string
	skipFailed bool
}

// load заполняет мир из манифеста и отдельных файлов регионов
func (s source) load() (*world.World, []*loader.Report, error) {
	if s.manifest == "" && len(s.regions) == 0 {
		return nil, nil, fmt.Errorf("нужен -manifest или -regions")
	}

	policy := loader.StopOnError
	if s.skipFailed {
		policy = loader.SkipFailed
	}
	w := world.NewWorld()
	l := loader.New(w, loader.WithPolicy(policy))
	ctx := context.Background()

	var reports []*loader.Report
	if s.manifest != "" {
		r, err := l.LoadMapManifest(ctx, s.manifest)
		if err != nil {
			return nil, nil, err
		}
		reports = append(reports, r)
	}
	if len(s.regions) > 0 {
		r, err := l.LoadRegionFiles(ctx, s.regions)
		if err != nil {
			return nil, nil, err
		}
		reports = append(reports, r)
	}
	return w, reports, nil
}

func loadCmd(src source) error {
	_, reports, err := src.load()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		fmt.Printf("📦 Load %s (%s)\n", r.ID, r.Source)
		fmt.Fprintln(tw, "REGION\tBLOCKS\tDURATION\tPATH")
		for _, rr := range r.Regions {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", rr.Coords, rr.Blocks, rr.Duration, rr.Path)
		}
		tw.Flush()
		for _, f := range r.Failed {
			fmt.Printf("⚠️  %s: %v\n", f.Path, f.Err)
		}
		fmt.Printf("✅ Regions: %d, failed: %d, blocks: %d, took %s\n\n",
			len(r.Regions), len(r.Failed), r.Blocks, r.Duration)
	}
	return nil
}

func queryCmd(src source, p grid.Point) error {
	w, _, err := src.load()
	if err != nil {
		return err
	}

	fmt.Printf("🔎 Point %s\n", p)
	if m, ok := w.Map(p); ok {
		fmt.Printf("   map    %s (%d regions)\n", m.BBox, m.Len())
	} else {
		fmt.Println("   map    not loaded")
		return nil
	}
	if r, ok := w.Region(p); ok {
		fmt.Printf("   region %s (%d blocks)\n", r.BBox, r.Len())
	} else {
		fmt.Println("   region not loaded")
		return nil
	}
	b, ok := w.Block(p)
	if !ok {
		fmt.Println("   block  not loaded")
		return nil
	}
	fmt.Printf("   block  %s (%d solid)\n", b.BBox, b.SolidCount())

	id, _ := b.Voxel(p)
	fmt.Printf("   voxel  %d %s\n", id, voxel.Name(id))
	return nil
}

func exportCmd(src source, out, name string, compress bool) error {
	w, _, err := src.load()
	if err != nil {
		return err
	}
	manifest, err := loader.Export(w, out, name, compress)
	if err != nil {
		return err
	}
	fmt.Printf("💾 Exported %d blocks → %s\n", w.Stats().Blocks, manifest)
	return nil
}

func generateCmd(out, name string, seed int64, radius int, compress bool) error {
	if radius < 1 {
		return fmt.Errorf("radius должен быть >= 1")
	}

	var coords []regionfile.Coords
	for rx := -radius; rx < radius; rx++ {
		for rz := -radius; rz < radius; rz++ {
			coords = append(coords, regionfile.Coords{X: rx, Z: rz})
		}
	}

	g := worldgen.NewGenerator(seed)
	manifest, err := g.WriteMap(out, name, coords, compress)
	if err != nil {
		return err
	}
	fmt.Printf("🌍 Generated %d regions (seed %d) → %s\n", len(coords), seed, manifest)
	return nil
}

func namesCmd() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for i, n := range voxel.Names() {
		fmt.Fprintf(tw, "%d\t%s\n", i, n)
	}
	tw.Flush()
}

func statsCmd(src source) error {
	w, _, err := src.load()
	if err != nil {
		return err
	}
	s := w.Stats()
	fmt.Printf("📊 Maps: %d\n", s.Maps)
	fmt.Printf("   Regions: %d\n", s.Regions)
	fmt.Printf("   Blocks: %d\n", s.Blocks)
	fmt.Printf("   Solid voxels: %d\n", s.SolidVoxels)
	return nil
}

// parseStringList разбирает список, разделённый запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
