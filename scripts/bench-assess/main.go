// bench-assess measures assessment throughput and heap usage over a batch of
// synthetic changes.
//
// Usage:
//
//	go run ./scripts/bench-assess --changes 100000 --files 40 --profile-dir docs/profiles/assess
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/Sumatoshi-tech/cif/pkg/assess"
	"github.com/Sumatoshi-tech/cif/pkg/change"
	"github.com/Sumatoshi-tech/cif/pkg/config"
)

var sampleAreas = []string{"", "auth", "", "billing", "docs", "", "migrations"}

var samplePaths = []string{
	"internal/service/handler.go",
	"internal/service/handler_test.go",
	"go.mod",
	"web/src/app.tsx",
	"docs/guide.md",
	"db/migrations/0042_add_index.sql",
	"scripts/deploy.py",
}

func main() {
	count := flag.Int("changes", 10000, "Number of changes to assess")
	files := flag.Int("files", 10, "Files per change")
	configPath := flag.String("config", "", "Path to .cif.yaml (defaults when empty)")
	profileDir := flag.String("profile-dir", "", "Directory to write heap and CPU profiles")

	flag.Parse()

	if *count <= 0 || *files <= 0 {
		log.Fatal("--changes and --files must be positive")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	engine, err := assess.New(*cfg)
	if err != nil {
		log.Fatalf("build engine: %v", err)
	}

	if *profileDir != "" {
		if mkErr := os.MkdirAll(*profileDir, 0o755); mkErr != nil {
			log.Fatalf("mkdir profile-dir: %v", mkErr)
		}

		stop := startCPUProfile(filepath.Join(*profileDir, "cpu.prof"))
		defer stop()
	}

	inputs := make([]change.Input, *count)
	for i := range inputs {
		inputs[i] = syntheticChange(i, *files)
	}

	before := heapInUse()
	counts := make(map[assess.Classification]int)
	start := time.Now()

	for _, in := range inputs {
		res, assessErr := engine.Assess(in)
		if assessErr != nil {
			log.Fatalf("assess %s: %v", in.Identifier, assessErr)
		}

		counts[res.Classification]++
	}

	elapsed := time.Since(start)
	after := heapInUse()

	log.Printf("assessed %d changes (%d files each) in %s", *count, *files, elapsed)
	log.Printf("  %.0f changes/s, %s per change", float64(*count)/elapsed.Seconds(), elapsed/time.Duration(*count))
	log.Printf("  [heap] inuse before=%6.1f MB after=%6.1f MB", float64(before)/1e6, float64(after)/1e6)

	for _, class := range assess.Classifications() {
		log.Printf("  %-8s %d", class, counts[class])
	}

	if *profileDir != "" {
		writeHeapProfile(filepath.Join(*profileDir, "heap.prof"))
	}
}

func syntheticChange(i, files int) change.Input {
	in := change.Input{
		Identifier: fmt.Sprintf("bench-%d", i),
		Files:      make([]change.FileChange, files),
	}

	for j := range in.Files {
		k := (i + j) % len(samplePaths)
		in.Files[j] = change.FileChange{
			Path:         samplePaths[k],
			LinesAdded:   (i*7 + j*13) % 400,
			LinesRemoved: (i*3 + j) % 120,
			Area:         sampleAreas[k],
		}
	}

	if i%3 == 0 {
		delta := -float64(i%5) / 2
		in.CoverageDelta = &delta
	}

	if i%11 == 0 {
		in.Metadata = change.Metadata{config.DefaultBreakingMetadataKey: true}
	}

	return in
}

func heapInUse() uint64 {
	runtime.GC()
	runtime.GC()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return m.HeapInuse
}

func startCPUProfile(path string) func() {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create cpu profile: %v", err)
	}

	if startErr := pprof.StartCPUProfile(f); startErr != nil {
		log.Fatalf("start cpu profile: %v", startErr)
	}

	log.Printf("CPU profiling enabled -> %s", path)

	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}

func writeHeapProfile(path string) {
	runtime.GC()

	f, err := os.Create(path)
	if err != nil {
		log.Printf("warning: create heap profile %s: %v", path, err)

		return
	}
	defer f.Close()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("warning: write heap profile %s: %v", path, err)
	}
}
