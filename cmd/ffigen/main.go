// Command ffigen generates the FFI boundary for annotated Go types: a cgo
// source file exporting the conversion functions, the matching C header,
// and Swift consumer bindings.
//
// Usage:
//
//	ffigen [-out dir] [-swift] [-v] <file.go> [file.go ...]
//
// Each input file produces <base>_ffi.go and <base>_ffi.h next to the
// input (or under -out), plus <base>.swift when -swift is set.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/telus-agcg/platform-ffi-common/internal/codegen"
	"github.com/telus-agcg/platform-ffi-common/internal/consumer"
	"github.com/telus-agcg/platform-ffi-common/internal/parser"
	"github.com/telus-agcg/platform-ffi-common/internal/shape"
)

func main() {
	var (
		outDir  = flag.String("out", "", "output directory (default: next to each input)")
		swift   = flag.Bool("swift", false, "also generate Swift consumer bindings")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [-out dir] [-swift] [-v] <file.go> [file.go ...]\n", os.Args[0])
		os.Exit(1)
	}

	log := zap.NewNop()
	if *verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	defer log.Sync()

	var g errgroup.Group
	for _, input := range flag.Args() {
		input := input
		g.Go(func() error {
			return generate(input, *outDir, *swift, log.With(zap.String("input", input)))
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// generate runs the full pipeline for one input file. Inputs are
// independent; each gets its own registry and synthesizer so support sets
// stay local to the file that needs them.
func generate(input, outDir string, swift bool, log *zap.Logger) error {
	file, err := parser.ParseFile(input)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if len(file.Types) == 0 {
		log.Info("no annotated types, skipping")
		return nil
	}

	reg := shape.NewRegistry()
	if err := reg.AddFile(file); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	out, err := codegen.NewGenerator(reg, file.Package, log).Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	base := strings.TrimSuffix(filepath.Base(input), ".go")
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}

	if err := write(filepath.Join(dir, base+"_ffi.go"), out.Source); err != nil {
		return err
	}
	if err := write(filepath.Join(dir, base+"_ffi.h"), out.Header); err != nil {
		return err
	}

	if swift {
		// The consumer generator resynthesizes from the same registry;
		// representations are deterministic, so its symbols match.
		bindings, err := consumer.NewGenerator(reg, log).Generate()
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
		if err := write(filepath.Join(dir, base+".swift"), bindings); err != nil {
			return err
		}
	}

	log.Info("generated", zap.String("dir", dir), zap.Int("types", len(file.Types)))
	return nil
}

func write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
