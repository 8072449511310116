package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ironsheep/lci-tools/internal/blendmode"
	"github.com/ironsheep/lci-tools/internal/compose"
	"github.com/ironsheep/lci-tools/internal/config"
	"github.com/ironsheep/lci-tools/internal/geometry"
	"github.com/ironsheep/lci-tools/internal/imaging"
	"github.com/ironsheep/lci-tools/internal/lci"
	"github.com/ironsheep/lci-tools/internal/pack"
)

const usage = `lcipack - build and take apart LCI layered composite images

Usage:
  lcipack build   <manifest.yaml> -o <out.lci> [-watch] [-debounce 250ms]
  lcipack unpack  <file.lci> -o <dir>
  lcipack inspect <file.lci>
  lcipack flatten <file.lci> -o <out.png>
  lcipack bounds  <image.png> [-multi]
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("lcipack: ")
	os.Exit(run(os.Args[1:]))
}

// run executes one subcommand and returns the process exit code. It returns
// instead of exiting so deferred cleanup runs first.
func run(args []string) int {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	settings := config.LoadSettings()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "build":
		err = runBuild(ctx, settings, rest)
	case "unpack":
		err = runUnpack(ctx, settings, rest)
	case "inspect":
		err = runInspect(rest)
	case "flatten":
		err = runFlatten(settings, rest)
	case "bounds":
		err = runBounds(rest)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", cmd, usage)
		return 2
	}
	if err != nil {
		log.Print(err)
		return 1
	}
	return 0
}

// parse handles "<input> [flags]" as well as "[flags] <input>".
func parse(fs *flag.FlagSet, args []string) (string, error) {
	var input string
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		input, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if input == "" {
		input = fs.Arg(0)
	}
	if input == "" {
		return "", fmt.Errorf("%s: missing input file", fs.Name())
	}
	return input, nil
}

func runBuild(ctx context.Context, settings config.Settings, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("o", "", "Output .lci file")
	watch := fs.Bool("watch", false, "Rebuild whenever the manifest or a layer image changes")
	debounce := fs.Duration("debounce", pack.DefaultDebounce, "Quiet period before a watched rebuild")
	verbose := fs.Bool("v", settings.Debug(), "Report per-layer progress")
	manifest, err := parse(fs, args)
	if err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("build: -o is required")
	}

	opts := []lci.Option{lci.WithCompression(settings.PNGCompression)}
	if *verbose {
		opts = append(opts, lci.WithProgress(func(done, total int) {
			log.Printf("encoded %d/%d layers", done, total)
		}))
	}

	cache := imaging.NewImageCache()
	build := func() error {
		start := time.Now()
		doc, err := pack.BuildFile(manifest, *out, cache, opts...)
		if err != nil {
			return err
		}
		w, h := doc.Size()
		log.Printf("wrote %s (%dx%d, %d layers) in %v", *out, w, h, len(doc.RasterLayers()), time.Since(start).Round(time.Millisecond))
		return nil
	}

	if err := build(); err != nil {
		if !*watch {
			return err
		}
		log.Printf("build failed: %v", err)
	}
	if !*watch {
		return nil
	}

	log.Printf("watching %s", manifest)
	return pack.Watch(ctx, manifest, *debounce, build)
}

func runUnpack(ctx context.Context, settings config.Settings, args []string) error {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	out := fs.String("o", "", "Output directory")
	workers := fs.Int("workers", settings.Workers, "Concurrent layer writes")
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("unpack: -o is required")
	}

	doc, err := lci.LoadFile(path)
	if err != nil {
		return err
	}
	files, err := pack.Unpack(ctx, doc, *out, *workers, settings.PNGCompression)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	path, err := parse(fs, args)
	if err != nil {
		return err
	}

	dd, err := lci.DecodeFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %dx%d, %d layers\n\n", path, dd.Width, dd.Height, len(dd.Layers))
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tVISIBLE\tOPACITY\tBLEND\tOFFSET\tPOSITION\tDATA")
	for i, ld := range dd.Layers {
		blend := fmt.Sprintf("target(%d)", ld.BlendMode)
		if m, err := blendmode.FromTarget(ld.BlendMode); err == nil {
			blend = m.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%v\t%d\t%s\t%d,%d\t%g,%g\t%v\n",
			i, ld.RawName, ld.Visible, ld.Opacity, blend,
			ld.OffsetX, ld.OffsetY, ld.Position.X, ld.Position.Y, ld.IsDataLayer)
	}
	return tw.Flush()
}

func runFlatten(settings config.Settings, args []string) error {
	fs := flag.NewFlagSet("flatten", flag.ExitOnError)
	out := fs.String("o", "", "Output PNG file")
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("flatten: -o is required")
	}

	doc, err := lci.LoadFile(path)
	if err != nil {
		return err
	}
	img, err := compose.Flatten(doc)
	if err != nil {
		return err
	}
	return imaging.SavePNG(*out, img, settings.PNGCompression)
}

func runBounds(args []string) error {
	fs := flag.NewFlagSet("bounds", flag.ExitOnError)
	multi := fs.Bool("multi", false, "Print the multiBounds rectangle cover instead of the opaque bounds")
	path, err := parse(fs, args)
	if err != nil {
		return err
	}

	img, err := imaging.NewImageCache().Load(path)
	if err != nil {
		return err
	}
	if !*multi {
		r := geometry.OpaqueBounds(img)
		fmt.Printf("%d,%d,%d,%d\n", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
		return nil
	}
	for _, r := range geometry.Decompose(img) {
		fmt.Printf("%g,%g,%g,%g\n", r.X, r.Y, r.Width, r.Height)
	}
	return nil
}
