// Command postfx runs the bloom, auto-exposure and tonemapping pipeline
// over an HDR image for a number of simulated frames.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx"
)

var (
	fIn         string
	fOut        string
	fHDROut     string
	fConfig     string
	fDumpConfig string
	fPlot       string
	fFrames     int
	fDT         float64
	fFromEV     float64
	fToEV       float64
	fVerbose    bool
)

func main() {
	flag.StringVar(&fIn, "in", "", "input image (.hdr, .tif, .png, .jpg)")
	flag.StringVar(&fOut, "out", "out.png", "tonemapped output of the last frame")
	flag.StringVar(&fHDROut, "hdr-out", "", "if set, write the last frame's bloom to this .hdr file")
	flag.StringVar(&fConfig, "config", "", "YAML or TOML config file")
	flag.StringVar(&fDumpConfig, "dump-config", "", "write the effective config to this file and exit")
	flag.StringVar(&fPlot, "plot", "", "if set, plot the adaptation curve to this PNG")
	flag.IntVar(&fFrames, "frames", 1, "number of frames to run")
	flag.Float64Var(&fDT, "dt", 1.0/60, "seconds per frame")
	flag.Float64Var(&fFromEV, "from-ev", 0, "input scale of the first frame, in stops")
	flag.Float64Var(&fToEV, "to-ev", 0, "input scale of the last frame, in stops")
	flag.BoolVar(&fVerbose, "v", false, "log every kernel dispatch")
	flag.Parse()

	level := slog.LevelInfo
	if fVerbose {
		level = slog.LevelDebug
	}
	postfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "postfx: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := postfx.DefaultConfig()
	if fConfig != "" {
		var err error
		if cfg, err = postfx.LoadConfig(fConfig); err != nil {
			return err
		}
	}
	if fDumpConfig != "" {
		return postfx.WriteConfig(fDumpConfig, cfg)
	}

	if fIn == "" {
		return fmt.Errorf("no input image, use -in")
	}
	if fFrames < 1 {
		return fmt.Errorf("-frames %d < 1", fFrames)
	}
	src, err := postfx.ReadFile(fIn)
	if err != nil {
		return err
	}

	report, err := postfx.LuminanceReport(src)
	if err != nil {
		return err
	}
	fmt.Printf("input %s: %s\n", fIn, report)

	p, err := postfx.New(postfx.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer p.Close()

	frame, err := postfx.NewGrid(src.Width(), src.Height())
	if err != nil {
		return err
	}

	var (
		out     *postfx.Grid
		samples = make([]sample, 0, fFrames)
	)
	for i := 0; i < fFrames; i++ {
		ev := fFromEV
		if fFrames > 1 {
			ev += (fToEV - fFromEV) * float64(i) / float64(fFrames-1)
		}
		scaleInto(frame, src, float32(math.Exp2(ev)))

		var e postfx.Exposure
		if out, e, err = p.Frame(ctx, frame, fDT); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		samples = append(samples, sample{ev: ev, average: e.Average, adapted: e.Adapted})
	}

	if err := postfx.WriteFile(fOut, out); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d, %d frames)\n", fOut, out.Width(), out.Height(), fFrames)

	if fHDROut != "" {
		bloomed, err := p.Bloom(ctx, frame)
		if err != nil {
			return err
		}
		if err := postfx.WriteFile(fHDROut, bloomed); err != nil {
			return err
		}
	}

	if fPlot != "" {
		if err := plotAdaptation(fPlot, samples); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", fPlot)
	}
	return nil
}

// scaleInto writes src scaled by s into dst.
func scaleInto(dst, src *postfx.Grid, s float32) {
	d, sp := dst.Pix(), src.Pix()
	for i, c := range sp {
		d[i] = f32.Vec4{c[0] * s, c[1] * s, c[2] * s, c[3]}
	}
}
