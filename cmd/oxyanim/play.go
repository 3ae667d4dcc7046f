package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/bake"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer"
	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/skinning"
	"github.com/spf13/cobra"
)

func playCmd(a *app) *cobra.Command {
	var (
		duration time.Duration
		metrics  bool
		reverse  bool
		gpu      bool
		software bool
	)

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a timeline document headlessly",
		Long: `Play ticks the document at the configured tick rate until the duration
elapses or the process is interrupted, then prints where every entity ended up.
With metrics enabled the prometheus endpoint is served while playing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			if reverse {
				doc.Animator().SetDirection(true)
			}

			p := profiler.NewProfiler(profiler.WithLogger(a.logger))
			var sink skinning.Sink = skinning.NewMemorySink()
			if gpu {
				r, err := renderer.NewRenderer(renderer.BackendTypeWGPU,
					renderer.WithForceSoftwareRenderer(software),
					renderer.WithLogger(a.logger),
				)
				if err != nil {
					return err
				}
				defer r.Release()
				sink = r.NewSkinningSink()
			}
			defer sink.Close()
			e := engine.NewEngine(
				engine.WithDocument(doc),
				engine.WithSink(sink),
				engine.WithProfiler(p),
				engine.WithProfiling(a.logger.Enabled(cmd.Context(), slog.LevelDebug)),
				engine.WithTickRate(float64(a.cfg.Engine.TickRate)),
				engine.WithLogger(a.logger),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			if metrics || a.cfg.Metrics.Enabled {
				srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: metricsMux(p), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.logger.Error("metrics server failed", "addr", srv.Addr, "error", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				a.logger.Info("serving metrics", "addr", srv.Addr)
			}

			a.logger.Info("playing", "document", doc.Name(), "tick_rate", a.cfg.Engine.TickRate, "duration", duration)
			if err := e.Run(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s stopped at frame %d\n", doc.Name(), doc.Sequencer().CurrentFrame())
			for _, obj := range doc.Scene().Objects() {
				pos := obj.Local().Col(3)
				fmt.Fprintf(out, "  %-12s %-7s (%.3f, %.3f, %.3f)\n", obj.Name(), obj.Kind(), pos.X(), pos.Y(), pos.Z())
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Stop after this long (0 plays until interrupted)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Serve prometheus metrics while playing")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Play backwards")
	cmd.Flags().BoolVar(&gpu, "gpu", false, "Upload palettes to GPU storage buffers")
	cmd.Flags().BoolVar(&software, "software", false, "Use a fallback (software) adapter with --gpu")
	return cmd
}

// metricsMux serves the profiler's registry at /metrics.
func metricsMux(p *profiler.Profiler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	return mux
}

// bakeMagic opens every bake file.
var bakeMagic = [4]byte{'O', 'X', 'Y', 'B'}

func bakeCmd(a *app) *cobra.Command {
	var (
		output string
		start  int
		end    int
	)

	cmd := &cobra.Command{
		Use:   "bake <file>",
		Short: "Evaluate every frame of a document into skinning palettes",
		Long: `Bake resolves the document frame by frame on a worker pool and writes the
skinning palette of every skinned actor.

File layout, little endian: "OXYB", frame count (u32), entity count (u32),
entity ids (u32 each), then for every frame and entity in that order one
palette of 128 column-major 4x4 float32 matrices.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = documentName(args[0]) + ".bake"
			}

			b := bake.NewBaker(
				bake.WithWorkers(a.cfg.Bake.Workers),
				bake.WithQueueSize(a.cfg.Bake.QueueSize),
				bake.WithRange(start, end),
				bake.WithLogger(a.logger),
			)
			defer b.Close()

			frames, err := b.Bake(cmd.Context(), doc)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create bake file: %w", err)
			}
			defer f.Close()
			ids, err := writeBake(f, frames)
			if err != nil {
				return fmt.Errorf("write bake file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "baked %d frames of %d actors to %s\n", len(frames), len(ids), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <document>.bake)")
	cmd.Flags().IntVar(&start, "start", 0, "First frame to bake")
	cmd.Flags().IntVar(&end, "end", -1, "Last frame to bake (-1 bakes to the timeline's frame max)")
	return cmd
}

// writeBake writes frames in the bake file layout and returns the entity ids in file order.
func writeBake(w io.Writer, frames []bake.Frame) ([]int, error) {
	var ids []int
	if len(frames) > 0 {
		ids = common.SortedKeys(frames[0].Poses)
	}

	header := make([]byte, 0, 12+4*len(ids))
	header = append(header, bakeMagic[:]...)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(frames)))
	header = binary.LittleEndian.AppendUint32(header, uint32(len(ids)))
	for _, id := range ids {
		header = binary.LittleEndian.AppendUint32(header, uint32(id))
	}
	if _, err := w.Write(header); err != nil {
		return nil, err
	}

	buf := make([]byte, skinning.PaletteSize)
	for _, frame := range frames {
		for _, id := range ids {
			palette := skinning.FromPose(frame.Poses[id])
			palette.MarshalInto(buf)
			if _, err := w.Write(buf); err != nil {
				return nil, err
			}
		}
	}
	return ids, nil
}
