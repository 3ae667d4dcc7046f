package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-anim/engine/timeline"
	"github.com/spf13/cobra"
)

func newCmd(a *app) *cobra.Command {
	var (
		frameMax int
		scope    string
		demo     bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create a timeline document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			sc, err := timeline.ParseScope(scope)
			if err != nil {
				return err
			}

			var seq timeline.Sequencer
			if demo {
				if sc != timeline.ScopeComposition {
					return fmt.Errorf("--demo creates a composition timeline")
				}
				_, lib, err := newRig(a.logger)
				if err != nil {
					return err
				}
				if seq, err = demoSequencer(lib, frameMax); err != nil {
					return err
				}
			} else {
				seq = timeline.NewSequencer(
					timeline.WithScope(sc),
					timeline.WithFrameMax(frameMax),
					timeline.WithLogger(a.logger),
				)
			}

			data, err := seq.Serialize()
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("write document: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s timeline %s (%d frames, %d tracks)\n", seq.Scope(), path, seq.FrameMax(), seq.ItemCount())
			return nil
		},
	}

	cmd.Flags().IntVar(&frameMax, "frame-max", 300, "Last frame of the timeline")
	cmd.Flags().StringVar(&scope, "scope", "composition", "Timeline scope (composition, animation)")
	cmd.Flags().BoolVar(&demo, "demo", false, "Place walk and wave on the built-in hero actor")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func inspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the tracks of a timeline document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.openDocument(args[0])
			if err != nil {
				return err
			}
			seq := doc.Sequencer()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:        %s\n", seq.ID())
			fmt.Fprintf(out, "scope:     %s\n", seq.Scope())
			fmt.Fprintf(out, "frame max: %d\n\n", seq.FrameMax())
			return printTracks(out, seq.Tracks())
		},
	}
}

// printTracks writes one line per track, sub-tracks indented under their parent.
func printTracks(w io.Writer, tracks []*timeline.Track) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACK\tTYPE\tID\tSEGMENTS\tKEYS\tSTATUS")
	var walk func(rows []*timeline.Track, depth int)
	walk = func(rows []*timeline.Track, depth int) {
		for _, t := range rows {
			status := "ok"
			if t.Missing {
				status = "missing"
			}
			segments := make([]string, len(t.Segments))
			for i, s := range t.Segments {
				segments[i] = fmt.Sprintf("%d-%d", s.FrameStart, s.FrameEnd)
			}
			fmt.Fprintf(tw, "%s%s\t%s\t%d\t%s\t%d\t%s\n",
				strings.Repeat("  ", depth), t.Name, t.Type, t.ID,
				strings.Join(segments, ","), len(t.ActiveFrames()), status)
			walk(t.SubTracks, depth+1)
		}
	}
	walk(tracks, 0)
	return tw.Flush()
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check timeline documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", path, err)
					failed++
					continue
				}
				seq := timeline.NewSequencer(timeline.WithLogger(a.logger))
				if err := seq.Deserialize(data); err != nil {
					if errors.Is(err, timeline.ErrMalformedDocument) {
						fmt.Fprintf(out, "%s: malformed: %v\n", path, err)
					} else {
						fmt.Fprintf(out, "%s: %v\n", path, err)
					}
					failed++
					continue
				}
				fmt.Fprintf(out, "%s: ok (%s, %d tracks)\n", path, seq.Scope(), seq.ItemCount())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed validation", failed, len(args))
			}
			return nil
		},
	}
}
