package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/go-audio/audio"
	"github.com/spf13/cobra"

	"pipelined.dev/hush"
	"pipelined.dev/hush/graph"
	"pipelined.dev/hush/lang"
	"pipelined.dev/hush/signal"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check EXPR",
		Short: "Parse and compile a graph expression",
		Long: `Check tokenizes, parses and compiles EXPR and prints the canonical
pipeline and the graph. With --render it also renders the graph offline
and prints its levels.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().Duration("render", 0, "render the graph for this duration")
	cmd.Flags().Int("rate", 44100, "sample rate of offline rendering")
	cmd.Flags().Int64("seed", 1, "noise seed of offline rendering")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	v, err := newConfig(cmd.Flags())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	tokens, err := lang.Tokenize(args[0])
	if err != nil {
		return err
	}
	p, err := lang.NewParser(tokens).Parse()
	if err != nil {
		return err
	}
	g := graph.Compile(p)

	texts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		texts = append(texts, t.String())
	}
	fmt.Fprintf(out, "tokens:   %s\n", strings.Join(texts, " "))
	fmt.Fprintf(out, "pipeline: %v\n", p)
	fmt.Fprintf(out, "graph:    %v\n", g)
	fmt.Fprintf(out, "nodes:    %d\n", g.Count())

	if d := v.GetDuration("render"); d > 0 {
		return render(out, g, d, v.GetInt("rate"), v.GetInt64("seed"))
	}
	return nil
}

// render evaluates the graph offline into a mono buffer and prints its
// levels.
func render(w io.Writer, g *graph.Node, d time.Duration, sampleRate int, seed int64) error {
	frames, err := safecast.Round[int](d.Seconds() * float64(sampleRate))
	if err != nil {
		return fmt.Errorf("render %v: %w", d, err)
	}
	e, err := hush.New(g)
	if err != nil {
		return err
	}
	if err := e.Allocate(float64(sampleRate), seed); err != nil {
		return err
	}
	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]float64, frames),
	}
	n := e.Render(buf)
	fmt.Fprintf(w, "render:   %d frames at %d Hz, rms %.4f, peak %.4f\n",
		n, sampleRate, signal.RMS(buf.Data), signal.Peak(buf.Data))
	return nil
}
