// Package graph provides executable signal graphs. A graph is a tree of
// Nodes; every node is one of a closed set of kinds and owns its runtime
// state. Graphs are built once, allocated once for a sample rate and then
// evaluated one frame at a time without allocations.
package graph

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// Kind identifies the behaviour of a Node.
type Kind uint8

const (
	// Silence always produces zero.
	Silence Kind = iota
	// Sine is a phase-accumulating oscillator. Value is the frequency.
	Sine
	// White is uniform noise in [-1, 1].
	White
	// Brown is a leaky integral of white noise.
	Brown
	// Pink is white noise filtered to approximate 1/f density.
	Pink
	// Gain scales its single child by Value.
	Gain
	// Lowpass is a one-pole lowpass of its single child. Value is the cutoff.
	Lowpass
	// Highpass is a one-pole highpass of its single child. Value is the cutoff.
	Highpass
	// Sum mixes its children without normalization.
	Sum
	// Series composes stages in declared order. Stages are generators,
	// so the output is the ordered sum of stage outputs.
	Series
)

var kindNames = [...]string{
	Silence:  "silence",
	Sine:     "sine",
	White:    "white",
	Brown:    "brown",
	Pink:     "pink",
	Gain:     "gain",
	Lowpass:  "lowpass",
	Highpass: "highpass",
	Sum:      "sum",
	Series:   "series",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// isNoise reports whether the kind consumes random values.
func (k Kind) isNoise() bool {
	return k == White || k == Brown || k == Pink
}

const (
	brownLeak  = 0.98
	brownScale = 3.5
	pinkScale  = 0.11
	minCutoff  = 1.0
	maxCutoff  = 0.49 // fraction of sample rate
)

type (
	// Params are passed to Allocate.
	Params struct {
		SampleRate float64
		Seed       int64
	}

	// Node is a vertex of a signal graph. The zero value is Silence.
	// Topology fields must not change after Allocate.
	Node struct {
		Kind     Kind
		Value    float64
		Children []Node

		// runtime state, set by Allocate.
		step  float64 // phase increment or filter coefficient
		phase float64 // oscillator phase in cycles, filter or integrator state
		pink  [3]float64
		rand  *rand.Rand
	}
)

// NewSilence returns a node that always yields zero.
func NewSilence() Node { return Node{Kind: Silence} }

// NewSine returns a sine oscillator of freq Hz.
func NewSine(freq float64) Node { return Node{Kind: Sine, Value: freq} }

// NewWhite returns a white noise source.
func NewWhite() Node { return Node{Kind: White} }

// NewBrown returns a brown noise source.
func NewBrown() Node { return Node{Kind: Brown} }

// NewPink returns a pink noise source.
func NewPink() Node { return Node{Kind: Pink} }

// NewGain scales child by k.
func NewGain(k float64, child Node) Node {
	return Node{Kind: Gain, Value: k, Children: []Node{child}}
}

// NewLowpass filters child with a one-pole lowpass at cutoff Hz.
func NewLowpass(cutoff float64, child Node) Node {
	return Node{Kind: Lowpass, Value: cutoff, Children: []Node{child}}
}

// NewHighpass filters child with a one-pole highpass at cutoff Hz.
func NewHighpass(cutoff float64, child Node) Node {
	return Node{Kind: Highpass, Value: cutoff, Children: []Node{child}}
}

// NewSum mixes children in parallel.
func NewSum(children ...Node) Node {
	return Node{Kind: Sum, Children: children}
}

// NewSeries composes stages in order.
func NewSeries(stages ...Node) Node {
	return Node{Kind: Series, Children: stages}
}

// Allocate prepares the graph for the sample rate: it computes
// coefficients, resets state and seeds noise sources. Noise sources are
// seeded with Seed plus their ordinal among noise nodes in declared order.
func (n *Node) Allocate(p Params) {
	var ordinal int64
	n.allocate(p, &ordinal)
}

func (n *Node) allocate(p Params, ordinal *int64) {
	n.phase = 0
	n.step = 0
	n.pink = [3]float64{}
	n.rand = nil
	switch n.Kind {
	case Sine:
		n.step = n.Value / p.SampleRate
	case Lowpass, Highpass:
		cutoff := math.Max(minCutoff, math.Min(n.Value, maxCutoff*p.SampleRate))
		n.step = 1 - math.Exp(-2*math.Pi*cutoff/p.SampleRate)
	}
	if n.Kind.isNoise() {
		n.rand = rand.New(rand.NewSource(p.Seed + *ordinal))
		*ordinal++
	}
	for i := range n.Children {
		n.Children[i].allocate(p, ordinal)
	}
}

// Stereo produces the next frame. Sources are mono and yield the same
// value on both channels.
func (n *Node) Stereo() (float64, float64) {
	v := n.next()
	return v, v
}

func (n *Node) next() float64 {
	switch n.Kind {
	case Sine:
		v := math.Sin(2 * math.Pi * n.phase)
		_, n.phase = math.Modf(n.phase + n.step)
		return v
	case White:
		return n.white()
	case Brown:
		n.phase = brownLeak*n.phase + (1-brownLeak)*n.white()
		return clamp(brownScale * n.phase)
	case Pink:
		w := n.white()
		n.pink[0] = 0.99765*n.pink[0] + w*0.0990460
		n.pink[1] = 0.96300*n.pink[1] + w*0.2965164
		n.pink[2] = 0.57000*n.pink[2] + w*1.0526913
		return clamp(pinkScale * (n.pink[0] + n.pink[1] + n.pink[2] + w*0.1848))
	case Gain:
		return n.Value * n.Children[0].next()
	case Lowpass:
		n.phase += n.step * (n.Children[0].next() - n.phase)
		return n.phase
	case Highpass:
		x := n.Children[0].next()
		n.phase += n.step * (x - n.phase)
		return x - n.phase
	case Sum, Series:
		var v float64
		for i := range n.Children {
			v += n.Children[i].next()
		}
		return v
	}
	return 0
}

func (n *Node) white() float64 {
	return 2*n.rand.Float64() - 1
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// Count returns the number of nodes in the graph.
func (n *Node) Count() int {
	c := 1
	for i := range n.Children {
		c += n.Children[i].Count()
	}
	return c
}

// Equal reports whether two graphs have the same topology and parameters.
// Runtime state is ignored.
func (n *Node) Equal(m *Node) bool {
	if n.Kind != m.Kind || n.Value != m.Value || len(n.Children) != len(m.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(&m.Children[i]) {
			return false
		}
	}
	return true
}

// String renders the graph as nested calls, e.g. series(sum(sine(440))).
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	b.WriteString(n.Kind.String())
	switch n.Kind {
	case Silence, White, Brown, Pink:
		return
	}
	b.WriteByte('(')
	if n.Kind != Sum && n.Kind != Series {
		b.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
		if len(n.Children) > 0 {
			b.WriteString(", ")
		}
	}
	for i := range n.Children {
		if i > 0 {
			b.WriteString(", ")
		}
		n.Children[i].write(b)
	}
	b.WriteByte(')')
}
