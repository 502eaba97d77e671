package graph

import "pipelined.dev/hush/lang"

// chainGain is the fixed amplitude of the built-in chains.
const chainGain = 0.1

// Compile lowers a pipeline into a graph. Every stage becomes a Sum of
// independent source nodes and the pipeline becomes a Series of stages.
// Each call returns a graph with its own state.
func Compile(p lang.Pipeline) *Node {
	stages := make([]Node, 0, len(p))
	for _, stage := range p {
		sources := make([]Node, 0, len(stage))
		for _, sound := range stage {
			sources = append(sources, source(sound))
		}
		stages = append(stages, NewSum(sources...))
	}
	g := NewSeries(stages...)
	return &g
}

func source(s lang.Sound) Node {
	switch s.Kind {
	case lang.Sine:
		return NewSine(s.Frequency)
	case lang.White:
		return NewWhite()
	case lang.Brown:
		return NewBrown()
	case lang.Pink:
		return NewPink()
	}
	return NewSilence()
}

// Scale wraps the graph into a Gain node. The children of g are shared
// with the result, so g must not be evaluated on its own afterwards.
func Scale(k float64, g *Node) *Node {
	n := NewGain(k, *g)
	return &n
}

// Tone is the startup chain: a quiet sine at freq.
func Tone(freq float64) *Node {
	g := NewGain(chainGain, NewSine(freq))
	return &g
}

// Notch is the sustained chain: white noise with the band
// [freq-radius, freq+radius] carved out by a lowpass and a highpass branch.
func Notch(freq, radius float64) *Node {
	g := NewGain(chainGain, NewSum(
		NewLowpass(freq-radius, NewWhite()),
		NewHighpass(freq+radius, NewWhite()),
	))
	return &g
}
