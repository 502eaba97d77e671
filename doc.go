/*
Package hush renders masking sound for a realtime audio device.

Concept

A session has two phases:

    Startup - a quiet tone at the target frequency;
    Sustained - white noise with a band around the target carved out.

The engine switches to the sustained phase once the threshold has elapsed
since the first rendered frame. The switch happens at most once and the
phase never reverts.

Graphs

Both phases are executable graphs from the graph package. They are either
built-in chains:

    startup := graph.Tone(440)
    sustained := graph.Notch(440, 50)

or compiled from the mini-language of the lang package:

    p, err := lang.Parse("sin 440 | white")
    g := graph.Compile(p)

Execution

Engine is created once and allocated for the sample rate of the device:

    e, err := hush.New(startup, hush.WithSustained(sustained))
    err = e.Allocate(44100, seed)

Then the device callback fills its buffers:

    e.Float32(out, channels)

Fill methods never allocate and never block. The only state shared with
other goroutines is Control: loudness and shutdown requests are changed by
the input dispatcher and read lock-free by the engine.
*/
package hush
