/*
Package lang compiles the noise description language into a Pipeline.

The grammar is:

    pipeline   := stage ('|' stage)*
    stage      := atom*
    atom       := 'sin' NUMBER | 'white' | 'brown' | 'pink'
    NUMBER     := integer | decimal

Keywords are case-sensitive and separated by any whitespace. Atoms of a stage
are mixed in parallel, stages are composed in series:

    p, err := lang.Parse("sin 440 white | brown")

An empty stage is parsed as silence.
*/
package lang
