// Package dsl models activity graphs as data: a tree of sequence, parallel and
// activity statements over a shared variable scope. Trees arrive as request
// payloads (JSON/YAML) or are assembled with the Act/Seq/Par builders, and are
// statically validated before execution so unresolvable names fail fast.
package dsl
