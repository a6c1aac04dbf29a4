// Package dispatch is the event loop that owns a Receiver, drains the
// ingress queue, drives timers, and invokes the pace callback. It is
// deliberately protocol-agnostic: it knows how to route, verify, and
// deliver a Message, never what any particular variant means.
package dispatch

import "github.com/ahwlsqja/bft-runtime-core/envelope"

// Message is the sealed-interface rendition of a closed tagged union: a
// protocol defines one concrete type per variant, each embedding
// envelope.Signed[X] (which supplies CanonicalBytes and Signature) and
// adding its own Tag method. Dispatch reads Tag before any verification,
// exactly as spec requires for per-variant policy resolution.
type Message interface {
	Tag() envelope.Tag
	CanonicalBytes() ([]byte, error)
	Signature() envelope.Sig
}
