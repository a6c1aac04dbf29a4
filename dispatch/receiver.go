package dispatch

import "github.com/ahwlsqja/bft-runtime-core/envelope"

// Token is an opaque value attached to a timer at SetTimer time and handed
// back unexamined to OnTimer. Dispatch never inspects it.
type Token any

// Receiver is the protocol-defined handler set this core consumes as an
// external collaborator. The core ships no concrete BFT protocol
// receiver — see the examples/echo package for a minimal reference
// implementation exercising this contract end to end.
type Receiver[M Message] interface {
	// Decode parses one ingress datagram into a Message. A decode error
	// is counted as a drop and never reaches OnMessage.
	Decode(raw []byte) (M, error)

	// Encode serializes msg for egress or loopback re-delivery.
	Encode(msg M) ([]byte, error)

	// OnMessage is invoked once per accepted ingress item, after policy
	// resolution and, for PolicyVerifyThen variants, successful
	// verification.
	OnMessage(ctx *Context[M], msg M)

	// OnTimer is invoked when a timer set via Context.SetTimer fires.
	OnTimer(ctx *Context[M], token Token)

	// VerifyPolicy returns the static verification policy for tag. Called
	// once per ingress item before OnMessage.
	VerifyPolicy(tag envelope.Tag) Policy[M]

	// Sign returns a copy of msg with Sig populated using this replica's
	// own key. Used by Context.Loopback before re-injecting the payload
	// into the ingress path.
	Sign(msg M) (M, error)
}

// Pacer is implemented by receivers that want the adaptive batching tick
// described in spec.md §4.6. Dispatch type-asserts the Receiver against
// this interface at construction time; a receiver that doesn't implement
// it simply never receives a pace callback.
type Pacer[M Message] interface {
	OnPace(ctx *Context[M])
}
