// Package envelope provides the generic signed-message wrapper and the
// length-delimited binary codec shared by every protocol built on this
// runtime. It knows nothing about concrete message variants; those are
// supplied by the protocol (the Receiver's collaborator).
package envelope

import "github.com/ahwlsqja/bft-runtime-core/identity"

// Sig is a raw signature. Its zero value (nil) is the well-defined "no
// signature yet" state referenced by the signing contract in spec §3.
type Sig []byte

// IsZero reports whether sig carries no signature bytes.
func (s Sig) IsZero() bool { return len(s) == 0 }

// Tag identifies a message variant. Once assigned to a variant by a
// protocol, a Tag value must never be reassigned to a different variant —
// the wire format has no other way to distinguish them.
type Tag uint8

// Signed pairs an unsigned payload with its signature. Because Inner and
// Sig are separate fields rather than one flat byte string with a
// zeroable signature slot, the canonical bytes fed to sign/verify are
// simply Inner's own encoding — there is nothing to zero in place.
type Signed[X encoding] struct {
	Inner X
	Sig   Sig
}

// encoding is the contract every signed payload type must satisfy so that
// Signed[X] can compute canonical bytes without reflection.
type encoding interface {
	MarshalBinary() ([]byte, error)
}

// CanonicalBytes returns the bytes that were, or will be, signed.
func (s Signed[X]) CanonicalBytes() ([]byte, error) {
	return s.Inner.MarshalBinary()
}

// Signature returns the envelope's signature.
func (s Signed[X]) Signature() Sig { return s.Sig }

// New wraps inner with an empty signature, ready for Provider.Sign to fill
// in Sig via CanonicalBytes.
func New[X encoding](inner X) Signed[X] {
	return Signed[X]{Inner: inner}
}

// WithSig returns a copy of s carrying sig.
func (s Signed[X]) WithSig(sig Sig) Signed[X] {
	s.Sig = sig
	return s
}

// SignerExtractor reads the claimed signer identity out of a decoded
// message. Policies supply one of these per variant that needs
// verification; variants that are always self-authenticated by a
// surrounding quorum certificate (and are therefore Skip-policy) need
// none.
type SignerExtractor[M any] func(m M) (identity.ID, error)
