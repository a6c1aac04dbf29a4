// Package crypto provides the core's stateless sign/verify surface. It
// supports two algorithm families behind one Provider interface: an
// HMAC-style symmetric scheme for the hardware-assisted path, and a
// Schnorr-over-edwards25519 asymmetric scheme for the standard path.
// Identity, not the envelope, determines which family a given key uses.
//
// Crypto runs synchronously on the caller's goroutine by design: the
// Dispatch goroutine calls Sign/Verify directly, never through a worker
// pool, because the artifact's latency measurements depend on crypto
// staying on the critical path.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ahwlsqja/bft-runtime-core/envelope"
	"github.com/ahwlsqja/bft-runtime-core/identity"
)

// Provider signs and verifies byte strings for one key family.
type Provider interface {
	// Sign produces a signature over data under the key registered for
	// signer. Callers must not depend on determinism; the asymmetric
	// family is randomized per call.
	Sign(signer identity.ID, data []byte) (envelope.Sig, error)

	// Verify reports whether sig is a valid signature over data under the
	// key registered for signer.
	Verify(signer identity.ID, data []byte, sig envelope.Sig) bool

	// BatchVerify is semantically equivalent to a conjunction of
	// per-item Verify calls; implementations may batch under the hood
	// but must never report true for a batch containing an invalid item.
	BatchVerify(items []VerifyItem) bool
}

// VerifyItem is one (signer, data, sig) tuple for BatchVerify.
type VerifyItem struct {
	Signer identity.ID
	Data   []byte
	Sig    envelope.Sig
}

// KeyMaterial holds one identity's key, tagged with which family it
// belongs to. A single Dispatch may have some identities on the HMAC path
// and others on the Schnorr path simultaneously.
type KeyMaterial struct {
	Family identity.KeyFamily
	// Secret is the private key: the HMAC shared secret, or the Schnorr
	// scalar's canonical bytes. Nil for identities this process only
	// verifies, never signs for.
	Secret []byte
	// Public is the verification key: for HMAC, the same shared secret;
	// for Schnorr, the curve point's canonical bytes.
	Public []byte
}

// Registry dispatches Sign/Verify/BatchVerify to the right family's
// Provider based on each identity's registered KeyMaterial.
type Registry struct {
	keys    map[identity.ID]KeyMaterial
	hmac    Provider
	schnorr Provider
}

// NewRegistry builds a Registry from a table of key material.
func NewRegistry(keys map[identity.ID]KeyMaterial) *Registry {
	return &Registry{
		keys:    keys,
		hmac:    NewHMACProvider(keys),
		schnorr: NewSchnorrProvider(keys),
	}
}

func (r *Registry) providerFor(id identity.ID) (Provider, error) {
	km, ok := r.keys[id]
	if !ok {
		return nil, fmt.Errorf("crypto: no key material registered for identity %d", id)
	}
	switch km.Family {
	case identity.KeyFamilyHMAC:
		return r.hmac, nil
	case identity.KeyFamilySchnorr:
		return r.schnorr, nil
	default:
		return nil, fmt.Errorf("crypto: unknown key family %d for identity %d", km.Family, id)
	}
}

// Sign implements Provider.
func (r *Registry) Sign(signer identity.ID, data []byte) (envelope.Sig, error) {
	p, err := r.providerFor(signer)
	if err != nil {
		return nil, err
	}
	return p.Sign(signer, data)
}

// Verify implements Provider.
func (r *Registry) Verify(signer identity.ID, data []byte, sig envelope.Sig) bool {
	p, err := r.providerFor(signer)
	if err != nil {
		return false
	}
	return p.Verify(signer, data, sig)
}

// BatchVerify implements Provider. Mixed-family batches are split per
// family and the results conjuncted.
func (r *Registry) BatchVerify(items []VerifyItem) bool {
	byFamily := map[identity.KeyFamily][]VerifyItem{}
	for _, it := range items {
		km, ok := r.keys[it.Signer]
		if !ok {
			return false
		}
		byFamily[km.Family] = append(byFamily[km.Family], it)
	}
	for family, its := range byFamily {
		var p Provider
		switch family {
		case identity.KeyFamilyHMAC:
			p = r.hmac
		case identity.KeyFamilySchnorr:
			p = r.schnorr
		default:
			return false
		}
		if !p.BatchVerify(its) {
			return false
		}
	}
	return true
}

// Hash computes the SHA-256 hash of data. Exposed for protocols built on
// this runtime that need a plain digest outside the sign/verify path.
func Hash(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// HashHex computes the SHA-256 hash of data and hex-encodes it.
func HashHex(data []byte) string {
	return hex.EncodeToString(Hash(data))
}
