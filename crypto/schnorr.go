package crypto

import (
	"fmt"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/group/edwards25519"
	"go.dedis.ch/kyber/v3/sign/schnorr"

	"github.com/ahwlsqja/bft-runtime-core/envelope"
	"github.com/ahwlsqja/bft-runtime-core/identity"
)

// suite is the curve used for every Schnorr key in the process. A single
// global suite is safe because kyber suites carry no per-call state beyond
// their random stream, and every signing call below draws its own stream.
var suite = edwards25519.NewBlakeSHA256Ed25519()

// schnorrKey holds one identity's scalar/point pair, whichever half is
// known to this process.
type schnorrKey struct {
	secret kyber.Scalar
	public kyber.Point
}

// schnorrProvider implements Provider over Schnorr signatures on
// edwards25519, the asymmetric standard-path family.
type schnorrProvider struct {
	keys map[identity.ID]schnorrKey
}

// NewSchnorrProvider builds the asymmetric Provider from the
// KeyFamilySchnorr entries of keys. Entries for other families are
// ignored.
func NewSchnorrProvider(keys map[identity.ID]KeyMaterial) Provider {
	sk := make(map[identity.ID]schnorrKey, len(keys))
	for id, km := range keys {
		if km.Family != identity.KeyFamilySchnorr {
			continue
		}
		var k schnorrKey
		if km.Secret != nil {
			s := suite.Scalar()
			if err := s.UnmarshalBinary(km.Secret); err == nil {
				k.secret = s
			}
		}
		if km.Public != nil {
			p := suite.Point()
			if err := p.UnmarshalBinary(km.Public); err == nil {
				k.public = p
			}
		}
		sk[id] = k
	}
	return &schnorrProvider{keys: sk}
}

func (p *schnorrProvider) Sign(signer identity.ID, data []byte) (envelope.Sig, error) {
	k, ok := p.keys[signer]
	if !ok || k.secret == nil {
		return nil, fmt.Errorf("crypto: no schnorr secret key for identity %d", signer)
	}
	sig, err := schnorr.Sign(suite, k.secret, data)
	if err != nil {
		return nil, fmt.Errorf("crypto: schnorr sign for identity %d: %w", signer, err)
	}
	return envelope.Sig(sig), nil
}

func (p *schnorrProvider) Verify(signer identity.ID, data []byte, sig envelope.Sig) bool {
	k, ok := p.keys[signer]
	if !ok || k.public == nil {
		return false
	}
	return schnorr.Verify(suite, k.public, data, sig) == nil
}

func (p *schnorrProvider) BatchVerify(items []VerifyItem) bool {
	for _, it := range items {
		if !p.Verify(it.Signer, it.Data, it.Sig) {
			return false
		}
	}
	return true
}

// GenerateSchnorrKey produces a fresh scalar/point pair and their canonical
// binary encodings, for use when populating a config.Document's identity
// table from scratch (tests, local clusters).
func GenerateSchnorrKey() (secret, public []byte, err error) {
	s := suite.Scalar().Pick(suite.RandomStream())
	pt := suite.Point().Mul(s, nil)
	secret, err = s.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	public, err = pt.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return secret, public, nil
}
