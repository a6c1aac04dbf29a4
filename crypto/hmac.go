package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/ahwlsqja/bft-runtime-core/envelope"
	"github.com/ahwlsqja/bft-runtime-core/identity"
)

// hmacProvider implements Provider over HMAC-SHA256 with per-identity
// shared secrets. This is the hardware-assisted path: the intent is that a
// production deployment would offload this to a NIC or crypto accelerator,
// so the Go implementation here is deliberately the simplest correct one.
type hmacProvider struct {
	secrets map[identity.ID][]byte
}

// NewHMACProvider builds the symmetric Provider from the KeyFamilyHMAC
// entries of keys. Entries for other families are ignored.
func NewHMACProvider(keys map[identity.ID]KeyMaterial) Provider {
	secrets := make(map[identity.ID][]byte)
	for id, km := range keys {
		if km.Family != identity.KeyFamilyHMAC {
			continue
		}
		if km.Secret != nil {
			secrets[id] = km.Secret
		} else {
			secrets[id] = km.Public
		}
	}
	return &hmacProvider{secrets: secrets}
}

func (p *hmacProvider) Sign(signer identity.ID, data []byte) (envelope.Sig, error) {
	key, ok := p.secrets[signer]
	if !ok {
		return nil, errNoKey(signer)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

func (p *hmacProvider) Verify(signer identity.ID, data []byte, sig envelope.Sig) bool {
	key, ok := p.secrets[signer]
	if !ok {
		return false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	want := mac.Sum(nil)
	return subtle.ConstantTimeCompare(want, sig) == 1
}

func (p *hmacProvider) BatchVerify(items []VerifyItem) bool {
	for _, it := range items {
		if !p.Verify(it.Signer, it.Data, it.Sig) {
			return false
		}
	}
	return true
}

func errNoKey(id identity.ID) error {
	return fmt.Errorf("crypto: no hmac secret for identity %d", id)
}
