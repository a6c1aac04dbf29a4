package crypto

import (
	"testing"

	"github.com/ahwlsqja/bft-runtime-core/identity"
)

func TestHMACSignVerifyRoundTrip(t *testing.T) {
	keys := map[identity.ID]KeyMaterial{
		1: {Family: identity.KeyFamilyHMAC, Secret: []byte("shared-secret-one")},
	}
	reg := NewRegistry(keys)

	data := []byte("pre-prepare view=3 seq=7")
	sig, err := reg.Sign(1, data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !reg.Verify(1, data, sig) {
		t.Fatal("Verify rejected a signature it just produced")
	}
	if reg.Verify(1, []byte("tampered"), sig) {
		t.Fatal("Verify accepted a signature over different data")
	}
}

func TestSchnorrSignVerifyRoundTrip(t *testing.T) {
	secret, public, err := GenerateSchnorrKey()
	if err != nil {
		t.Fatalf("GenerateSchnorrKey: %v", err)
	}
	keys := map[identity.ID]KeyMaterial{
		2: {Family: identity.KeyFamilySchnorr, Secret: secret, Public: public},
	}
	reg := NewRegistry(keys)

	data := []byte("commit view=3 seq=7 digest=abc")
	sig, err := reg.Sign(2, data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !reg.Verify(2, data, sig) {
		t.Fatal("Verify rejected a signature it just produced")
	}
	if reg.Verify(2, []byte("tampered"), sig) {
		t.Fatal("Verify accepted a signature over different data")
	}
}

func TestRegistryUnknownIdentity(t *testing.T) {
	reg := NewRegistry(map[identity.ID]KeyMaterial{})
	if _, err := reg.Sign(99, []byte("x")); err == nil {
		t.Fatal("Sign succeeded for an identity with no key material")
	}
	if reg.Verify(99, []byte("x"), []byte("sig")) {
		t.Fatal("Verify succeeded for an identity with no key material")
	}
}

func TestBatchVerifyMixedFamilies(t *testing.T) {
	secret, public, err := GenerateSchnorrKey()
	if err != nil {
		t.Fatalf("GenerateSchnorrKey: %v", err)
	}
	keys := map[identity.ID]KeyMaterial{
		1: {Family: identity.KeyFamilyHMAC, Secret: []byte("shared-secret-one")},
		2: {Family: identity.KeyFamilySchnorr, Secret: secret, Public: public},
	}
	reg := NewRegistry(keys)

	sig1, err := reg.Sign(1, []byte("a"))
	if err != nil {
		t.Fatalf("Sign(1): %v", err)
	}
	sig2, err := reg.Sign(2, []byte("b"))
	if err != nil {
		t.Fatalf("Sign(2): %v", err)
	}

	items := []VerifyItem{
		{Signer: 1, Data: []byte("a"), Sig: sig1},
		{Signer: 2, Data: []byte("b"), Sig: sig2},
	}
	if !reg.BatchVerify(items) {
		t.Fatal("BatchVerify rejected a valid mixed-family batch")
	}

	items[1].Data = []byte("tampered")
	if reg.BatchVerify(items) {
		t.Fatal("BatchVerify accepted a batch containing an invalid item")
	}
}

func TestHashIsDeterministic(t *testing.T) {
	a := Hash([]byte("a"))
	b := Hash([]byte("a"))
	if string(a) != string(b) {
		t.Fatal("Hash is not deterministic")
	}
	if HashHex([]byte("a")) != HashHex([]byte("a")) {
		t.Fatal("HashHex is not deterministic")
	}
}
