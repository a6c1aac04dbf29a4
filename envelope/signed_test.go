package envelope

import (
	"testing"

	"github.com/ahwlsqja/bft-runtime-core/identity"
)

// testPayload is a minimal encoding implementation for exercising
// Signed[X] independent of any concrete protocol's message types.
type testPayload struct {
	Counter uint64
	Label   string
}

func (p testPayload) MarshalBinary() ([]byte, error) {
	buf := AppendUint64(nil, p.Counter)
	buf = AppendString(buf, p.Label)
	return buf, nil
}

func TestSigIsZero(t *testing.T) {
	var zero Sig
	if !zero.IsZero() {
		t.Fatal("nil Sig should report IsZero")
	}
	nonZero := Sig([]byte{1})
	if nonZero.IsZero() {
		t.Fatal("non-empty Sig should not report IsZero")
	}
}

func TestSignedCanonicalBytesMatchesInnerMarshal(t *testing.T) {
	inner := testPayload{Counter: 7, Label: "ping"}
	s := New(inner)

	want, err := inner.MarshalBinary()
	if err != nil {
		t.Fatalf("inner.MarshalBinary: %v", err)
	}
	got, err := s.CanonicalBytes()
	if err != nil {
		t.Fatalf("s.CanonicalBytes: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("canonical bytes mismatch: got %x want %x", got, want)
	}
	if !s.Signature().IsZero() {
		t.Fatal("New should produce an unsigned Signed value")
	}
}

func TestSignedWithSigRoundTrip(t *testing.T) {
	inner := testPayload{Counter: 1, Label: "pong"}
	unsigned := New(inner)

	before, err := unsigned.CanonicalBytes()
	if err != nil {
		t.Fatalf("CanonicalBytes before signing: %v", err)
	}

	sig := Sig([]byte("fake-signature"))
	signed := unsigned.WithSig(sig)

	if signed.Signature().IsZero() {
		t.Fatal("WithSig should leave a non-zero signature")
	}
	if string(signed.Signature()) != string(sig) {
		t.Fatalf("signature mismatch: got %x want %x", signed.Signature(), sig)
	}

	after, err := signed.CanonicalBytes()
	if err != nil {
		t.Fatalf("CanonicalBytes after signing: %v", err)
	}
	if string(after) != string(before) {
		t.Fatal("WithSig must not change the canonical bytes of Inner")
	}

	if !unsigned.Signature().IsZero() {
		t.Fatal("WithSig must not mutate the receiver; original should remain unsigned")
	}
}

func TestSignerExtractorReadsClaimedSigner(t *testing.T) {
	type withSender struct {
		Sender identity.ID
	}
	var extract SignerExtractor[withSender] = func(v withSender) (identity.ID, error) {
		return v.Sender, nil
	}
	id, err := extract(withSender{Sender: 3})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if id != 3 {
		t.Fatalf("got %d want 3", id)
	}
}
