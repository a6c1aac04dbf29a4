package envelope

import "testing"

func TestAppendTakeUint64RoundTrip(t *testing.T) {
	buf := AppendUint64(nil, 42)
	buf = AppendUint64(buf, 1<<40)

	v1, rest, err := TakeUint64(buf)
	if err != nil {
		t.Fatalf("TakeUint64 first: %v", err)
	}
	if v1 != 42 {
		t.Fatalf("first value: got %d want 42", v1)
	}

	v2, rest, err := TakeUint64(rest)
	if err != nil {
		t.Fatalf("TakeUint64 second: %v", err)
	}
	if v2 != 1<<40 {
		t.Fatalf("second value: got %d want %d", v2, uint64(1)<<40)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no bytes left, got %d", len(rest))
	}
}

func TestTakeUint64ShortBufferErrors(t *testing.T) {
	if _, _, err := TakeUint64([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error reading uint64 from a short buffer")
	}
}

func TestAppendTakeBytesRoundTrip(t *testing.T) {
	buf := AppendBytes(nil, []byte("hello"))
	buf = AppendBytes(buf, []byte{})
	buf = AppendBytes(buf, []byte("world"))

	b1, rest, err := TakeBytes(buf)
	if err != nil {
		t.Fatalf("TakeBytes first: %v", err)
	}
	if string(b1) != "hello" {
		t.Fatalf("first: got %q want %q", b1, "hello")
	}

	b2, rest, err := TakeBytes(rest)
	if err != nil {
		t.Fatalf("TakeBytes second (empty): %v", err)
	}
	if len(b2) != 0 {
		t.Fatalf("second: expected empty, got %q", b2)
	}

	b3, rest, err := TakeBytes(rest)
	if err != nil {
		t.Fatalf("TakeBytes third: %v", err)
	}
	if string(b3) != "world" {
		t.Fatalf("third: got %q want %q", b3, "world")
	}
	if len(rest) != 0 {
		t.Fatalf("expected no bytes left, got %d", len(rest))
	}
}

func TestTakeBytesShortPayloadErrors(t *testing.T) {
	buf := AppendUint64(nil, 100) // claims 100 bytes follow; none do
	if _, _, err := TakeBytes(buf); err == nil {
		t.Fatal("expected error reading a byte slice shorter than its declared length")
	}
}

func TestAppendTakeStringRoundTrip(t *testing.T) {
	buf := AppendString(nil, "node-1")
	s, rest, err := TakeString(buf)
	if err != nil {
		t.Fatalf("TakeString: %v", err)
	}
	if s != "node-1" {
		t.Fatalf("got %q want %q", s, "node-1")
	}
	if len(rest) != 0 {
		t.Fatalf("expected no bytes left, got %d", len(rest))
	}
}
