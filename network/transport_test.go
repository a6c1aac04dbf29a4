package network

import (
	"testing"
	"time"

	"github.com/ahwlsqja/bft-runtime-core/dispatch"
	"github.com/ahwlsqja/bft-runtime-core/ingress"
)

func waitForLen(t *testing.T, q *ingress.Queue[dispatch.IngressItem], want int, timeout time.Duration) []dispatch.IngressItem {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if q.Len() >= want {
			return q.Drain()
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d ingress items, got %d", want, q.Len())
	return nil
}

func TestSendDeliversDatagramToIngressQueue(t *testing.T) {
	recvQueue := ingress.New[dispatch.IngressItem]()
	recv, err := Listen("127.0.0.1:0", recvQueue)
	if err != nil {
		t.Fatalf("Listen receiver: %v", err)
	}
	defer recv.Close()

	sendQueue := ingress.New[dispatch.IngressItem]()
	sender, err := Listen("127.0.0.1:0", sendQueue)
	if err != nil {
		t.Fatalf("Listen sender: %v", err)
	}
	defer sender.Close()

	go recv.Run()
	go sender.Run()

	payload := []byte("hello from sender")
	sender.Send(dispatch.EgressItem{Addr: recv.LocalAddr().String(), Payload: payload})

	items := waitForLen(t, recvQueue, 1, 2*time.Second)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if string(items[0].Payload) != string(payload) {
		t.Fatalf("payload mismatch: got %q want %q", items[0].Payload, payload)
	}
}

func TestCloseStopsRun(t *testing.T) {
	q := ingress.New[dispatch.IngressItem]()
	trans, err := Listen("127.0.0.1:0", q)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	done := make(chan struct{})
	go func() {
		trans.Run()
		close(done)
	}()

	trans.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}
