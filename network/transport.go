// Package network provides the UDP datagram transport that the core
// consumes as an external collaborator. It owns exactly one goroutine
// that both reads incoming datagrams into a Dispatch's ingress queue and
// writes queued egress buffers to the socket — combined rx/tx by design,
// per the core's concurrency model, so only two OS threads exist per
// Dispatch: this one and the Dispatch goroutine itself.
package network

import (
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/ahwlsqja/bft-runtime-core/dispatch"
	"github.com/ahwlsqja/bft-runtime-core/ingress"
)

// readPollInterval bounds how long the combined loop blocks in ReadFrom
// before checking the egress queue again. It trades a small amount of
// egress latency for not needing a second goroutine.
const readPollInterval = 5 * time.Millisecond

// maxDatagramSize is the largest UDP payload this transport will read. A
// datagram larger than this is a misconfigured peer, not adversarial
// input worth silently tolerating at this layer.
const maxDatagramSize = 64 * 1024

// Transport owns one UDP socket. Construct it with Listen, register it as
// a Dispatch's Egress, and call Run in its own goroutine.
type Transport struct {
	conn   net.PacketConn
	into   *ingress.Queue[dispatch.IngressItem]
	egress *ingress.Queue[dispatch.EgressItem]
	logger *log.Logger

	closeOnce sync.Once
	doneCh    chan struct{}
}

// Listen opens a UDP socket bound to addr. into is typically the Dispatch
// whose ingress queue datagrams should land in, obtained via
// Dispatch.IngressQueue().
func Listen(addr string, into *ingress.Queue[dispatch.IngressItem]) (*Transport, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("network: listen %s: %w", addr, err)
	}
	return &Transport{
		conn:   conn,
		into:   into,
		egress: ingress.New[dispatch.EgressItem](),
		logger: log.Default(),
		doneCh: make(chan struct{}),
	}, nil
}

// Send implements dispatch.Egress. It only queues; the combined rx/tx
// loop in Run performs the actual WriteTo.
func (t *Transport) Send(item dispatch.EgressItem) {
	t.egress.Push(item)
}

// Run blocks until Close is called, alternately reading datagrams into
// the ingress queue and draining queued egress buffers to the socket.
func (t *Transport) Run() {
	buf := make([]byte, maxDatagramSize)
	for {
		select {
		case <-t.doneCh:
			return
		default:
		}

		t.conn.SetReadDeadline(time.Now().Add(readPollInterval))
		n, addr, err := t.conn.ReadFrom(buf)
		switch {
		case err == nil:
			payload := make([]byte, n)
			copy(payload, buf[:n])
			t.into.Push(dispatch.IngressItem{Source: addr.String(), Payload: payload})
		case isTimeout(err):
			// expected: just means no datagram arrived within the poll
			// window, fall through to draining egress.
		default:
			select {
			case <-t.doneCh:
				return
			default:
			}
			t.logger.Printf("[network] read error: %v", err)
		}

		for _, item := range t.egress.Drain() {
			raddr, err := net.ResolveUDPAddr("udp", item.Addr)
			if err != nil {
				t.logger.Printf("[network] resolve %s: %v", item.Addr, err)
				continue
			}
			if _, err := t.conn.WriteTo(item.Payload, raddr); err != nil {
				t.logger.Printf("[network] write to %s: %v", item.Addr, err)
			}
		}
	}
}

// Close stops Run and releases the socket. Safe to call more than once.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() { close(t.doneCh) })
	return t.conn.Close()
}

// LocalAddr returns the address the transport is bound to.
func (t *Transport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
