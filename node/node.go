package node

import (
	"fmt"
	"log"
	"sync"

	"github.com/ahwlsqja/bft-runtime-core/config"
	"github.com/ahwlsqja/bft-runtime-core/crypto"
	"github.com/ahwlsqja/bft-runtime-core/dispatch"
	"github.com/ahwlsqja/bft-runtime-core/examples/echo"
	"github.com/ahwlsqja/bft-runtime-core/identity"
	"github.com/ahwlsqja/bft-runtime-core/metrics"
	"github.com/ahwlsqja/bft-runtime-core/network"
)

// Runtime is the lifecycle surface every protocol's Dispatch[M] satisfies.
// Node holds one through this interface so it never needs to know the
// concrete message type M a particular protocol chose.
type Runtime interface {
	Run() error
	Stop()
	Wait()
	State() dispatch.State
	QueueDepth() int
}

// builder constructs the Runtime and transport for one registered
// protocol name. Only "echo" ships in this repository; a protocol built
// on this core registers its own entry here the same way.
type builder func(doc config.Document, identities *identity.Table, reg *crypto.Registry, m *metrics.Metrics) (Runtime, *network.Transport, error)

var protocolBuilders = map[string]builder{
	"echo": buildEcho,
}

func buildEcho(doc config.Document, identities *identity.Table, reg *crypto.Registry, m *metrics.Metrics) (Runtime, *network.Transport, error) {
	recv := echo.NewReceiver(identities.Self(), reg)
	d := dispatch.New(dispatch.Config[echo.Message]{
		Receiver:   recv,
		Identities: identities,
		Crypto:     reg,
		Metrics:    m,
		MinPace:    doc.MinPace,
	})
	trans, err := network.Listen(doc.ListenAddr, d.IngressQueue())
	if err != nil {
		return nil, nil, fmt.Errorf("node: build echo transport: %w", err)
	}
	d.SetEgress(trans)
	return d, trans, nil
}

// Node owns one running protocol instance: a Dispatch reachable only
// through the Runtime interface, the UDP transport feeding it, and the
// metrics registry a control server exposes at /metrics.
type Node struct {
	mu sync.RWMutex

	doc        config.Document
	identities *identity.Table
	runtime    Runtime
	transport  *network.Transport
	metrics    *metrics.Metrics

	running bool
	logger  *log.Logger
}

// New builds a Node from doc without starting it. The protocol named in
// doc.Protocol must be registered in protocolBuilders.
func New(doc config.Document) (*Node, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	build, ok := protocolBuilders[doc.Protocol]
	if !ok {
		return nil, ErrUnknownProtocol
	}

	identities, err := doc.BuildIdentities()
	if err != nil {
		return nil, err
	}
	reg, err := doc.BuildCrypto()
	if err != nil {
		return nil, err
	}

	ns := doc.MetricsNamespace
	if ns == "" {
		ns = "bftcore"
	}
	m := metrics.New(ns)

	runtime, trans, err := build(doc, identities, reg, m)
	if err != nil {
		return nil, err
	}

	return &Node{
		doc:        doc,
		identities: identities,
		runtime:    runtime,
		transport:  trans,
		metrics:    m,
		logger:     log.Default(),
	}, nil
}

// Start runs the Dispatch and transport goroutines. Non-blocking; Stop
// blocks until the Dispatch has finished shutting down.
func (n *Node) Start() error {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return ErrAlreadyRunning
	}
	n.running = true
	n.mu.Unlock()

	go n.transport.Run()
	go func() {
		if err := n.runtime.Run(); err != nil {
			n.logger.Printf("[node] dispatch exited: %v", err)
		}
	}()

	n.logger.Printf("[node] started protocol=%s listen=%s self=%d peers=%d",
		n.doc.Protocol, n.doc.ListenAddr, n.identities.Self(), n.identities.Size())
	return nil
}

// Stop signals the Dispatch to drain and shut down, then closes the
// transport's socket. Idempotent.
func (n *Node) Stop() error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return ErrNotRunning
	}
	n.running = false
	n.mu.Unlock()

	n.runtime.Stop()
	n.runtime.Wait()
	return n.transport.Close()
}

// Status is the JSON body GET /status returns.
type Status struct {
	Protocol   string `json:"protocol"`
	Self       uint32 `json:"self"`
	State      string `json:"state"`
	QueueDepth int    `json:"queue_depth"`
	PeerCount  int    `json:"peer_count"`
	Running    bool   `json:"running"`
}

// Status reports the node's current lifecycle and queue state.
func (n *Node) Status() Status {
	n.mu.RLock()
	running := n.running
	n.mu.RUnlock()

	return Status{
		Protocol:   n.doc.Protocol,
		Self:       uint32(n.identities.Self()),
		State:      n.runtime.State().String(),
		QueueDepth: n.runtime.QueueDepth(),
		PeerCount:  n.identities.Size() - 1,
		Running:    running,
	}
}

// Metrics returns the node's metrics, whose Registry the control server's
// GET /metrics handler serves.
func (n *Node) Metrics() *metrics.Metrics {
	return n.metrics
}
