package dispatch

// EgressItem is one outbound datagram handed from the Dispatch goroutine
// to whatever owns the write side of the transport.
type EgressItem struct {
	Addr    string
	Payload []byte
}

// Egress is the write side of the transport Dispatch hands buffers to. The
// production implementation (package network) feeds a UDP socket from an
// unbounded queue fed by this interface; tests use an in-memory fake that
// records sent items instead of opening a real socket.
type Egress interface {
	Send(item EgressItem)
}

// IngressItem is one raw datagram pulled off the wire, or synthesized by
// Loopback, before it has been decoded into a Message.
type IngressItem struct {
	Source  string
	Payload []byte
}
