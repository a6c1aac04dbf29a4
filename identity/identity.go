// Package identity holds the immutable mapping from a replica's numeric
// index to its network address and public key material.
package identity

import "fmt"

// ID is a participant's stable numeric index. Index 0 carries no special
// meaning by itself; primary selection for a given view is a protocol
// concern, not an identity concern.
type ID uint32

// KeyFamily selects which crypto.Provider a signer/verifier pair for an
// identity runs through. The envelope never encodes this; it is looked up
// by identity alone.
type KeyFamily int

const (
	// KeyFamilyHMAC is the symmetric, hardware-assisted path.
	KeyFamilyHMAC KeyFamily = iota
	// KeyFamilySchnorr is the asymmetric path over a standard curve.
	KeyFamilySchnorr
)

// Entry is one participant's address and key material as installed at
// Dispatch construction.
type Entry struct {
	ID        ID
	Addr      string // host:port, immutable for the Dispatch's lifetime
	KeyFamily KeyFamily
	PublicKey []byte // opaque to this package; interpreted by crypto.Provider
}

// Table is the immutable identity -> (address, public key) mapping shared
// by every component of one Dispatch. It is built once at construction and
// never mutated afterward.
type Table struct {
	self    ID
	entries map[ID]Entry
}

// NewTable builds a Table from a set of entries. self must be present in
// entries.
func NewTable(self ID, entries []Entry) (*Table, error) {
	t := &Table{self: self, entries: make(map[ID]Entry, len(entries))}
	for _, e := range entries {
		t.entries[e.ID] = e
	}
	if _, ok := t.entries[self]; !ok {
		return nil, fmt.Errorf("identity: self id %d not present in peer table", self)
	}
	return t, nil
}

// Self returns this replica's own identity.
func (t *Table) Self() ID { return t.self }

// Lookup returns the entry for id, or false if id is unknown.
func (t *Table) Lookup(id ID) (Entry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

// SelfEntry returns the entry for this replica's own identity.
func (t *Table) SelfEntry() Entry {
	return t.entries[t.self]
}

// Size returns the number of known participants.
func (t *Table) Size() int { return len(t.entries) }

// Each calls fn for every known identity except self, in a stable order.
// Used by Context.Broadcast.
func (t *Table) Each(fn func(Entry)) {
	ids := make([]ID, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	// deterministic iteration keeps broadcast fan-out order reproducible
	// across runs, which matters for benchmark repeatability.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	for _, id := range ids {
		if id == t.self {
			continue
		}
		fn(t.entries[id])
	}
}

// QuorumSize returns 2f+1 for n participants, the standard BFT quorum bound
// used by protocols built on this runtime.
func (t *Table) QuorumSize() int {
	n := len(t.entries)
	f := (n - 1) / 3
	return 2*f + 1
}

// FaultTolerance returns f for n participants.
func (t *Table) FaultTolerance() int {
	return (len(t.entries) - 1) / 3
}
