// Package config loads the single configuration document a control
// server accepts at POST /config: identity index, peer table with
// addresses and public keys, protocol selection, crypto parameters, and
// benchmark knobs. Defaults for the listen address, minimum pace, and
// metrics namespace, when the document omits them, come from viper, bound
// to environment variables so an operator can override them per process.
// Identity, peers, and protocol come only from the document.
package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ahwlsqja/bft-runtime-core/crypto"
	"github.com/ahwlsqja/bft-runtime-core/identity"
)

// PeerDocument describes one participant as carried in the wire config
// document. KeyFamily is "hmac" or "schnorr"; Secret is empty for peers
// this process only verifies, never signs for.
type PeerDocument struct {
	ID        uint32 `json:"id"`
	Addr      string `json:"addr"`
	KeyFamily string `json:"key_family"`
	PublicKey string `json:"public_key"` // hex
	Secret    string `json:"secret,omitempty"` // hex, present only for identities this process signs as
}

// Document is the full configuration payload accepted at POST /config.
type Document struct {
	Self     uint32         `json:"self"`
	Peers    []PeerDocument `json:"peers"`
	Protocol string         `json:"protocol"`

	ListenAddr       string        `json:"listen_addr"`
	MinPace          time.Duration `json:"min_pace"`
	MetricsNamespace string        `json:"metrics_namespace"`

	// BenchmarkTxCount and BenchmarkTxInterval size a synthetic load
	// generator a protocol built on this runtime may run; the core
	// itself never reads them.
	BenchmarkTxCount    int           `json:"benchmark_tx_count"`
	BenchmarkTxInterval time.Duration `json:"benchmark_tx_interval"`
}

// configError is the teacher's sentinel-error pattern: static, comparable
// values for conditions the caller can usefully branch on.
type configError string

func (e configError) Error() string { return string(e) }

const (
	ErrNoPeers            = configError("config: at least one peer is required")
	ErrSelfNotInPeers     = configError("config: self id not present in peer table")
	ErrUnknownKeyFamily   = configError("config: unknown key_family, want hmac or schnorr")
	ErrUnknownProtocol    = configError("config: protocol not registered")
	ErrInsufficientPeers  = configError("config: fewer than 3f+1 peers for any f >= 1")
)

// Defaults returns a viper instance pre-seeded with this process's
// fallback settings, overridable via BFTCORE_-prefixed environment
// variables (e.g. BFTCORE_LISTEN_ADDR).
func Defaults() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("bftcore")
	v.AutomaticEnv()
	v.SetDefault("listen_addr", "0.0.0.0:26700")
	v.SetDefault("min_pace", 1*time.Millisecond)
	v.SetDefault("metrics_namespace", "bftcore")
	v.SetDefault("bind_addr", "0.0.0.0:26780")
	return v
}

// ApplyDefaults fills any zero-valued field of doc from v.
func ApplyDefaults(doc *Document, v *viper.Viper) {
	if doc.ListenAddr == "" {
		doc.ListenAddr = v.GetString("listen_addr")
	}
	if doc.MinPace == 0 {
		doc.MinPace = v.GetDuration("min_pace")
	}
	if doc.MetricsNamespace == "" {
		doc.MetricsNamespace = v.GetString("metrics_namespace")
	}
}

// Validate checks doc for the structural requirements the core depends
// on; it does not check protocol registration, which is the control
// server's job since only it knows the registered protocol set.
func (d *Document) Validate() error {
	if len(d.Peers) == 0 {
		return ErrNoPeers
	}
	found := false
	for _, p := range d.Peers {
		if p.ID == d.Self {
			found = true
		}
	}
	if !found {
		return ErrSelfNotInPeers
	}
	n := len(d.Peers)
	f := (n - 1) / 3
	if f < 1 && n < 4 {
		return ErrInsufficientPeers
	}
	return nil
}

// BuildIdentities converts the peer documents into an identity.Table.
func (d *Document) BuildIdentities() (*identity.Table, error) {
	entries := make([]identity.Entry, 0, len(d.Peers))
	for _, p := range d.Peers {
		family, err := parseKeyFamily(p.KeyFamily)
		if err != nil {
			return nil, err
		}
		pub, err := hex.DecodeString(p.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("config: peer %d public_key: %w", p.ID, err)
		}
		entries = append(entries, identity.Entry{
			ID:        identity.ID(p.ID),
			Addr:      p.Addr,
			KeyFamily: family,
			PublicKey: pub,
		})
	}
	return identity.NewTable(identity.ID(d.Self), entries)
}

// BuildCrypto converts the peer documents' key material into a
// crypto.Registry. Only peers carrying a Secret become signers for this
// process; every peer becomes a verifier.
func (d *Document) BuildCrypto() (*crypto.Registry, error) {
	keys := make(map[identity.ID]crypto.KeyMaterial, len(d.Peers))
	for _, p := range d.Peers {
		family, err := parseKeyFamily(p.KeyFamily)
		if err != nil {
			return nil, err
		}
		pub, err := hex.DecodeString(p.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("config: peer %d public_key: %w", p.ID, err)
		}
		var secret []byte
		if p.Secret != "" {
			secret, err = hex.DecodeString(p.Secret)
			if err != nil {
				return nil, fmt.Errorf("config: peer %d secret: %w", p.ID, err)
			}
		}
		keys[identity.ID(p.ID)] = crypto.KeyMaterial{
			Family: family,
			Secret: secret,
			Public: pub,
		}
	}
	return crypto.NewRegistry(keys), nil
}

func parseKeyFamily(s string) (identity.KeyFamily, error) {
	switch s {
	case "hmac":
		return identity.KeyFamilyHMAC, nil
	case "schnorr":
		return identity.KeyFamilySchnorr, nil
	default:
		return 0, ErrUnknownKeyFamily
	}
}
