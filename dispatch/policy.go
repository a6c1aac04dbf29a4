package dispatch

import "github.com/ahwlsqja/bft-runtime-core/envelope"

// PolicyKind selects how Dispatch treats one message variant before
// delivering it to the receiver.
type PolicyKind int

const (
	// PolicyVerifyThen requires signature verification to succeed before
	// delivery; failure drops the message and counts it.
	PolicyVerifyThen PolicyKind = iota
	// PolicySkip delivers the message without verification, e.g. for
	// variants already authenticated by an enclosing quorum certificate.
	PolicySkip
	// PolicyDrop always drops the variant without delivering it.
	PolicyDrop
)

// Policy is the static, per-variant verification rule a Receiver declares
// via VerifyPolicy.
type Policy[M Message] struct {
	Kind          PolicyKind
	ExtractSigner envelope.SignerExtractor[M]
}

// VerifyThen builds a PolicyVerifyThen policy using extract to read the
// claimed signer identity out of a decoded message.
func VerifyThen[M Message](extract envelope.SignerExtractor[M]) Policy[M] {
	return Policy[M]{Kind: PolicyVerifyThen, ExtractSigner: extract}
}

// Skip builds a PolicySkip policy.
func Skip[M Message]() Policy[M] {
	return Policy[M]{Kind: PolicySkip}
}

// Drop builds a PolicyDrop policy.
func Drop[M Message]() Policy[M] {
	return Policy[M]{Kind: PolicyDrop}
}
