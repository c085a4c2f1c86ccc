// Package script implements the reference script verifier: standard
// pay-to-pubkey-hash outputs spent with a Schnorr signature and a
// compressed public key.
package script

import (
	"fmt"

	"github.com/nozmo-king/eMoney/pkg/crypto"
	"github.com/nozmo-king/eMoney/pkg/tx"
	"github.com/nozmo-king/eMoney/pkg/types"
)

// signatureSize is the length of a serialized Schnorr signature.
const signatureSize = 64

// pubKeySize is the length of a compressed secp256k1 public key.
const pubKeySize = 33

// SignatureHash returns the 32-byte hash signatures commit to: a
// BLAKE3-256 of the transaction's signing serialization (input scripts
// emptied).
func SignatureHash(t *tx.Transaction) [32]byte {
	return crypto.Hash256(t.SigningBytes())
}

// SignatureScript builds an input script spending a standard
// pay-to-pubkey-hash output: push(signature) push(pubkey).
func SignatureScript(t *tx.Transaction, key *crypto.PrivateKey) ([]byte, error) {
	hash := SignatureHash(t)
	sig, err := key.Sign(hash[:])
	if err != nil {
		return nil, fmt.Errorf("sign input: %w", err)
	}
	pubKey := key.PublicKey()

	s := make([]byte, 0, 2+len(sig)+len(pubKey))
	s = append(s, byte(len(sig)))
	s = append(s, sig...)
	s = append(s, byte(len(pubKey)))
	s = append(s, pubKey...)
	return s, nil
}

// SignInputs fills every input's script with a signature from key.
// All inputs must spend outputs paying to key's commitment.
func SignInputs(t *tx.Transaction, key *crypto.PrivateKey) error {
	// One signature hash covers the whole transaction, so a single
	// signature serves every input.
	s, err := SignatureScript(t, key)
	if err != nil {
		return err
	}
	for i := range t.Inputs {
		t.Inputs[i].Script = s
	}
	return nil
}

// parseSignatureScript splits an input script into its signature and
// public key pushes.
func parseSignatureScript(s []byte) (sig, pubKey []byte, ok bool) {
	if len(s) < 1 || int(s[0]) != signatureSize || len(s) < 1+signatureSize+1 {
		return nil, nil, false
	}
	sig = s[1 : 1+signatureSize]
	rest := s[1+signatureSize:]
	if int(rest[0]) != pubKeySize || len(rest) != 1+pubKeySize {
		return nil, nil, false
	}
	return sig, rest[1:], true
}

// Engine is the standard script verifier.
type Engine struct{}

// NewEngine returns the standard verifier.
func NewEngine() Engine {
	return Engine{}
}

// Verify checks that input inputIndex of t satisfies prevScript.
// Only the standard pay-to-pubkey-hash template is spendable; any
// other output script, malformed input script, commitment mismatch,
// or bad signature fails verification.
func (Engine) Verify(t *tx.Transaction, inputIndex int, prevScript []byte) bool {
	if inputIndex < 0 || inputIndex >= len(t.Inputs) {
		return false
	}
	commitment, ok := types.ExtractCommitment(prevScript)
	if !ok {
		return false
	}
	sig, pubKey, ok := parseSignatureScript(t.Inputs[inputIndex].Script)
	if !ok {
		return false
	}
	if crypto.AddressFromPubKey(pubKey) != commitment {
		return false
	}
	hash := SignatureHash(t)
	return crypto.VerifySignature(hash[:], sig, pubKey)
}
