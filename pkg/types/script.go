package types

// Script opcodes used by the standard pay-to-pubkey-hash template.
const (
	OpDup         = 0x76
	OpHash160     = 0xa9
	OpEqualVerify = 0x88
	OpCheckSig    = 0xac
)

// CommitmentSize is the length of a pay-to-pubkey-hash commitment.
const CommitmentSize = 20

// Commitment is a 20-byte hash of a public key, as embedded in
// pay-to-pubkey-hash output scripts.
type Commitment [CommitmentSize]byte

// PayToPubKeyHash builds the standard output script paying to the
// given commitment: DUP HASH160 PUSH20 <c> EQUALVERIFY CHECKSIG.
func PayToPubKeyHash(c Commitment) []byte {
	script := make([]byte, 0, 25)
	script = append(script, OpDup, OpHash160, CommitmentSize)
	script = append(script, c[:]...)
	script = append(script, OpEqualVerify, OpCheckSig)
	return script
}

// IsPayToPubKeyHash reports whether script matches the standard
// pay-to-pubkey-hash template.
func IsPayToPubKeyHash(script []byte) bool {
	return len(script) == 25 &&
		script[0] == OpDup &&
		script[1] == OpHash160 &&
		script[2] == CommitmentSize &&
		script[23] == OpEqualVerify &&
		script[24] == OpCheckSig
}

// ExtractCommitment returns the commitment embedded in a
// pay-to-pubkey-hash script.
func ExtractCommitment(script []byte) (Commitment, bool) {
	if !IsPayToPubKeyHash(script) {
		return Commitment{}, false
	}
	var c Commitment
	copy(c[:], script[3:23])
	return c, true
}
