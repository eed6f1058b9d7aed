package core

// Certificate is a threshold-aggregated attestation over a Progress digest
// (spec.md §4.11). Signers is a bitmap over the network identity's ordered
// validator list; Signature is an aggregate BLS12-381 signature verified by
// the crypto/bls package.
type Certificate struct {
	Signers   []byte
	Signature []byte
}

// Summary lets a non-validator verify a round's outcome without replaying
// it: the certified Progress plus enough of the state and event logs to
// recompute both roots from StateStart/EventsStart (spec.md §4.11).
type Summary struct {
	Progress    Progress
	Certificate Certificate

	StateProof Proof
	StateOps   []Operation

	EventsProof Proof
	EventsOps   []Output
}
