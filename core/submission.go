package core

// SubmissionTag is the single-byte discriminant for a Submission
// (spec.md §9): the one envelope every external actor posts to the layer.
type SubmissionTag byte

const (
	SubmissionSeed SubmissionTag = iota
	SubmissionTransactions
	SubmissionSummary
)

// SeedSubmission carries the per-round consensus seed used to derive every
// game RNG for that round (spec.md §4.4, §9).
type SeedSubmission struct {
	View uint64
	Seed [32]byte
}

// TransactionsSubmission carries the ordered transaction batch for one round.
type TransactionsSubmission struct {
	View         uint64
	Height       int64
	Transactions []Transaction
}

// Submission is the tagged union posted to /submit (spec.md §9): a seed
// reveal, a transaction batch, or a certified Summary relayed between
// non-validator nodes.
type Submission struct {
	Tag SubmissionTag

	Seed         *SeedSubmission
	Transactions *TransactionsSubmission
	Summary      *Summary
}
