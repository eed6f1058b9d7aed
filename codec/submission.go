package codec

import "github.com/tolelom/casinochain/core"

// EncodeSubmission writes the canonical encoding of s, the envelope posted
// to /submit (spec.md §9).
func EncodeSubmission(s core.Submission) []byte {
	w := NewWriter()
	w.WriteByte(byte(s.Tag))
	switch s.Tag {
	case core.SubmissionSeed:
		w.WriteU64(s.Seed.View)
		w.WriteFixed(s.Seed.Seed[:])
	case core.SubmissionTransactions:
		t := s.Transactions
		w.WriteU64(t.View)
		w.WriteI64(t.Height)
		w.WriteU32(uint32(len(t.Transactions)))
		for _, tx := range t.Transactions {
			w.WriteBytes(EncodeTransaction(tx))
		}
	case core.SubmissionSummary:
		w.WriteBytes(EncodeSummary(*s.Summary))
	}
	return w.Bytes()
}

// DecodeSubmission parses the encoding produced by EncodeSubmission.
func DecodeSubmission(data []byte) (core.Submission, error) {
	r := NewReader(data)
	tagByte, err := r.ReadByte()
	if err != nil {
		return core.Submission{}, err
	}
	s := core.Submission{Tag: core.SubmissionTag(tagByte)}
	switch s.Tag {
	case core.SubmissionSeed:
		view, err := r.ReadU64()
		if err != nil {
			return core.Submission{}, err
		}
		seedBytes, err := r.ReadFixed(32)
		if err != nil {
			return core.Submission{}, err
		}
		seed := core.SeedSubmission{View: view}
		copy(seed.Seed[:], seedBytes)
		s.Seed = &seed
	case core.SubmissionTransactions:
		view, err := r.ReadU64()
		if err != nil {
			return core.Submission{}, err
		}
		height, err := r.ReadI64()
		if err != nil {
			return core.Submission{}, err
		}
		n, err := r.ReadU32()
		if err != nil {
			return core.Submission{}, err
		}
		if n > MaxBytesLen {
			return core.Submission{}, ErrTooLong
		}
		txs := make([]core.Transaction, n)
		for i := range txs {
			txBytes, err := r.ReadBytes()
			if err != nil {
				return core.Submission{}, err
			}
			if txs[i], err = DecodeTransaction(txBytes); err != nil {
				return core.Submission{}, err
			}
		}
		s.Transactions = &core.TransactionsSubmission{View: view, Height: height, Transactions: txs}
	case core.SubmissionSummary:
		sumBytes, err := r.ReadBytes()
		if err != nil {
			return core.Submission{}, err
		}
		summary, err := DecodeSummary(sumBytes)
		if err != nil {
			return core.Submission{}, err
		}
		s.Summary = &summary
	default:
		return core.Submission{}, ErrInvalidEnum
	}
	if err := r.Done(); err != nil {
		return core.Submission{}, err
	}
	return s, nil
}
