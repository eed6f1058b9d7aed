package codec

import (
	"github.com/tolelom/casinochain/core"
	"github.com/tolelom/casinochain/internal/xhash"
)

func writeDigest(w *Writer, d xhash.Digest) { w.WriteFixed(d[:]) }

func readDigest(r *Reader) (xhash.Digest, error) {
	b, err := r.ReadFixed(xhash.Size)
	if err != nil {
		return xhash.Digest{}, err
	}
	var d xhash.Digest
	copy(d[:], b)
	return d, nil
}

// EncodeProgress writes the canonical encoding of p (spec.md §4.9, §4.11).
func EncodeProgress(w *Writer, p core.Progress) {
	w.WriteU64(p.View)
	w.WriteI64(p.Height)
	writeDigest(w, p.ParentDigest)
	writeDigest(w, p.StateRoot)
	w.WriteU64(p.StateStart)
	w.WriteU64(p.StateEnd)
	writeDigest(w, p.EventsRoot)
	w.WriteU64(p.EventsStart)
	w.WriteU64(p.EventsEnd)
}

// DecodeProgress parses the encoding written by EncodeProgress.
func DecodeProgress(r *Reader) (core.Progress, error) {
	var p core.Progress
	var err error
	if p.View, err = r.ReadU64(); err != nil {
		return p, err
	}
	if p.Height, err = r.ReadI64(); err != nil {
		return p, err
	}
	if p.ParentDigest, err = readDigest(r); err != nil {
		return p, err
	}
	if p.StateRoot, err = readDigest(r); err != nil {
		return p, err
	}
	if p.StateStart, err = r.ReadU64(); err != nil {
		return p, err
	}
	if p.StateEnd, err = r.ReadU64(); err != nil {
		return p, err
	}
	if p.EventsRoot, err = readDigest(r); err != nil {
		return p, err
	}
	if p.EventsStart, err = r.ReadU64(); err != nil {
		return p, err
	}
	if p.EventsEnd, err = r.ReadU64(); err != nil {
		return p, err
	}
	return p, nil
}

func writeCertificate(w *Writer, c core.Certificate) {
	w.WriteBytes(c.Signers)
	w.WriteBytes(c.Signature)
}

func readCertificate(r *Reader) (core.Certificate, error) {
	var c core.Certificate
	var err error
	if c.Signers, err = r.ReadBytes(); err != nil {
		return c, err
	}
	if c.Signature, err = r.ReadBytes(); err != nil {
		return c, err
	}
	return c, nil
}

// EncodeOperation writes the canonical encoding of op, used to persist the
// operation log and as the MMR leaf preimage (spec.md §4.2).
func EncodeOperation(op core.Operation) []byte {
	w := NewWriter()
	writeOperation(w, op)
	return w.Bytes()
}

// DecodeOperation parses the encoding produced by EncodeOperation.
func DecodeOperation(data []byte) (core.Operation, error) {
	r := NewReader(data)
	op, err := readOperation(r)
	if err != nil {
		return core.Operation{}, err
	}
	if err := r.Done(); err != nil {
		return core.Operation{}, err
	}
	return op, nil
}

func writeOperation(w *Writer, op core.Operation) {
	w.WriteU64(op.Seq)
	w.WriteBytes(EncodeKey(op.Key))
	w.WriteBool(op.HasValue)
	if op.HasValue {
		w.WriteBytes(EncodeValue(op.Value))
	}
}

func readOperation(r *Reader) (core.Operation, error) {
	var op core.Operation
	var err error
	if op.Seq, err = r.ReadU64(); err != nil {
		return op, err
	}
	keyBytes, err := r.ReadBytes()
	if err != nil {
		return op, err
	}
	if op.Key, err = DecodeKey(keyBytes); err != nil {
		return op, err
	}
	if op.HasValue, err = r.ReadBool(); err != nil {
		return op, err
	}
	if op.HasValue {
		valBytes, err := r.ReadBytes()
		if err != nil {
			return op, err
		}
		if op.Value, err = DecodeValue(valBytes); err != nil {
			return op, err
		}
	}
	return op, nil
}

// EncodeSummary writes the canonical encoding of s (spec.md §4.11).
func EncodeSummary(s core.Summary) []byte {
	w := NewWriter()
	EncodeProgress(w, s.Progress)
	writeCertificate(w, s.Certificate)
	w.WriteBytes(s.StateProof)
	w.WriteU32(uint32(len(s.StateOps)))
	for _, op := range s.StateOps {
		writeOperation(w, op)
	}
	w.WriteBytes(s.EventsProof)
	w.WriteU32(uint32(len(s.EventsOps)))
	for _, out := range s.EventsOps {
		w.WriteBytes(EncodeOutput(out))
	}
	return w.Bytes()
}

// DecodeSummary parses the encoding produced by EncodeSummary.
func DecodeSummary(data []byte) (core.Summary, error) {
	r := NewReader(data)
	var s core.Summary
	var err error
	if s.Progress, err = DecodeProgress(r); err != nil {
		return s, err
	}
	if s.Certificate, err = readCertificate(r); err != nil {
		return s, err
	}
	if s.StateProof, err = r.ReadBytes(); err != nil {
		return s, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return s, err
	}
	if n > MaxBytesLen {
		return s, ErrTooLong
	}
	s.StateOps = make([]core.Operation, n)
	for i := range s.StateOps {
		if s.StateOps[i], err = readOperation(r); err != nil {
			return s, err
		}
	}
	if s.EventsProof, err = r.ReadBytes(); err != nil {
		return s, err
	}
	m, err := r.ReadU32()
	if err != nil {
		return s, err
	}
	if m > MaxBytesLen {
		return s, ErrTooLong
	}
	s.EventsOps = make([]core.Output, m)
	for i := range s.EventsOps {
		outBytes, err := r.ReadBytes()
		if err != nil {
			return s, err
		}
		if s.EventsOps[i], err = DecodeOutput(outBytes); err != nil {
			return s, err
		}
	}
	if err := r.Done(); err != nil {
		return s, err
	}
	return s, nil
}

// EncodeQuery writes the canonical encoding of q, the path parameter for
// GET /seed/{hex(Query)} (spec.md §6).
func EncodeQuery(q core.Query) []byte {
	w := NewWriter()
	w.WriteByte(byte(q.Tag))
	if q.Tag == core.QueryIndex {
		w.WriteU64(q.Index)
	}
	return w.Bytes()
}

// DecodeQuery parses the encoding produced by EncodeQuery.
func DecodeQuery(data []byte) (core.Query, error) {
	r := NewReader(data)
	tagByte, err := r.ReadByte()
	if err != nil {
		return core.Query{}, err
	}
	q := core.Query{Tag: core.QueryTag(tagByte)}
	switch q.Tag {
	case core.QueryLatest:
	case core.QueryIndex:
		if q.Index, err = r.ReadU64(); err != nil {
			return core.Query{}, err
		}
	default:
		return core.Query{}, ErrInvalidEnum
	}
	if err := r.Done(); err != nil {
		return core.Query{}, err
	}
	return q, nil
}

// EncodeLookup writes the canonical encoding of l, the response body for
// GET /state/{hex(Digest)} (spec.md §6).
func EncodeLookup(l core.Lookup) []byte {
	w := NewWriter()
	EncodeProgress(w, l.Progress)
	writeCertificate(w, l.Certificate)
	w.WriteBytes(l.Proof)
	w.WriteU64(l.Location)
	writeOperation(w, l.Operation)
	return w.Bytes()
}

// DecodeLookup parses the encoding produced by EncodeLookup.
func DecodeLookup(data []byte) (core.Lookup, error) {
	r := NewReader(data)
	var l core.Lookup
	var err error
	if l.Progress, err = DecodeProgress(r); err != nil {
		return l, err
	}
	if l.Certificate, err = readCertificate(r); err != nil {
		return l, err
	}
	if l.Proof, err = r.ReadBytes(); err != nil {
		return l, err
	}
	if l.Location, err = r.ReadU64(); err != nil {
		return l, err
	}
	if l.Operation, err = readOperation(r); err != nil {
		return l, err
	}
	if err := r.Done(); err != nil {
		return l, err
	}
	return l, nil
}

// EncodeSeed writes the canonical encoding of s, the response body for
// GET /seed/{hex(Query)} (spec.md §6, §9).
func EncodeSeed(s core.SeedSubmission) []byte {
	w := NewWriter()
	w.WriteU64(s.View)
	w.WriteFixed(s.Seed[:])
	return w.Bytes()
}

// DecodeSeed parses the encoding produced by EncodeSeed.
func DecodeSeed(data []byte) (core.SeedSubmission, error) {
	r := NewReader(data)
	var s core.SeedSubmission
	var err error
	if s.View, err = r.ReadU64(); err != nil {
		return s, err
	}
	seedBytes, err := r.ReadFixed(32)
	if err != nil {
		return s, err
	}
	copy(s.Seed[:], seedBytes)
	if err := r.Done(); err != nil {
		return s, err
	}
	return s, nil
}
