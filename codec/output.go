package codec

import "github.com/tolelom/casinochain/core"

// EncodeOutput writes the canonical encoding of out (spec.md §4.3).
func EncodeOutput(out core.Output) []byte {
	w := NewWriter()
	w.WriteByte(byte(out.Kind))
	switch out.Kind {
	case core.OutputEvent:
		writeEvent(w, out.Event)
	case core.OutputCommitMarker:
		w.WriteI64(out.Height)
		w.WriteU64(out.Start)
	}
	return w.Bytes()
}

// DecodeOutput parses the encoding produced by EncodeOutput.
func DecodeOutput(data []byte) (core.Output, error) {
	r := NewReader(data)
	kindByte, err := r.ReadByte()
	if err != nil {
		return core.Output{}, err
	}
	out := core.Output{Kind: core.OutputKind(kindByte)}
	switch out.Kind {
	case core.OutputEvent:
		out.Event, err = readEvent(r)
	case core.OutputCommitMarker:
		if out.Height, err = r.ReadI64(); err == nil {
			out.Start, err = r.ReadU64()
		}
	default:
		return core.Output{}, ErrInvalidEnum
	}
	if err != nil {
		return core.Output{}, err
	}
	if err := r.Done(); err != nil {
		return core.Output{}, err
	}
	return out, nil
}

func writeEvent(w *Writer, e core.Event) {
	w.WriteByte(byte(e.Type))
	w.WriteBytes(e.Player)
	w.WriteU64(e.SessionID)
	w.WriteBool(e.HasSession)
	w.WriteU64(e.Amount)
	w.WriteU8(uint8(e.ErrorCode))
	w.WriteString(e.Message)
	w.WriteU32(uint32(len(e.Data)))
	for _, k := range sortedKeys(e.Data) {
		w.WriteString(k)
		w.WriteString(e.Data[k])
	}
}

// sortedKeys returns m's keys in ascending order so Event.Data encodes
// deterministically; map iteration order is otherwise randomized, which
// would break the executor's byte-equality recovery check (spec.md §4.10).
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func readEvent(r *Reader) (core.Event, error) {
	var e core.Event
	typByte, err := r.ReadByte()
	if err != nil {
		return e, err
	}
	e.Type = core.EventType(typByte)
	if e.Player, err = r.ReadBytes(); err != nil {
		return e, err
	}
	if e.SessionID, err = r.ReadU64(); err != nil {
		return e, err
	}
	if e.HasSession, err = r.ReadBool(); err != nil {
		return e, err
	}
	if e.Amount, err = r.ReadU64(); err != nil {
		return e, err
	}
	code, err := r.ReadU8()
	if err != nil {
		return e, err
	}
	e.ErrorCode = core.ErrorCode(code)
	if e.Message, err = r.ReadString(); err != nil {
		return e, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return e, err
	}
	if n > MaxBytesLen {
		return e, ErrTooLong
	}
	if n > 0 {
		e.Data = make(map[string]string, n)
		for i := uint32(0); i < n; i++ {
			k, err := r.ReadString()
			if err != nil {
				return e, err
			}
			v, err := r.ReadString()
			if err != nil {
				return e, err
			}
			e.Data[k] = v
		}
	}
	return e, nil
}
