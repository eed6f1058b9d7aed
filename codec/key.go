package codec

import "github.com/tolelom/casinochain/core"

// EncodeKey writes the canonical encoding of k, matching core.Key.Addr's
// field layout but additionally self-describing so it round-trips through
// DecodeKey (spec.md §4.1).
func EncodeKey(k core.Key) []byte {
	w := NewWriter()
	w.WriteByte(byte(k.Tag))
	switch k.Tag {
	case core.KeyAccount, core.KeyCasinoPlayer, core.KeyStaker, core.KeyVault, core.KeyAmmLp:
		w.WriteBytes(k.PublicKey)
	case core.KeyCasinoSession:
		w.WriteU64(k.SessionID)
	case core.KeyPlayerRegistry, core.KeyCasinoLeaderboard, core.KeyHouse, core.KeyAmmPool, core.KeyVaultRegistry:
	case core.KeyTournament:
		w.WriteU64(k.TournamentID)
	case core.KeyGlobalTableConfig, core.KeyGlobalTableRound:
		w.WriteString(k.GameType)
	case core.KeyGlobalTablePlayerSession:
		w.WriteString(k.GameType)
		w.WriteBytes(k.PublicKey)
	case core.KeyCommit:
		w.WriteI64(k.CommitHeight)
		w.WriteU64(k.CommitStart)
	}
	return w.Bytes()
}

// DecodeKey parses the encoding produced by EncodeKey.
func DecodeKey(data []byte) (core.Key, error) {
	r := NewReader(data)
	tagByte, err := r.ReadByte()
	if err != nil {
		return core.Key{}, err
	}
	tag := core.KeyTag(tagByte)
	k := core.Key{Tag: tag}
	switch tag {
	case core.KeyAccount, core.KeyCasinoPlayer, core.KeyStaker, core.KeyVault, core.KeyAmmLp:
		k.PublicKey, err = r.ReadBytes()
	case core.KeyCasinoSession:
		k.SessionID, err = r.ReadU64()
	case core.KeyPlayerRegistry, core.KeyCasinoLeaderboard, core.KeyHouse, core.KeyAmmPool, core.KeyVaultRegistry:
	case core.KeyTournament:
		k.TournamentID, err = r.ReadU64()
	case core.KeyGlobalTableConfig, core.KeyGlobalTableRound:
		k.GameType, err = r.ReadString()
	case core.KeyGlobalTablePlayerSession:
		if k.GameType, err = r.ReadString(); err != nil {
			break
		}
		k.PublicKey, err = r.ReadBytes()
	case core.KeyCommit:
		if k.CommitHeight, err = r.ReadI64(); err != nil {
			break
		}
		k.CommitStart, err = r.ReadU64()
	default:
		return core.Key{}, ErrInvalidEnum
	}
	if err != nil {
		return core.Key{}, err
	}
	if err := r.Done(); err != nil {
		return core.Key{}, err
	}
	return k, nil
}
