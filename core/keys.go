package core

import (
	"encoding/binary"
	"fmt"

	"github.com/tolelom/casinochain/internal/xhash"
)

// KeyTag is the single-byte discriminant selecting a Key's sub-namespace.
type KeyTag byte

const (
	KeyAccount KeyTag = iota
	KeyCasinoPlayer
	KeyCasinoSession
	KeyPlayerRegistry
	KeyCasinoLeaderboard
	KeyTournament
	KeyGlobalTableConfig
	KeyGlobalTableRound
	KeyGlobalTablePlayerSession
	KeyHouse
	KeyStaker
	KeyVault
	KeyAmmPool
	KeyAmmLp
	KeyVaultRegistry
	KeyCommit
)

// Key is the tagged discriminator for every addressable slot in the state
// store. Exactly one of the typed fields is meaningful for a given Tag.
type Key struct {
	Tag KeyTag

	PublicKey []byte // Account, CasinoPlayer, Staker, Vault, GlobalTablePlayerSession
	SessionID uint64 // CasinoSession
	GameType  string // GlobalTableConfig, GlobalTableRound, GlobalTablePlayerSession
	TournamentID uint64 // Tournament
	CommitHeight int64 // Commit
	CommitStart  uint64 // Commit
}

// AccountKey builds an Account key for pk.
func AccountKey(pk []byte) Key { return Key{Tag: KeyAccount, PublicKey: pk} }

// CasinoPlayerKey builds a CasinoPlayer key for pk.
func CasinoPlayerKey(pk []byte) Key { return Key{Tag: KeyCasinoPlayer, PublicKey: pk} }

// CasinoSessionKey builds a CasinoSession key for id.
func CasinoSessionKey(id uint64) Key { return Key{Tag: KeyCasinoSession, SessionID: id} }

// PlayerRegistryKey is the single global player-registry key.
func PlayerRegistryKey() Key { return Key{Tag: KeyPlayerRegistry} }

// CasinoLeaderboardKey is the single global leaderboard key.
func CasinoLeaderboardKey() Key { return Key{Tag: KeyCasinoLeaderboard} }

// TournamentKey builds a Tournament key for id.
func TournamentKey(id uint64) Key { return Key{Tag: KeyTournament, TournamentID: id} }

// GlobalTableConfigKey builds a GlobalTableConfig key for game.
func GlobalTableConfigKey(game string) Key { return Key{Tag: KeyGlobalTableConfig, GameType: game} }

// GlobalTableRoundKey builds a GlobalTableRound key for game.
func GlobalTableRoundKey(game string) Key { return Key{Tag: KeyGlobalTableRound, GameType: game} }

// GlobalTablePlayerSessionKey builds a per-(game,player) key.
func GlobalTablePlayerSessionKey(game string, pk []byte) Key {
	return Key{Tag: KeyGlobalTablePlayerSession, GameType: game, PublicKey: pk}
}

// HouseKey is the single global house-ledger key.
func HouseKey() Key { return Key{Tag: KeyHouse} }

// StakerKey builds a Staker key for pk.
func StakerKey(pk []byte) Key { return Key{Tag: KeyStaker, PublicKey: pk} }

// VaultKey builds a Vault key for pk.
func VaultKey(pk []byte) Key { return Key{Tag: KeyVault, PublicKey: pk} }

// AmmPoolKey is the single global AMM-pool key.
func AmmPoolKey() Key { return Key{Tag: KeyAmmPool} }

// AmmLpKey builds an AmmLp (liquidity-provider share position) key for pk.
func AmmLpKey(pk []byte) Key { return Key{Tag: KeyAmmLp, PublicKey: pk} }

// VaultRegistryKey is the single global vault-owner registry key, used by
// RetireWorstVaultDebt to locate the worst-standing vault without a range
// scan over the authenticated map.
func VaultRegistryKey() Key { return Key{Tag: KeyVaultRegistry} }

// CommitKey marks the most-recent-op metadata value for a store at height/start.
func CommitKey(height int64, start uint64) Key {
	return Key{Tag: KeyCommit, CommitHeight: height, CommitStart: start}
}

// addr hashes the canonical encoding of k to a fixed 256-bit store address.
// Collisions are assumed impossible for a well-formed cryptographic hash.
func (k Key) addr() xhash.Digest {
	buf := make([]byte, 0, 64)
	buf = append(buf, byte(k.Tag))
	switch k.Tag {
	case KeyAccount, KeyCasinoPlayer, KeyStaker, KeyVault, KeyAmmLp:
		buf = append(buf, k.PublicKey...)
	case KeyCasinoSession:
		buf = binary.BigEndian.AppendUint64(buf, k.SessionID)
	case KeyPlayerRegistry, KeyCasinoLeaderboard, KeyHouse, KeyAmmPool, KeyVaultRegistry:
		// no further discriminant
	case KeyTournament:
		buf = binary.BigEndian.AppendUint64(buf, k.TournamentID)
	case KeyGlobalTableConfig, KeyGlobalTableRound:
		buf = append(buf, []byte(k.GameType)...)
	case KeyGlobalTablePlayerSession:
		buf = append(buf, []byte(k.GameType)...)
		buf = append(buf, 0) // separator so "ab"+"c" != "a"+"bc"
		buf = append(buf, k.PublicKey...)
	case KeyCommit:
		buf = binary.BigEndian.AppendUint64(buf, uint64(k.CommitHeight))
		buf = binary.BigEndian.AppendUint64(buf, k.CommitStart)
	default:
		panic(fmt.Sprintf("core: unknown key tag %d", k.Tag))
	}
	return xhash.Sum(buf)
}

// Addr returns the 256-bit state-store address for k.
func (k Key) Addr() xhash.Digest { return k.addr() }

// String renders a human-readable description of k for logging.
func (k Key) String() string {
	switch k.Tag {
	case KeyAccount:
		return fmt.Sprintf("Account(%x)", k.PublicKey)
	case KeyCasinoPlayer:
		return fmt.Sprintf("CasinoPlayer(%x)", k.PublicKey)
	case KeyCasinoSession:
		return fmt.Sprintf("CasinoSession(%d)", k.SessionID)
	case KeyPlayerRegistry:
		return "PlayerRegistry"
	case KeyCasinoLeaderboard:
		return "CasinoLeaderboard"
	case KeyTournament:
		return fmt.Sprintf("Tournament(%d)", k.TournamentID)
	case KeyGlobalTableConfig:
		return fmt.Sprintf("GlobalTableConfig(%s)", k.GameType)
	case KeyGlobalTableRound:
		return fmt.Sprintf("GlobalTableRound(%s)", k.GameType)
	case KeyGlobalTablePlayerSession:
		return fmt.Sprintf("GlobalTablePlayerSession(%s,%x)", k.GameType, k.PublicKey)
	case KeyHouse:
		return "House"
	case KeyStaker:
		return fmt.Sprintf("Staker(%x)", k.PublicKey)
	case KeyVault:
		return fmt.Sprintf("Vault(%x)", k.PublicKey)
	case KeyAmmPool:
		return "AmmPool"
	case KeyAmmLp:
		return fmt.Sprintf("AmmLp(%x)", k.PublicKey)
	case KeyVaultRegistry:
		return "VaultRegistry"
	case KeyCommit:
		return fmt.Sprintf("Commit(%d,%d)", k.CommitHeight, k.CommitStart)
	default:
		return "Key(?)"
	}
}
