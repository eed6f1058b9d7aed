package core

// ValueTag is the single-byte discriminant for a Value stored under a Key.
// It always matches the KeyTag of the slot it is stored under.
type ValueTag = KeyTag

// PlayerRegistry is the set of every registered player's public key, in
// registration order (unique because re-registration is rejected), stored
// under the single PlayerRegistryKey slot.
type PlayerRegistry struct {
	Players [][]byte
}

// VaultRegistry is the set of every vault owner's public key, stored under
// the single VaultRegistryKey slot.
type VaultRegistry struct {
	Owners [][]byte
}

// CommitMarker is the metadata value stored under a CommitKey(height, start)
// slot, recording the (state_height, events_height) pair the executor's
// crash-consistency check reads on its next Step (spec.md §4.10).
type CommitMarker struct {
	StateHeight       int64
	EventsHeight      int64
	EventsCommitStart uint64
	EventsCommitLoc   uint64
}

// Value is the tagged union of everything storable in the state map. Exactly
// one typed field is populated for a given Tag, mirroring Key.
type Value struct {
	Tag ValueTag

	Account                  *Account
	CasinoPlayer             *CasinoPlayer
	CasinoSession            *GameSession
	PlayerRegistry           *PlayerRegistry
	CasinoLeaderboard        *Leaderboard
	Tournament               *Tournament
	GlobalTableConfig        *GlobalTableConfig
	GlobalTableRound         *GlobalTableRound
	GlobalTablePlayerSession *GlobalTablePlayerSession
	House                    *HouseState
	Staker                   *Staker
	Vault                    *Vault
	AmmPool                  *AmmPool
	AmmLp                    *AmmLpPosition
	VaultRegistry            *VaultRegistry
	Commit                   *CommitMarker
}
