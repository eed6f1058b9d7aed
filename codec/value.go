package codec

import "github.com/tolelom/casinochain/core"

// EncodeValue writes the canonical encoding of v (spec.md §4.1). The leading
// tag byte always matches the Key.Tag of the slot v is stored under.
func EncodeValue(v core.Value) []byte {
	w := NewWriter()
	w.WriteByte(byte(v.Tag))
	switch v.Tag {
	case core.KeyAccount:
		writeAccount(w, v.Account)
	case core.KeyCasinoPlayer:
		writeCasinoPlayer(w, v.CasinoPlayer)
	case core.KeyCasinoSession:
		writeGameSession(w, v.CasinoSession)
	case core.KeyPlayerRegistry:
		writePlayerRegistry(w, v.PlayerRegistry)
	case core.KeyCasinoLeaderboard:
		writeLeaderboard(w, v.CasinoLeaderboard)
	case core.KeyTournament:
		writeTournament(w, v.Tournament)
	case core.KeyGlobalTableConfig:
		writeGlobalTableConfig(w, v.GlobalTableConfig)
	case core.KeyGlobalTableRound:
		writeGlobalTableRound(w, v.GlobalTableRound)
	case core.KeyGlobalTablePlayerSession:
		writeGlobalTablePlayerSession(w, v.GlobalTablePlayerSession)
	case core.KeyHouse:
		writeHouseState(w, v.House)
	case core.KeyStaker:
		writeStaker(w, v.Staker)
	case core.KeyVault:
		writeVault(w, v.Vault)
	case core.KeyAmmPool:
		writeAmmPool(w, v.AmmPool)
	case core.KeyAmmLp:
		writeAmmLp(w, v.AmmLp)
	case core.KeyVaultRegistry:
		writeVaultRegistry(w, v.VaultRegistry)
	case core.KeyCommit:
		writeCommitMarker(w, v.Commit)
	}
	return w.Bytes()
}

// DecodeValue parses the encoding produced by EncodeValue.
func DecodeValue(data []byte) (core.Value, error) {
	r := NewReader(data)
	tagByte, err := r.ReadByte()
	if err != nil {
		return core.Value{}, err
	}
	tag := core.KeyTag(tagByte)
	v := core.Value{Tag: tag}
	switch tag {
	case core.KeyAccount:
		v.Account, err = readAccount(r)
	case core.KeyCasinoPlayer:
		v.CasinoPlayer, err = readCasinoPlayer(r)
	case core.KeyCasinoSession:
		v.CasinoSession, err = readGameSession(r)
	case core.KeyPlayerRegistry:
		v.PlayerRegistry, err = readPlayerRegistry(r)
	case core.KeyCasinoLeaderboard:
		v.CasinoLeaderboard, err = readLeaderboard(r)
	case core.KeyTournament:
		v.Tournament, err = readTournament(r)
	case core.KeyGlobalTableConfig:
		v.GlobalTableConfig, err = readGlobalTableConfig(r)
	case core.KeyGlobalTableRound:
		v.GlobalTableRound, err = readGlobalTableRound(r)
	case core.KeyGlobalTablePlayerSession:
		v.GlobalTablePlayerSession, err = readGlobalTablePlayerSession(r)
	case core.KeyHouse:
		v.House, err = readHouseState(r)
	case core.KeyStaker:
		v.Staker, err = readStaker(r)
	case core.KeyVault:
		v.Vault, err = readVault(r)
	case core.KeyAmmPool:
		v.AmmPool, err = readAmmPool(r)
	case core.KeyAmmLp:
		v.AmmLp, err = readAmmLp(r)
	case core.KeyVaultRegistry:
		v.VaultRegistry, err = readVaultRegistry(r)
	case core.KeyCommit:
		v.Commit, err = readCommitMarker(r)
	default:
		return core.Value{}, ErrInvalidEnum
	}
	if err != nil {
		return core.Value{}, err
	}
	if err := r.Done(); err != nil {
		return core.Value{}, err
	}
	return v, nil
}

func writeAccount(w *Writer, a *core.Account) {
	w.WriteBytes(a.PublicKey)
	w.WriteU64(a.Nonce)
	w.WriteU64(a.Balance)
}

func readAccount(r *Reader) (*core.Account, error) {
	a := &core.Account{}
	var err error
	if a.PublicKey, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if a.Nonce, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if a.Balance, err = r.ReadU64(); err != nil {
		return nil, err
	}
	return a, nil
}

func writeCasinoPlayer(w *Writer, p *core.CasinoPlayer) {
	w.WriteBytes(p.PublicKey)
	w.WriteString(p.Name)
	w.WriteU64(p.Chips)
	w.WriteU64(p.FreerollCredits)
	w.WriteU64(p.FreerollCreditsLocked)
	w.WriteU32(uint32(len(p.Vesting)))
	for _, v := range p.Vesting {
		w.WriteU64(v.Amount)
		w.WriteI64(v.UnlocksAt)
	}
	w.WriteI64(p.Stats.Played)
	w.WriteI64(p.Stats.Won)
	w.WriteI64(p.Stats.Rating)
	w.WriteU8(p.AuraMeter)
	w.WriteI64(p.RegisteredAt)
	w.WriteI64(p.LastDepositAt)
	w.WriteI64(p.LastDepositHeight)
	w.WriteU64(p.CompletedSessions)
	w.WriteByte(byte(p.MembershipTier))
	w.WriteI64(p.LastTournamentJoinAt)
	w.WriteU32(p.DailyTournamentJoins)
	w.WriteI64(p.DailyTournamentWindowAt)
	w.WriteU64(p.VusdtBalance)
}

func readCasinoPlayer(r *Reader) (*core.CasinoPlayer, error) {
	p := &core.CasinoPlayer{}
	var err error
	if p.PublicKey, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if p.Name, err = r.ReadString(); err != nil {
		return nil, err
	}
	if p.Chips, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if p.FreerollCredits, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if p.FreerollCreditsLocked, err = r.ReadU64(); err != nil {
		return nil, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n > MaxBytesLen {
		return nil, ErrTooLong
	}
	p.Vesting = make([]core.VestingEntry, n)
	for i := range p.Vesting {
		if p.Vesting[i].Amount, err = r.ReadU64(); err != nil {
			return nil, err
		}
		if p.Vesting[i].UnlocksAt, err = r.ReadI64(); err != nil {
			return nil, err
		}
	}
	if p.Stats.Played, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if p.Stats.Won, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if p.Stats.Rating, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if p.AuraMeter, err = r.ReadU8(); err != nil {
		return nil, err
	}
	if p.RegisteredAt, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if p.LastDepositAt, err = r.ReadI64(); err != nil {
		return nil, err
	}
	// Additive fields: absent (remaining() < field_size) defaults to zero,
	// matching an older-version blob (spec.md §4.1).
	if r.Remaining() < 8 {
		return p, nil
	}
	if p.LastDepositHeight, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if p.CompletedSessions, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if r.Remaining() < 1 {
		return p, nil
	}
	tier, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	p.MembershipTier = core.MembershipTier(tier)
	if r.Remaining() < 8 {
		return p, nil
	}
	if p.LastTournamentJoinAt, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if p.DailyTournamentJoins, err = r.ReadU32(); err != nil {
		return nil, err
	}
	if p.DailyTournamentWindowAt, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if r.Remaining() < 8 {
		return p, nil
	}
	if p.VusdtBalance, err = r.ReadU64(); err != nil {
		return nil, err
	}
	return p, nil
}

func writeGameSession(w *Writer, s *core.GameSession) {
	w.WriteU64(s.ID)
	w.WriteBytes(s.Player)
	w.WriteString(string(s.GameType))
	w.WriteU64(s.Bet)
	w.WriteBytes(s.StateBlob)
	w.WriteU64(s.MoveCount)
	w.WriteI64(s.CreatedAt)
	w.WriteBool(s.IsComplete)
	w.WriteBool(s.SuperMode)
	w.WriteBool(s.IsTournament)
	w.WriteU64(s.TournamentID)
}

func readGameSession(r *Reader) (*core.GameSession, error) {
	s := &core.GameSession{}
	var err error
	var gt string
	if s.ID, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if s.Player, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if gt, err = r.ReadString(); err != nil {
		return nil, err
	}
	s.GameType = core.GameType(gt)
	if s.Bet, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if s.StateBlob, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if s.MoveCount, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if s.IsComplete, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if s.SuperMode, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if s.IsTournament, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if s.TournamentID, err = r.ReadU64(); err != nil {
		return nil, err
	}
	return s, nil
}

func writePlayerRegistry(w *Writer, p *core.PlayerRegistry) {
	w.WriteU32(uint32(len(p.Players)))
	for _, pk := range p.Players {
		w.WriteBytes(pk)
	}
}

func readPlayerRegistry(r *Reader) (*core.PlayerRegistry, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n > MaxBytesLen {
		return nil, ErrTooLong
	}
	p := &core.PlayerRegistry{Players: make([][]byte, n)}
	for i := range p.Players {
		if p.Players[i], err = r.ReadBytes(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func writeVaultRegistry(w *Writer, v *core.VaultRegistry) {
	w.WriteU32(uint32(len(v.Owners)))
	for _, pk := range v.Owners {
		w.WriteBytes(pk)
	}
}

func readVaultRegistry(r *Reader) (*core.VaultRegistry, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n > MaxBytesLen {
		return nil, ErrTooLong
	}
	v := &core.VaultRegistry{Owners: make([][]byte, n)}
	for i := range v.Owners {
		if v.Owners[i], err = r.ReadBytes(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func writeCommitMarker(w *Writer, m *core.CommitMarker) {
	w.WriteI64(m.StateHeight)
	w.WriteI64(m.EventsHeight)
	w.WriteU64(m.EventsCommitStart)
	w.WriteU64(m.EventsCommitLoc)
}

func readCommitMarker(r *Reader) (*core.CommitMarker, error) {
	m := &core.CommitMarker{}
	var err error
	if m.StateHeight, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if m.EventsHeight, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if m.EventsCommitStart, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if m.EventsCommitLoc, err = r.ReadU64(); err != nil {
		return nil, err
	}
	return m, nil
}

func writeLeaderboard(w *Writer, l *core.Leaderboard) {
	w.WriteU32(uint32(len(l.Entries)))
	for _, e := range l.Entries {
		w.WriteBytes(e.Player)
		w.WriteString(e.Name)
		w.WriteU64(e.Chips)
		w.WriteU32(uint32(e.Rank))
	}
}

func readLeaderboard(r *Reader) (*core.Leaderboard, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n > MaxBytesLen {
		return nil, ErrTooLong
	}
	l := &core.Leaderboard{Entries: make([]core.LeaderboardEntry, n)}
	for i := range l.Entries {
		e := &l.Entries[i]
		if e.Player, err = r.ReadBytes(); err != nil {
			return nil, err
		}
		if e.Name, err = r.ReadString(); err != nil {
			return nil, err
		}
		if e.Chips, err = r.ReadU64(); err != nil {
			return nil, err
		}
		rank, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		e.Rank = int(rank)
	}
	return l, nil
}

func writeTournament(w *Writer, t *core.Tournament) {
	w.WriteU64(t.ID)
	w.WriteByte(byte(t.Phase))
	w.WriteU32(uint32(len(t.Players)))
	for _, pk := range t.Players {
		w.WriteBytes(pk)
	}
	w.WriteU32(uint32(len(t.Scores)))
	for _, s := range t.Scores {
		w.WriteBytes(s.Player)
		w.WriteU64(s.Chips)
		w.WriteI64(s.Rating)
	}
	w.WriteI64(t.StartTime)
	w.WriteI64(t.EndTime)
}

func readTournament(r *Reader) (*core.Tournament, error) {
	t := &core.Tournament{}
	var err error
	if t.ID, err = r.ReadU64(); err != nil {
		return nil, err
	}
	phase, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	t.Phase = core.TournamentPhase(phase)
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n > MaxBytesLen {
		return nil, ErrTooLong
	}
	t.Players = make([][]byte, n)
	for i := range t.Players {
		if t.Players[i], err = r.ReadBytes(); err != nil {
			return nil, err
		}
	}
	m, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if m > MaxBytesLen {
		return nil, ErrTooLong
	}
	t.Scores = make([]core.TournamentScore, m)
	for i := range t.Scores {
		s := &t.Scores[i]
		if s.Player, err = r.ReadBytes(); err != nil {
			return nil, err
		}
		if s.Chips, err = r.ReadU64(); err != nil {
			return nil, err
		}
		if s.Rating, err = r.ReadI64(); err != nil {
			return nil, err
		}
	}
	if t.StartTime, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if t.EndTime, err = r.ReadI64(); err != nil {
		return nil, err
	}
	t.Canonicalize()
	return t, nil
}

func writeGlobalTableConfig(w *Writer, c *core.GlobalTableConfig) {
	w.WriteString(string(c.GameType))
	w.WriteI64(c.BettingMs)
	w.WriteI64(c.LockMs)
	w.WriteI64(c.PayoutMs)
	w.WriteI64(c.CooldownMs)
	w.WriteU64(c.MinBet)
	w.WriteU64(c.MaxBet)
	w.WriteU32(c.MaxBetsPerRound)
}

func readGlobalTableConfig(r *Reader) (*core.GlobalTableConfig, error) {
	c := &core.GlobalTableConfig{}
	var err error
	var gt string
	if gt, err = r.ReadString(); err != nil {
		return nil, err
	}
	c.GameType = core.GameType(gt)
	if c.BettingMs, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if c.LockMs, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if c.PayoutMs, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if c.CooldownMs, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if c.MinBet, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if c.MaxBet, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if c.MaxBetsPerRound, err = r.ReadU32(); err != nil {
		return nil, err
	}
	return c, nil
}

func writeGlobalTableRound(w *Writer, g *core.GlobalTableRound) {
	w.WriteString(string(g.GameType))
	w.WriteU64(g.RoundID)
	w.WriteByte(byte(g.Phase))
	w.WriteI64(g.PhaseEndsAt)
	w.WriteFixed(g.RNGCommit[:])
	w.WriteBool(g.HasCommit)
	w.WriteFixed(g.RollSeed[:])
	w.WriteBool(g.HasRollSeed)
	w.WriteU32(uint32(len(g.Totals)))
	for _, b := range g.Totals {
		w.WriteBytes(b.Player)
		w.WriteU8(b.BetType)
		w.WriteU8(b.Number)
		w.WriteU64(b.Amount)
	}
	w.WriteBool(g.OutcomeValid)
	w.WriteBytes(g.Outcome)
}

func readGlobalTableRound(r *Reader) (*core.GlobalTableRound, error) {
	g := &core.GlobalTableRound{}
	var err error
	var gt string
	if gt, err = r.ReadString(); err != nil {
		return nil, err
	}
	g.GameType = core.GameType(gt)
	if g.RoundID, err = r.ReadU64(); err != nil {
		return nil, err
	}
	phase, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	g.Phase = core.GlobalTablePhase(phase)
	if g.PhaseEndsAt, err = r.ReadI64(); err != nil {
		return nil, err
	}
	rc, err := r.ReadFixed(32)
	if err != nil {
		return nil, err
	}
	copy(g.RNGCommit[:], rc)
	if g.HasCommit, err = r.ReadBool(); err != nil {
		return nil, err
	}
	rs, err := r.ReadFixed(32)
	if err != nil {
		return nil, err
	}
	copy(g.RollSeed[:], rs)
	if g.HasRollSeed, err = r.ReadBool(); err != nil {
		return nil, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if n > MaxBytesLen {
		return nil, ErrTooLong
	}
	g.Totals = make([]core.BetEntry, n)
	for i := range g.Totals {
		b := &g.Totals[i]
		if b.Player, err = r.ReadBytes(); err != nil {
			return nil, err
		}
		if b.BetType, err = r.ReadU8(); err != nil {
			return nil, err
		}
		if b.Number, err = r.ReadU8(); err != nil {
			return nil, err
		}
		if b.Amount, err = r.ReadU64(); err != nil {
			return nil, err
		}
	}
	if g.OutcomeValid, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if g.Outcome, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	return g, nil
}

func writeGlobalTablePlayerSession(w *Writer, s *core.GlobalTablePlayerSession) {
	w.WriteString(string(s.GameType))
	w.WriteBytes(s.Player)
	w.WriteU64(s.LastSettledRound)
}

func readGlobalTablePlayerSession(r *Reader) (*core.GlobalTablePlayerSession, error) {
	s := &core.GlobalTablePlayerSession{}
	var err error
	var gt string
	if gt, err = r.ReadString(); err != nil {
		return nil, err
	}
	s.GameType = core.GameType(gt)
	if s.Player, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if s.LastSettledRound, err = r.ReadU64(); err != nil {
		return nil, err
	}
	return s, nil
}

func writeHouseState(w *Writer, h *core.HouseState) {
	w.WriteU64(h.CurrentEpoch)
	w.WriteI64(h.EpochStartTs)
	w.WriteI64(h.NetPnl)
	w.WriteU64(h.TotalStakedAmount)
	w.WriteU64(h.TotalVotingPower)
	w.WriteU64(h.AccumulatedFees)
	w.WriteU64(h.TotalBurned)
	w.WriteU64(h.TotalIssuance)
	w.WriteU64(h.StakingRewardPerVotingPowerX18)
	w.WriteU64(h.StakingRewardPool)
	w.WriteU64(h.StakingRewardCarry)
	w.WriteU64(h.ThreeCardProgressiveJackpot)
	w.WriteU64(h.UthProgressiveJackpot)
}

func readHouseState(r *Reader) (*core.HouseState, error) {
	h := &core.HouseState{}
	var err error
	if h.CurrentEpoch, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.EpochStartTs, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if h.NetPnl, err = r.ReadI64(); err != nil {
		return nil, err
	}
	if h.TotalStakedAmount, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.TotalVotingPower, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.AccumulatedFees, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.TotalBurned, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.TotalIssuance, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.StakingRewardPerVotingPowerX18, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.StakingRewardPool, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.StakingRewardCarry, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.ThreeCardProgressiveJackpot, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.UthProgressiveJackpot, err = r.ReadU64(); err != nil {
		return nil, err
	}
	return h, nil
}

func writeStaker(w *Writer, s *core.Staker) {
	w.WriteBytes(s.PublicKey)
	w.WriteU64(s.Balance)
	w.WriteU64(s.RewardDebt)
	w.WriteI64(s.UnlockTs)
}

func readStaker(r *Reader) (*core.Staker, error) {
	s := &core.Staker{}
	var err error
	if s.PublicKey, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if s.Balance, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if s.RewardDebt, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if s.UnlockTs, err = r.ReadI64(); err != nil {
		return nil, err
	}
	return s, nil
}

func writeVault(w *Writer, v *core.Vault) {
	w.WriteBytes(v.Owner)
	w.WriteU64(v.CollateralRng)
	w.WriteU64(v.DebtVusdt)
	w.WriteU32(v.MaxLtvBps)
}

func readVault(r *Reader) (*core.Vault, error) {
	v := &core.Vault{}
	var err error
	if v.Owner, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if v.CollateralRng, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if v.DebtVusdt, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if v.MaxLtvBps, err = r.ReadU32(); err != nil {
		return nil, err
	}
	return v, nil
}

func writeAmmPool(w *Writer, a *core.AmmPool) {
	w.WriteU64(a.ReserveRng)
	w.WriteU64(a.ReserveVusdt)
	w.WriteU64(a.TotalShares)
}

func readAmmPool(r *Reader) (*core.AmmPool, error) {
	a := &core.AmmPool{}
	var err error
	if a.ReserveRng, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if a.ReserveVusdt, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if a.TotalShares, err = r.ReadU64(); err != nil {
		return nil, err
	}
	return a, nil
}

func writeAmmLp(w *Writer, a *core.AmmLpPosition) {
	w.WriteBytes(a.Owner)
	w.WriteU64(a.Shares)
}

func readAmmLp(r *Reader) (*core.AmmLpPosition, error) {
	a := &core.AmmLpPosition{}
	var err error
	if a.Owner, err = r.ReadBytes(); err != nil {
		return nil, err
	}
	if a.Shares, err = r.ReadU64(); err != nil {
		return nil, err
	}
	return a, nil
}
