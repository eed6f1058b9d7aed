package core

// GameType identifies a casino game module. Sic Bo is fully implemented
// (SPEC_FULL.md §4.5); the remainder share the same envelope per spec.md §4.5
// and are registered with stub modules in the games package.
type GameType string

const (
	GameSicBo           GameType = "sic_bo"
	GameBlackjack       GameType = "blackjack"
	GameBaccarat        GameType = "baccarat"
	GameCraps           GameType = "craps"
	GameRoulette        GameType = "roulette"
	GameHiLo            GameType = "hi_lo"
	GameVideoPoker      GameType = "video_poker"
	GameCasinoWar       GameType = "casino_war"
	GameThreeCardPoker  GameType = "three_card_poker"
	GameUltimateHoldem  GameType = "ultimate_holdem"
)

// GameSession is one player's ongoing or completed play of one game.
// StateBlob is opaque to the outer layer; its first byte is a version the
// owning game module understands (spec.md §3, §4.5).
type GameSession struct {
	ID            uint64
	Player        []byte
	GameType      GameType
	Bet           uint64
	StateBlob     []byte
	MoveCount     uint64
	CreatedAt     int64
	IsComplete    bool
	SuperMode     bool
	IsTournament  bool
	TournamentID  uint64
}
