package core

// EventType identifies an Output's payload shape (spec.md §3, §6).
type EventType byte

const (
	EventChipsDeposited EventType = iota
	EventGameStarted
	EventGameResult
	EventCasinoError
	EventGlobalTableResult
	EventTournamentPhase
)

// Event is one user-observable record appended to the event log.
type Event struct {
	Type        EventType
	Player      []byte
	SessionID   uint64
	HasSession  bool
	Amount      uint64
	ErrorCode   ErrorCode
	Message     string
	Data        map[string]string // free-form extra fields, additive
}

// OutputKind distinguishes an Output between a user event and a block's
// commit marker (spec.md §3).
type OutputKind byte

const (
	OutputEvent OutputKind = iota
	OutputCommitMarker
)

// Output is one record in the event log: either an Event or a Commit marker
// appended once per block to delimit its window (spec.md §3, §4.3).
type Output struct {
	Kind   OutputKind
	Event  Event
	Height int64
	Start  uint64
}

// ErrorCode is the on-chain domain-error taxonomy (spec.md §7).
type ErrorCode uint8

const (
	ErrPlayerAlreadyRegistered ErrorCode = 1
	ErrPlayerNotFound          ErrorCode = 2
	ErrInsufficientFunds       ErrorCode = 3
	ErrInvalidBet              ErrorCode = 4
	ErrSessionAlreadyExists    ErrorCode = 5
	ErrSessionNotFound         ErrorCode = 6
	ErrSessionNotOwned         ErrorCode = 7
	ErrSessionAlreadyComplete  ErrorCode = 8
	ErrInvalidMovePayload      ErrorCode = 9
	ErrRateLimited             ErrorCode = 10
	ErrTournamentNotRegistration ErrorCode = 11
	ErrAlreadyRegisteredTournament ErrorCode = 12
	ErrDailyTournamentCapReached ErrorCode = 13
	ErrRequiresTournamentContext ErrorCode = 14
	ErrUnauthorized            ErrorCode = 15
)

// CasinoError is a handler-level domain failure, reported as an Event of
// type EventCasinoError rather than aborting the transaction (spec.md §4.6,
// §7): the nonce has already been consumed and is not refunded.
type CasinoError struct {
	Player    []byte
	SessionID uint64
	HasSession bool
	Code      ErrorCode
	Message   string
}

// Error implements the error interface so handlers can `return err` and have
// the layer package convert it into a CasinoError event uniformly.
func (e *CasinoError) Error() string {
	return e.Message
}

// NewCasinoError builds a CasinoError with no session context.
func NewCasinoError(player []byte, code ErrorCode, msg string) *CasinoError {
	return &CasinoError{Player: player, Code: code, Message: msg}
}

// NewCasinoSessionError builds a CasinoError tied to a specific session.
func NewCasinoSessionError(player []byte, sessionID uint64, code ErrorCode, msg string) *CasinoError {
	return &CasinoError{Player: player, SessionID: sessionID, HasSession: true, Code: code, Message: msg}
}
