package store

// Reservation states. The canonical vocabulary is PENDING/PAID/CANCELLED; a
// reservation is PAID exactly when its payment is PAID.
const (
	ReservationPending   = "PENDING"
	ReservationPaid      = "PAID"
	ReservationCancelled = "CANCELLED"
)

// Payment states.
const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentRefunded = "REFUNDED"
)

// Payment methods.
const (
	MethodCash     = "CASH"
	MethodOnline   = "ONLINE"
	MethodTransfer = "TRANSFER"
)

// Tournament states.
const (
	TournamentRegistration = "REGISTRATION"
	TournamentInProgress   = "IN_PROGRESS"
	TournamentFinished     = "FINISHED"
)

// Match states.
const (
	MatchPending  = "PENDING"
	MatchFinished = "FINISHED"
	MatchWalkover = "WALKOVER"
)
