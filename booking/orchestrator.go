package booking

import (
	"context"
	"errors"
	"fmt"
)

// Phase is the state of one booking attempt.
type Phase int

const (
	PhaseSelecting Phase = iota
	PhaseAwaitingPayment
	PhaseAwaitingCommit
	PhaseConfirmed
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSelecting:
		return "selecting"
	case PhaseAwaitingPayment:
		return "awaiting-payment"
	case PhaseAwaitingCommit:
		return "awaiting-commit"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailureKind distinguishes the ways an attempt can go wrong.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailurePaymentDeclined: the payment step resolved negatively or
	// was abandoned. No charge is assumed; selection stays intact.
	FailurePaymentDeclined
	// FailureBookingCommit: payment already succeeded but the seats
	// were not secured. Must be disclosed with the paid amount.
	FailureBookingCommit
)

// Failure describes a terminal booking failure.
type Failure struct {
	Kind       FailureKind
	PaidAmount int
	Err        error
}

// PaymentGateway is the external payment step. A declined or abandoned
// payment surfaces as an error; no charge is assumed in that case.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, amount int) error
}

// TicketService durably reserves seats for a user against a show.
type TicketService interface {
	CommitBooking(ctx context.Context, showID string, userID string, seats []string) error
}

// ShowDetails is display data carried into the confirmation.
type ShowDetails struct {
	Movie   string
	Theater string
	Time    string
}

// Confirmation is the payload for the summary view after a successful
// commit.
type Confirmation struct {
	Movie   string
	Theater string
	Time    string
	Seats   []string
	Total   int
}

var (
	errNotSelecting       = errors.New("booking attempt already in progress")
	errSelectionNotExact  = errors.New("selection does not match required seat count")
	errWrongPhase         = errors.New("operation not valid in current phase")
	errAttemptUnrecovered = errors.New("failed attempt must be dismissed first")
)

// Orchestrator drives one select -> pay -> book -> confirm sequence.
// It is single-threaded: every method runs on the UI event loop. The
// network steps are handed out as closures (PaymentStep, CommitStep)
// that perform I/O only and may run on another goroutine; their
// outcomes are applied back on the loop with RecordPayment and
// RecordCommit, so the state machine is never mutated off-loop.
type Orchestrator struct {
	payments PaymentGateway
	tickets  TicketService
	userID   string

	phase  Phase
	showID string
	show   ShowDetails
	seats  []string
	total  int

	failure      *Failure
	reloadNeeded bool
}

func NewOrchestrator(payments PaymentGateway, tickets TicketService, userID string) *Orchestrator {
	return &Orchestrator{
		payments: payments,
		tickets:  tickets,
		userID:   userID,
		phase:    PhaseSelecting,
	}
}

// Phase returns the current attempt phase.
func (o *Orchestrator) Phase() Phase { return o.phase }

// Amount returns the total frozen at Begin. Zero outside an attempt.
func (o *Orchestrator) Amount() int { return o.total }

// Seats returns the frozen seat list of the current attempt.
func (o *Orchestrator) Seats() []string {
	seats := make([]string, len(o.seats))
	copy(seats, o.seats)
	return seats
}

// Failure returns the most recent failure, if any. A
// FailurePaymentDeclined record is informational and cleared by the
// next Begin; FailureBookingCommit pins the machine in Failed until
// Dismiss.
func (o *Orchestrator) Failure() *Failure { return o.failure }

// ReloadNeeded reports whether a fresh seat-map load is required
// before the user may select seats again.
func (o *Orchestrator) ReloadNeeded() bool { return o.reloadNeeded }

// MarkReloaded clears the reload requirement once a fresh seat map is
// in place.
func (o *Orchestrator) MarkReloaded() { o.reloadNeeded = false }

// Begin freezes the selection and its total into a new attempt and
// moves to AwaitingPayment. The total is computed exactly once here;
// it is never recomputed for later steps.
func (o *Orchestrator) Begin(sel Selection, m *SeatMap, required int, show ShowDetails) error {
	if o.phase == PhaseFailed {
		return errAttemptUnrecovered
	}
	if o.phase != PhaseSelecting {
		return errNotSelecting
	}
	if !IsComplete(sel, required) {
		return fmt.Errorf("%w: have %d, need %d", errSelectionNotExact, len(sel), required)
	}
	total, err := Total(sel, m)
	if err != nil {
		debugf("aborting attempt: %v", err)
		return err
	}

	o.showID = m.ShowID()
	o.show = show
	o.seats = make([]string, len(sel))
	copy(o.seats, sel)
	o.total = total
	o.failure = nil
	o.phase = PhaseAwaitingPayment
	return nil
}

// PaymentStep returns the gateway call for the frozen amount. The
// closure captures the amount at creation time and performs I/O only,
// so it is safe to run off the event loop; its outcome is applied
// with RecordPayment. An abandoned attempt leaves the closure inert:
// RecordPayment refuses the stale result.
func (o *Orchestrator) PaymentStep() func(context.Context) error {
	if o.phase != PhaseAwaitingPayment {
		return func(context.Context) error { return errWrongPhase }
	}
	payments := o.payments
	amount := o.total
	return func(ctx context.Context) error {
		return payments.InitiatePayment(ctx, amount)
	}
}

// RecordPayment applies the payment outcome on the event loop. On any
// error the attempt returns to Selecting with the user's selection
// left untouched and no charge assumed; the decline is kept as a
// non-terminal FailurePaymentDeclined record until the next Begin.
func (o *Orchestrator) RecordPayment(stepErr error) error {
	if o.phase != PhaseAwaitingPayment {
		return errWrongPhase
	}
	if stepErr != nil {
		o.resetAttempt()
		o.failure = &Failure{Kind: FailurePaymentDeclined, Err: stepErr}
		return fmt.Errorf("payment declined: %w", stepErr)
	}
	o.phase = PhaseAwaitingCommit
	return nil
}

// Abandon cancels an attempt whose payment step the user walked away
// from before it resolved. The selection is preserved; no cancellation
// is sent to the server. A payment result arriving afterwards is
// refused by RecordPayment.
func (o *Orchestrator) Abandon() {
	if o.phase != PhaseAwaitingPayment {
		return
	}
	o.resetAttempt()
	o.failure = &Failure{Kind: FailurePaymentDeclined}
}

// CommitStep returns the booking call for the frozen seats. Like
// PaymentStep, the closure performs I/O only; the outcome is applied
// with RecordCommit.
func (o *Orchestrator) CommitStep() func(context.Context) error {
	if o.phase != PhaseAwaitingCommit {
		return func(context.Context) error { return errWrongPhase }
	}
	tickets := o.tickets
	showID := o.showID
	userID := o.userID
	seats := o.Seats()
	return func(ctx context.Context) error {
		return tickets.CommitBooking(ctx, showID, userID, seats)
	}
}

// RecordCommit applies the booking outcome on the event loop. Payment
// has already been acknowledged at this point, so any failure here is
// reported as FailureBookingCommit carrying the paid amount: the user
// was told payment succeeded but the seats were not secured.
func (o *Orchestrator) RecordCommit(stepErr error) (*Confirmation, error) {
	if o.phase != PhaseAwaitingCommit {
		return nil, errWrongPhase
	}
	if stepErr != nil {
		o.failure = &Failure{
			Kind:       FailureBookingCommit,
			PaidAmount: o.total,
			Err:        stepErr,
		}
		o.phase = PhaseFailed
		return nil, fmt.Errorf("booking commit failed: %w", stepErr)
	}
	o.phase = PhaseConfirmed
	return &Confirmation{
		Movie:   o.show.Movie,
		Theater: o.show.Theater,
		Time:    o.show.Time,
		Seats:   o.Seats(),
		Total:   o.total,
	}, nil
}

// Dismiss acknowledges a terminal failure and returns to Selecting.
// The attempt is discarded whole: availability may have changed, so
// the caller must clear its selection and reload the seat map before
// the user picks again.
func (o *Orchestrator) Dismiss() {
	if o.phase != PhaseFailed {
		return
	}
	o.resetAttempt()
	o.reloadNeeded = true
}

func (o *Orchestrator) resetAttempt() {
	o.phase = PhaseSelecting
	o.seats = nil
	o.total = 0
	o.failure = nil
}
