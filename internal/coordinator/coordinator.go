// Package coordinator is the single transaction boundary for operations that
// touch more than one of rooms, reservations, tasks and inventory.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/guests"
	"github.com/angelmondragon/hotelops-backend/internal/inventory"
	"github.com/angelmondragon/hotelops-backend/internal/reservations"
	"github.com/angelmondragon/hotelops-backend/internal/rooms"
	"github.com/angelmondragon/hotelops-backend/internal/staff"
	"github.com/angelmondragon/hotelops-backend/internal/tasks"
	"github.com/angelmondragon/hotelops-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
	"github.com/angelmondragon/hotelops-backend/pkg/metrics"
	"github.com/angelmondragon/hotelops-backend/pkg/outbox"
)

const (
	opCheckIn           = "check_in"
	opCheckOut          = "check_out"
	opCancelReservation = "cancel_reservation"
	opReschedule        = "reschedule_reservation"
	opOpenTask          = "open_task"
	opRecordConsumption = "record_consumption"
	opCloseTask         = "close_task"
	opChargeToRoom      = "charge_to_room"
	opSetRoomStatus     = "set_room_status"
	opVerifyRoom        = "verify_room"
	opAudit             = "audit"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Params wires the coordinator to the managers it composes.
type Params struct {
	Tx           txRunner
	Rooms        rooms.Service
	Guests       guests.Service
	Reservations reservations.Service
	Staff        staff.Service
	Tasks        tasks.Service
	Inventory    inventory.Service
	Outbox       outbox.Emitter
	Metrics      *metrics.OperationMetrics
	Logger       *logger.Logger
}

// Coordinator runs every multi-entity operation as one transaction: lock the
// room, run the manager step, verify the room invariant, queue one outbox
// event, commit.
type Coordinator struct {
	tx           txRunner
	rooms        rooms.Service
	guests       guests.Service
	reservations reservations.Service
	staff        staff.Service
	tasks        tasks.Service
	inventory    inventory.Service
	outbox       outbox.Emitter
	metrics      *metrics.OperationMetrics
	logg         *logger.Logger
}

// New validates params and builds a Coordinator.
func New(p Params) (*Coordinator, error) {
	switch {
	case p.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case p.Rooms == nil:
		return nil, fmt.Errorf("rooms service required")
	case p.Guests == nil:
		return nil, fmt.Errorf("guests service required")
	case p.Reservations == nil:
		return nil, fmt.Errorf("reservations service required")
	case p.Staff == nil:
		return nil, fmt.Errorf("staff service required")
	case p.Tasks == nil:
		return nil, fmt.Errorf("tasks service required")
	case p.Inventory == nil:
		return nil, fmt.Errorf("inventory service required")
	case p.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Coordinator{
		tx:           p.Tx,
		rooms:        p.Rooms,
		guests:       p.Guests,
		reservations: p.Reservations,
		staff:        p.Staff,
		tasks:        p.Tasks,
		inventory:    p.Inventory,
		outbox:       p.Outbox,
		metrics:      p.Metrics,
		logg:         logg,
	}, nil
}

// transact runs fn in one transaction and records the outcome.
func (c *Coordinator) transact(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	return c.observe(ctx, op, func(ctx context.Context) error {
		return c.tx.WithTx(ctx, fn)
	})
}

func (c *Coordinator) observe(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx = c.logg.WithOperation(ctx, op)
	start := time.Now()
	err := classify(fn(ctx))
	elapsed := time.Since(start)
	c.metrics.Observe(op, string(pkgerrors.CodeOf(err)), elapsed)

	if err == nil {
		c.logg.Debug(c.logg.WithField(ctx, "elapsed_ms", elapsed.Milliseconds()), "operation committed")
		return nil
	}
	code := pkgerrors.CodeOf(err)
	logCtx := c.logg.WithField(ctx, "error_code", code)
	switch code {
	case pkgerrors.CodeStorage, pkgerrors.CodeInternal:
		c.logg.Error(logCtx, "operation failed", err)
	default:
		c.logg.Info(logCtx, "operation rejected: "+pkgerrors.As(err).Message())
	}
	return err
}

// classify maps untyped storage failures onto the public taxonomy. Typed
// errors pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	switch {
	case db.IsSerializationFailure(err):
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "transaction conflicted with a concurrent update")
	case db.IsUniqueViolation(err, reservations.ActiveRoomIndex),
		db.IsUniqueViolation(err, tasks.PendingRoomIndex):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "room already claimed by a concurrent operation")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "commit transaction")
	}
}

func (c *Coordinator) emit(ctx context.Context, tx *gorm.DB, operator string, event outbox.DomainEvent) error {
	if operator != "" {
		event.Actor = &outbox.ActorRef{Operator: operator}
	}
	if err := c.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "queue outbox event")
	}
	return nil
}

func (c *Coordinator) countLowStock(results []inventory.MovementResult) {
	for _, res := range results {
		if res.CrossedMinimum() {
			c.metrics.IncStockBelowMinimum(res.Item.Name)
		}
	}
}
