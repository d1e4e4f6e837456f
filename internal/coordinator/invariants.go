package coordinator

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/rooms"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
)

// RoomReport is the ownership picture of one room.
type RoomReport struct {
	Room               string           `json:"room"`
	Status             enums.RoomStatus `json:"status"`
	ActiveReservations []uint           `json:"active_reservations"`
	PendingTasks       []uint           `json:"pending_tasks"`
	Consistent         bool             `json:"consistent"`
	Problem            string           `json:"problem,omitempty"`
}

// Err returns a Conflict describing the violation, or nil.
func (r RoomReport) Err() error {
	if r.Consistent {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "room invariant violated: "+r.Problem).
		WithDetails(map[string]any{
			"room":                r.Room,
			"status":              r.Status,
			"active_reservations": r.ActiveReservations,
			"pending_tasks":       r.PendingTasks,
		})
}

// AuditReport summarizes an invariant sweep over every room.
type AuditReport struct {
	Rooms      int          `json:"rooms"`
	Violations []RoomReport `json:"violations"`
}

// Err combines every violation into one error.
func (a AuditReport) Err() error {
	var err error
	for _, v := range a.Violations {
		err = multierr.Append(err, v.Err())
	}
	return err
}

// evaluate checks the family rule: a free room has no owner, an occupancy
// room exactly one active reservation, a task room exactly one pending task.
func evaluate(room models.Room, reservationIDs, taskIDs []uint) RoomReport {
	report := RoomReport{
		Room:               room.Number,
		Status:             room.Status,
		ActiveReservations: nonNil(reservationIDs),
		PendingTasks:       nonNil(taskIDs),
	}
	res, pending := len(reservationIDs), len(taskIDs)
	switch room.Status.Family() {
	case enums.FamilyFree:
		if res != 0 || pending != 0 {
			report.Problem = fmt.Sprintf("free room has %d active reservation(s) and %d pending task(s)", res, pending)
		}
	case enums.FamilyOccupancy:
		if res != 1 || pending != 0 {
			report.Problem = fmt.Sprintf("%s room has %d active reservation(s) and %d pending task(s)", room.Status, res, pending)
		}
	case enums.FamilyTask:
		if pending != 1 || res != 0 {
			report.Problem = fmt.Sprintf("%s room has %d pending task(s) and %d active reservation(s)", room.Status, pending, res)
		}
	default:
		report.Problem = fmt.Sprintf("unknown status %q", room.Status)
	}
	report.Consistent = report.Problem == ""
	return report
}

func nonNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}

// inspect reads the owners of room through tx and evaluates the invariant.
func (c *Coordinator) inspect(ctx context.Context, tx *gorm.DB, room *models.Room) (RoomReport, error) {
	active, err := c.reservations.ActiveForRoom(ctx, tx, room.ID)
	if err != nil {
		return RoomReport{}, err
	}
	pending, err := c.tasks.PendingForRoom(ctx, tx, room.ID)
	if err != nil {
		return RoomReport{}, err
	}
	resIDs := make([]uint, 0, len(active))
	for _, r := range active {
		resIDs = append(resIDs, r.ID)
	}
	taskIDs := make([]uint, 0, len(pending))
	for _, t := range pending {
		taskIDs = append(taskIDs, t.ID)
	}
	return evaluate(*room, resIDs, taskIDs), nil
}

// verify re-checks the invariant of a locked room before commit.
func (c *Coordinator) verify(ctx context.Context, tx *gorm.DB, room *models.Room) error {
	report, err := c.inspect(ctx, tx, room)
	if err != nil {
		return err
	}
	return report.Err()
}

// VerifyRoom audits one room without changing it.
func (c *Coordinator) VerifyRoom(ctx context.Context, number string) (*RoomReport, error) {
	var report RoomReport
	err := c.observe(ctx, opVerifyRoom, func(ctx context.Context) error {
		room, err := c.rooms.Get(ctx, number)
		if err != nil {
			return err
		}
		report, err = c.inspect(ctx, nil, room)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Audit evaluates every room against one transaction's view of rooms,
// reservations and tasks. Violations are reported, not returned as an error;
// use AuditReport.Err to fold them.
func (c *Coordinator) Audit(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{Violations: []RoomReport{}}
	err := c.transact(ctx, opAudit, func(tx *gorm.DB) error {
		all, err := c.rooms.ListTx(ctx, tx, rooms.Filter{})
		if err != nil {
			return err
		}
		active, err := c.reservations.ListActive(ctx, tx)
		if err != nil {
			return err
		}
		pending, err := c.tasks.ListPending(ctx, tx)
		if err != nil {
			return err
		}
		resByRoom := make(map[uint][]uint, len(active))
		for _, r := range active {
			resByRoom[r.RoomID] = append(resByRoom[r.RoomID], r.ID)
		}
		tasksByRoom := make(map[uint][]uint, len(pending))
		for _, t := range pending {
			tasksByRoom[t.RoomID] = append(tasksByRoom[t.RoomID], t.ID)
		}
		report.Rooms = len(all)
		for _, room := range all {
			if r := evaluate(room, resByRoom[room.ID], tasksByRoom[room.ID]); !r.Consistent {
				report.Violations = append(report.Violations, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(report.Violations) > 0 {
		c.logg.Warn(c.logg.WithField(ctx, "violations", len(report.Violations)), "room invariant audit found violations")
	}
	return report, nil
}

// SetRoomStatus applies a manual status change and rejects it when the room
// would no longer match its reservations and tasks. It serves as the repair
// path for rooms whose status drifted.
func (c *Coordinator) SetRoomStatus(ctx context.Context, input SetRoomStatusInput) (*models.Room, error) {
	var updated *models.Room
	err := c.transact(ctx, opSetRoomStatus, func(tx *gorm.DB) error {
		room, previous, err := c.rooms.ApplyStatus(ctx, tx, input.RoomNumber, input.Status)
		if err != nil {
			return err
		}
		if err := c.verify(ctx, tx, room); err != nil {
			return err
		}
		updated = room
		if previous == room.Status {
			return nil
		}
		return c.emit(ctx, tx, input.Operator, roomStatusEvent(room, previous, "manual"))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
