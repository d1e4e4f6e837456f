package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/rooms"
	"github.com/angelmondragon/hotelops-backend/pkg/db"
	"github.com/angelmondragon/hotelops-backend/pkg/db/dbtest"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/pagination"
)

type fixture struct {
	client *db.Client
	rooms  rooms.Service
	svc    Service
	guest  *models.Guest
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Client(t)
	roomSvc, err := rooms.NewService(rooms.NewRepository(client.DB()), client, nil)
	require.NoError(t, err)
	_, err = roomSvc.SeedGrid(context.Background(), 3, 5)
	require.NoError(t, err)

	guest := &models.Guest{Name: "Ana Souza", Document: "12345678900"}
	require.NoError(t, client.DB().Create(guest).Error)

	svc, err := NewService(NewRepository(client.DB()), roomSvc)
	require.NoError(t, err)
	return fixture{client: client, rooms: roomSvc, svc: svc, guest: guest}
}

func day(value string) time.Time {
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func (f fixture) checkIn(t *testing.T, room string, in, out string, rate string) (*models.Reservation, error) {
	t.Helper()
	var created *models.Reservation
	err := f.client.WithTx(context.Background(), func(tx *gorm.DB) error {
		locked, err := f.rooms.Lock(context.Background(), tx, room)
		if err != nil {
			return err
		}
		created, err = f.svc.CheckIn(context.Background(), tx, CheckInInput{
			Guest: f.guest,
			Room:  locked,
			Stay: Stay{
				CheckInDate:  day(in),
				CheckOutDate: day(out),
				NightlyRate:  decimal.RequireFromString(rate),
			},
		})
		return err
	})
	return created, err
}

func TestNights(t *testing.T) {
	cases := []struct {
		in, out string
		want    int
	}{
		{"2024-01-10", "2024-01-12", 2},
		{"2024-01-10", "2024-01-10", 1},
		{"2024-01-12", "2024-01-10", 1},
		{"2024-02-28", "2024-03-01", 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Nights(day(tc.in), day(tc.out)), "%s..%s", tc.in, tc.out)
	}
	late := time.Date(2024, 1, 10, 23, 30, 0, 0, time.UTC)
	early := time.Date(2024, 1, 11, 0, 15, 0, 0, time.UTC)
	assert.Equal(t, 1, Nights(late, early))
	assert.Equal(t, "250.5", Total(3, decimal.RequireFromString("83.5")).String())
}

func TestCheckInOccupiesRoom(t *testing.T) {
	f := newFixture(t)
	reservation, err := f.checkIn(t, "3-5", "2024-01-10", "2024-01-12", "100")
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationActive, reservation.Status)
	assert.Equal(t, 2, reservation.Nights)
	assert.True(t, reservation.Total.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "Ana Souza", reservation.GuestName)
	assert.Equal(t, "3-5", reservation.RoomNumber)

	room, err := f.rooms.Get(context.Background(), "3-5")
	require.NoError(t, err)
	assert.Equal(t, enums.RoomOccupied, room.Status)

	_, err = f.checkIn(t, "3-5", "2024-01-10", "2024-01-11", "100")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRoomUnavailable))
}

func TestCheckInBillingFloorAndValidation(t *testing.T) {
	f := newFixture(t)
	reservation, err := f.checkIn(t, "1-1", "2024-01-10", "2024-01-10", "80")
	require.NoError(t, err)
	assert.Equal(t, 1, reservation.Nights)
	assert.True(t, reservation.Total.Equal(decimal.NewFromInt(80)))

	_, err = f.checkIn(t, "1-2", "2024-01-10", "2024-01-11", "0")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	room, err := f.rooms.Get(context.Background(), "1-2")
	require.NoError(t, err)
	assert.Equal(t, enums.RoomFree, room.Status)
}

func TestCheckOutAndCancelFreeRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first, err := f.checkIn(t, "2-1", "2024-01-10", "2024-01-12", "100")
	require.NoError(t, err)
	second, err := f.checkIn(t, "2-2", "2024-01-10", "2024-01-12", "100")
	require.NoError(t, err)

	err = f.client.WithTx(ctx, func(tx *gorm.DB) error {
		room, err := f.rooms.Lock(ctx, tx, "2-1")
		if err != nil {
			return err
		}
		return f.svc.CheckOut(ctx, tx, first, room)
	})
	require.NoError(t, err)

	err = f.client.WithTx(ctx, func(tx *gorm.DB) error {
		room, err := f.rooms.Lock(ctx, tx, "2-2")
		if err != nil {
			return err
		}
		return f.svc.Cancel(ctx, tx, second, room, "   ")
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = f.client.WithTx(ctx, func(tx *gorm.DB) error {
		room, err := f.rooms.Lock(ctx, tx, "2-2")
		if err != nil {
			return err
		}
		return f.svc.Cancel(ctx, tx, second, room, "guest no-show")
	})
	require.NoError(t, err)

	for id, want := range map[uint]enums.ReservationStatus{first.ID: enums.ReservationFinalized, second.ID: enums.ReservationCancelled} {
		stored, err := f.svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, stored.Status)
	}
	stored, err := f.svc.Get(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Reason)
	assert.Equal(t, "guest no-show", *stored.Reason)

	for _, number := range []string{"2-1", "2-2"} {
		room, err := f.rooms.Get(ctx, number)
		require.NoError(t, err)
		assert.Equal(t, enums.RoomFree, room.Status)
	}

	err = f.client.WithTx(ctx, func(tx *gorm.DB) error {
		room, err := f.rooms.Lock(ctx, tx, "2-1")
		if err != nil {
			return err
		}
		return f.svc.CheckOut(ctx, tx, first, room)
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestRescheduleSupersedesReservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	original, err := f.checkIn(t, "1-3", "2024-01-10", "2024-01-12", "120")
	require.NoError(t, err)

	var next *models.Reservation
	err = f.client.WithTx(ctx, func(tx *gorm.DB) error {
		next, err = f.svc.Reschedule(ctx, tx, original, Stay{
			CheckInDate:  day("2024-01-10"),
			CheckOutDate: day("2024-01-15"),
		}, "extended stay")
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, next.PreviousReservationID)
	assert.Equal(t, original.ID, *next.PreviousReservationID)
	assert.Equal(t, 5, next.Nights)
	assert.True(t, next.Total.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, enums.ReservationActive, next.Status)

	old, err := f.svc.Get(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReservationRescheduled, old.Status)

	room, err := f.rooms.Get(ctx, "1-3")
	require.NoError(t, err)
	assert.Equal(t, enums.RoomOccupied, room.Status)

	active, err := f.svc.ListActive(ctx, nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, next.ID, active[0].ID)

	err = f.client.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := f.svc.Reschedule(ctx, tx, old, Stay{CheckInDate: day("2024-01-10"), CheckOutDate: day("2024-01-11")}, "again")
		return err
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestListByGuest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, room := range []string{"1-1", "1-2", "1-3"} {
		_, err := f.checkIn(t, room, "2024-03-01", "2024-03-02", "90")
		require.NoError(t, err)
	}

	page, err := f.svc.ListByGuest(ctx, f.guest.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Reservations, 2)
	assert.Equal(t, "1-3", page.Reservations[0].RoomNumber)
	require.NotEmpty(t, page.NextCursor)

	rest, err := f.svc.ListByGuest(ctx, f.guest.ID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Reservations, 1)
	assert.Equal(t, "1-1", rest.Reservations[0].RoomNumber)

	none, err := f.svc.ListByGuest(ctx, f.guest.ID+1, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, none.Reservations)
}
