package staff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/hotelops-backend/pkg/db/dbtest"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/pagination"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	return svc
}

func TestRegisterAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	member, err := svc.Register(ctx, RegisterInput{Name: "  Maria Silva ", Role: "Camareira"})
	require.NoError(t, err)
	assert.NotZero(t, member.ID)
	assert.Equal(t, "Maria Silva", member.Name)
	assert.Equal(t, enums.StaffActive, member.Status)

	loaded, err := svc.Get(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camareira", loaded.Role)

	_, err = svc.Get(ctx, member.ID+10)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	cases := map[string]RegisterInput{
		"missing name": {Role: "Manutenção"},
		"missing role": {Name: "João"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, input)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestAssignableRequiresActiveMember(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	member, err := svc.Register(ctx, RegisterInput{Name: "João", Role: "Manutenção"})
	require.NoError(t, err)

	got, err := svc.Assignable(ctx, nil, member.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, got.ID)

	updated, err := svc.SetStatus(ctx, member.ID, enums.StaffInactive)
	require.NoError(t, err)
	assert.Equal(t, enums.StaffInactive, updated.Status)

	_, err = svc.Assignable(ctx, nil, member.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Assignable(ctx, nil, member.ID+5)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Assignable(ctx, nil, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSetStatusRejectsUnknownMemberAndStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.SetStatus(ctx, 99, enums.StaffInactive)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.SetStatus(ctx, 1, enums.StaffStatus("retired"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	var ids []uint
	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		member, err := svc.Register(ctx, RegisterInput{Name: name, Role: "Camareira"})
		require.NoError(t, err)
		ids = append(ids, member.ID)
	}
	_, err := svc.SetStatus(ctx, ids[1], enums.StaffInactive)
	require.NoError(t, err)

	active, err := svc.List(ctx, enums.StaffActive, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, active.Staff, 2)
	assert.Equal(t, "Carla", active.Staff[0].Name)

	page, err := svc.List(ctx, "", pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Staff, 2)
	assert.NotEmpty(t, page.NextCursor)

	_, err = svc.List(ctx, enums.StaffStatus("bogus"), pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
