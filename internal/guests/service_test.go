package guests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/hotelops-backend/pkg/db/dbtest"
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

	birth := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	guest, err := svc.Register(ctx, RegisterInput{
		Name:      "  Ana Souza ",
		Document:  "123.456.789-00",
		Phone:     "+55 11 99999-0000",
		Plate:     "abc1d23",
		BirthDate: &birth,
	})
	require.NoError(t, err)
	assert.NotZero(t, guest.ID)
	assert.Equal(t, "Ana Souza", guest.Name)
	assert.Equal(t, "12345678900", guest.Document)
	assert.Equal(t, "ABC1D23", guest.Plate)

	loaded, err := svc.Get(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, guest.Document, loaded.Document)

	_, err = svc.Get(ctx, guest.ID+100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	future := time.Now().Add(48 * time.Hour)

	cases := map[string]RegisterInput{
		"missing name":     {Document: "X1"},
		"missing document": {Name: "Ana"},
		"future birth":     {Name: "Ana", Document: "X1", BirthDate: &future},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, input)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestRegisterDuplicateDocumentConflicts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Register(ctx, RegisterInput{Name: "Ana", Document: "AB123456"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "Ana S.", Document: "ab 123456"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	for _, doc := range []string{"D1", "D2", "D3"} {
		_, err := svc.Register(ctx, RegisterInput{Name: "Guest " + doc, Document: doc})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, "", pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Guests, 2)
	assert.Equal(t, "D3", first.Guests[0].Document)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(ctx, "", pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Guests, 1)
	assert.Equal(t, "D1", second.Guests[0].Document)
	assert.Empty(t, second.NextCursor)

	filtered, err := svc.List(ctx, "guest d2", pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Guests, 1)

	_, err = svc.List(ctx, "", pagination.Params{Cursor: "not-a-cursor"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
