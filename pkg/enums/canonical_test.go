package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	cases := map[string]string{
		"Livre":           "livre",
		"Em Arrumação":    "em_arrumacao",
		"em arrumacao":    "em_arrumacao",
		"EM  LIMPEZA":     "em_limpeza",
		"InHousekeeping":  "in_housekeeping",
		"in_housekeeping": "in_housekeeping",
		"✅ Ativo":         "ativo",
		"Concluído":       "concluido",
		"  Saída ":        "saida",
	}
	for in, want := range cases {
		assert.Equal(t, want, Canonicalize(in), in)
	}
}

func TestParseRoomStatusAcceptsLegacySpellings(t *testing.T) {
	cases := map[string]RoomStatus{
		"Livre":         RoomFree,
		"Ocupado":       RoomOccupied,
		"Em Uso":        RoomOccupied,
		"Em Arrumação":  RoomInHousekeeping,
		"Em Limpeza":    RoomInCleaning,
		"Em Manutenção": RoomInMaintenance,
		"Bloqueado":     RoomBlocked,
		"reserved":      RoomReserved,
	}
	for in, want := range cases {
		got, err := ParseRoomStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRoomStatus("demolished")
	require.Error(t, err)
}

func TestRoomStatusFamilies(t *testing.T) {
	assert.Equal(t, FamilyFree, RoomFree.Family())
	assert.Equal(t, FamilyOccupancy, RoomReserved.Family())
	assert.Equal(t, FamilyOccupancy, RoomOccupied.Family())
	for _, s := range []RoomStatus{RoomInHousekeeping, RoomInCleaning, RoomInMaintenance, RoomBlocked} {
		assert.Equal(t, FamilyTask, s.Family(), s)
	}
	assert.Equal(t, RoomFamily(""), RoomStatus("bogus").Family())
}

func TestTaskTypeRoomStatus(t *testing.T) {
	assert.Equal(t, RoomInHousekeeping, TaskTidy.RoomStatus())
	assert.Equal(t, RoomInCleaning, TaskClean.RoomStatus())
	assert.Equal(t, RoomInMaintenance, TaskMaintenance.RoomStatus())
	assert.Equal(t, RoomBlocked, TaskBlock.RoomStatus())
}

func TestScanCanonicalizesStoredValues(t *testing.T) {
	var room RoomStatus
	require.NoError(t, room.Scan([]byte("Em Arrumação")))
	assert.Equal(t, RoomInHousekeeping, room)

	var res ReservationStatus
	require.NoError(t, res.Scan("Ativa"))
	assert.Equal(t, ReservationActive, res)

	var task TaskStatus
	require.NoError(t, task.Scan("Pendente"))
	assert.Equal(t, TaskPending, task)

	var item InventoryItemStatus
	require.NoError(t, item.Scan("✅ Ativo"))
	assert.Equal(t, ItemActive, item)

	var staff StaffStatus
	require.NoError(t, staff.Scan("Desligado"))
	assert.Equal(t, StaffInactive, staff)

	var kind StockMovementKind
	require.Error(t, kind.Scan(42))
}

func TestValueWritesCanonicalString(t *testing.T) {
	v, err := RoomOccupied.Value()
	require.NoError(t, err)
	assert.Equal(t, "occupied", v)
}
