package countdown

import (
	"testing"
	"time"

	"wellbeing-waitlist/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boardNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestBoard_TickDecrementsAndTriggersOnce(t *testing.T) {
	b := NewBoard()
	b.Load([]models.Patient{patientAt(1, 95, boardNow.Add(-28*time.Second))}, boardNow)

	p, ok := b.Get(1)
	require.True(t, ok)
	assert.Equal(t, 2, p.RemainingTime)

	assert.Empty(t, b.Tick())
	expired := b.Tick()
	require.Len(t, expired, 1)
	assert.Equal(t, int64(1), expired[0].ID)

	// stays at zero, never re-triggered
	assert.Empty(t, b.Tick())
	p, _ = b.Get(1)
	assert.Equal(t, 0, p.RemainingTime)
	assert.True(t, p.Expired())
}

func TestBoard_InitialZeroTriggersOnFirstTick(t *testing.T) {
	b := NewBoard()
	b.Load([]models.Patient{patientAt(7, 20, boardNow.Add(-time.Hour))}, boardNow)

	expired := b.Tick()
	require.Len(t, expired, 1)
	assert.Equal(t, int64(7), expired[0].ID)
	assert.Empty(t, b.Tick())
}

func TestBoard_CuredRecordsAreFrozen(t *testing.T) {
	cured := patientAt(3, 95, boardNow.Add(-10*time.Second))
	cured.Cured = true

	b := NewBoard()
	b.Load([]models.Patient{cured}, boardNow)
	before, _ := b.Get(3)

	assert.Empty(t, b.Tick())
	after, _ := b.Get(3)
	assert.Equal(t, before.RemainingTime, after.RemainingTime)
}

func TestBoard_MarkCuredStopsCountdown(t *testing.T) {
	b := NewBoard()
	b.Load([]models.Patient{patientAt(1, 95, boardNow)}, boardNow)
	b.Tick()

	require.True(t, b.MarkCured(1))
	assert.False(t, b.MarkCured(99))

	b.Tick()
	p, _ := b.Get(1)
	assert.True(t, p.Cured)
	assert.Equal(t, 29, p.RemainingTime)
	assert.False(t, p.Expired())
}

func TestBoard_Remove(t *testing.T) {
	b := NewBoard()
	b.Load([]models.Patient{
		patientAt(1, 95, boardNow),
		patientAt(2, 50, boardNow),
		patientAt(3, 10, boardNow),
	}, boardNow)

	assert.True(t, b.Remove(2))
	assert.False(t, b.Remove(2))
	assert.Equal(t, 2, b.Len())

	_, ok := b.Get(2)
	assert.False(t, ok)

	ids := []int64{}
	for _, p := range b.Snapshot() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestBoard_LoadIsIdempotentAtFixedTime(t *testing.T) {
	records := []models.Patient{
		patientAt(1, 95, boardNow.Add(-5*time.Second)),
		patientAt(2, 60, boardNow.Add(-61*time.Second)),
	}

	b := NewBoard()
	b.Load(records, boardNow)
	first := b.Snapshot()
	b.Load(records, boardNow)

	assert.Equal(t, first, b.Snapshot())
}

func TestBoard_LoadSkipsDuplicateIDs(t *testing.T) {
	b := NewBoard()
	b.Load([]models.Patient{
		patientAt(1, 95, boardNow),
		patientAt(1, 10, boardNow),
	}, boardNow)

	require.Equal(t, 1, b.Len())
	p, _ := b.Get(1)
	assert.Equal(t, 95, p.EmergencyLevel)
}

func TestBoard_ReloadKeepsTotalTime(t *testing.T) {
	b := NewBoard()
	b.Load([]models.Patient{patientAt(1, 95, boardNow.Add(-40*time.Second))}, boardNow)
	require.Len(t, b.Tick(), 1)

	// the level was edited on the backend; the allotted time does not change
	edited := patientAt(1, 40, boardNow.Add(-10*time.Second))
	later := boardNow.Add(time.Second)
	b.Load([]models.Patient{edited}, later)

	p, ok := b.Get(1)
	require.True(t, ok)
	assert.Equal(t, 30, p.TotalTime)
	assert.Equal(t, 19, p.RemainingTime)
	assert.Equal(t, 40, p.EmergencyLevel)

	for i := 0; i < 18; i++ {
		assert.Empty(t, b.Tick())
	}
	expired := b.Tick()
	require.Len(t, expired, 1)
	assert.Equal(t, 0, expired[0].RemainingTime)
}

func TestBoard_ReloadRetriesUncuredExpiry(t *testing.T) {
	overdue := patientAt(1, 95, boardNow.Add(-time.Minute))

	b := NewBoard()
	b.Load([]models.Patient{overdue}, boardNow)
	require.Len(t, b.Tick(), 1)
	assert.Empty(t, b.Tick())

	// the cure never reached the backend; the refetch still reports it uncured
	b.Load([]models.Patient{overdue}, boardNow.Add(2*time.Second))
	expired := b.Tick()
	require.Len(t, expired, 1)
	assert.Equal(t, int64(1), expired[0].ID)
	assert.Empty(t, b.Tick())

	cured := overdue
	cured.Cured = true
	b.Load([]models.Patient{cured}, boardNow.Add(3*time.Second))
	assert.Empty(t, b.Tick())
}

func TestBoard_ReloadDropsMissingRecords(t *testing.T) {
	b := NewBoard()
	b.Load([]models.Patient{patientAt(1, 95, boardNow), patientAt(2, 95, boardNow)}, boardNow)
	b.Load([]models.Patient{patientAt(2, 95, boardNow)}, boardNow)

	assert.Equal(t, 1, b.Len())
	_, ok := b.Get(1)
	assert.False(t, ok)
}

func TestSortByPriority(t *testing.T) {
	patients := []models.TimedPatient{
		{Patient: models.Patient{ID: 1, EmergencyLevel: 90}, RemainingTime: 10},
		{Patient: models.Patient{ID: 2, EmergencyLevel: 90}, RemainingTime: 5},
		{Patient: models.Patient{ID: 3, EmergencyLevel: 50}, RemainingTime: 999},
	}
	SortByPriority(patients)

	ids := []int64{patients[0].ID, patients[1].ID, patients[2].ID}
	assert.Equal(t, []int64{2, 1, 3}, ids)
}

func TestSortByPriority_StableOnEqualKeys(t *testing.T) {
	patients := []models.TimedPatient{
		{Patient: models.Patient{ID: 4, EmergencyLevel: 70}, RemainingTime: 30},
		{Patient: models.Patient{ID: 8, EmergencyLevel: 70}, RemainingTime: 30},
		{Patient: models.Patient{ID: 6, EmergencyLevel: 70}, RemainingTime: 30},
	}
	SortByPriority(patients)

	assert.Equal(t, int64(4), patients[0].ID)
	assert.Equal(t, int64(8), patients[1].ID)
	assert.Equal(t, int64(6), patients[2].ID)
}
