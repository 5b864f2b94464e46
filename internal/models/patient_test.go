package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatient_UnmarshalBackendPayload(t *testing.T) {
	raw := `{"id":7,"name":"Ana","age":34,"gender":"Female","problem":"chest pain",
		"emergencyLevel":80,"arrivalTime":"2024-03-01T10:15:30.123456","cured":false}`

	var p Patient
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, 80, p.EmergencyLevel)
	assert.False(t, p.Cured)

	want := time.Date(2024, 3, 1, 10, 15, 30, 123456000, time.Local)
	assert.True(t, want.Equal(p.ArrivalTime.Time), "got %s", p.ArrivalTime.Time)
}

func TestParseArrivalTime_Layouts(t *testing.T) {
	zoned, err := ParseArrivalTime("2024-03-01T10:15:30Z")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, zoned.Location())

	plain, err := ParseArrivalTime("2024-03-01T10:15:30")
	require.NoError(t, err)
	assert.Equal(t, 10, plain.Hour())

	_, err = ParseArrivalTime("yesterday")
	assert.Error(t, err)
}

func TestArrivalTime_NullAndEmpty(t *testing.T) {
	var p Patient
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"arrivalTime":null}`), &p))
	assert.True(t, p.ArrivalTime.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"arrivalTime":""}`), &p))
	assert.True(t, p.ArrivalTime.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"id":1,"arrivalTime":12}`), &p))
}

func TestTimedPatient_Expired(t *testing.T) {
	p := TimedPatient{TotalTime: 30, RemainingTime: 0}
	assert.True(t, p.Expired())

	p.Cured = true
	assert.False(t, p.Expired())

	p = TimedPatient{TotalTime: 30, RemainingTime: 1}
	assert.False(t, p.Expired())
}
