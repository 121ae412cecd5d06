package attendance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusPresent, StatusAbsent, StatusLate, StatusEarlyLeave, StatusOut, StatusReturned, StatusLeft} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("gone").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatus_Departed(t *testing.T) {
	assert.True(t, StatusLeft.Departed())
	assert.True(t, StatusEarlyLeave.Departed())
	assert.False(t, StatusOut.Departed())
	assert.False(t, StatusPresent.Departed())
}

func TestValidClock(t *testing.T) {
	assert.True(t, ValidClock("00:00"))
	assert.True(t, ValidClock("09:30"))
	assert.True(t, ValidClock("23:59"))
	assert.False(t, ValidClock("24:00"))
	assert.False(t, ValidClock("9:30"))
	assert.False(t, ValidClock("12:60"))
	assert.False(t, ValidClock("12:3"))
	assert.False(t, ValidClock(""))
}

func TestUpdate_Validate(t *testing.T) {
	assert.NoError(t, Update{Status: StatusPresent, CheckIn: strPtr("09:00")}.Validate())
	assert.Error(t, Update{Status: Status("bogus")}.Validate())
	assert.Error(t, Update{Status: StatusPresent, CheckIn: strPtr("25:00")}.Validate())
	assert.Error(t, Update{Status: StatusLeft, CheckOut: strPtr("18-00")}.Validate())
}

func TestRecord_ApplyPreservesTimestamps(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rec, err := NewRecord(uuid.New(), uuid.New(), nil, day, StatusPresent)
	require.NoError(t, err)

	rec.Apply(Update{Status: StatusPresent, CheckIn: strPtr("09:05")})
	require.NotNil(t, rec.CheckIn)
	assert.Equal(t, "09:05", *rec.CheckIn)

	// a later status change with no timestamps keeps the check-in
	rec.Apply(Update{Status: StatusOut})
	assert.Equal(t, StatusOut, rec.Status)
	require.NotNil(t, rec.CheckIn)
	assert.Equal(t, "09:05", *rec.CheckIn)
	assert.Nil(t, rec.CheckOut)

	rec.Apply(Update{Status: StatusLeft, CheckOut: strPtr("17:40")})
	assert.Equal(t, StatusLeft, rec.Status)
	assert.Equal(t, "09:05", *rec.CheckIn)
	assert.Equal(t, "17:40", *rec.CheckOut)
}

func TestRecord_ApplyOverwritesWithNonNil(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rec, err := NewRecord(uuid.New(), uuid.New(), nil, day, StatusLate)
	require.NoError(t, err)
	rec.CheckIn = strPtr("10:15")

	rec.Apply(Update{Status: StatusLate, CheckIn: strPtr("10:20"), Memo: strPtr("corrected")})
	assert.Equal(t, "10:20", *rec.CheckIn)
	assert.Equal(t, "corrected", rec.Memo)
}

func TestNewRecord_RejectsUnknownStatus(t *testing.T) {
	_, err := NewRecord(uuid.New(), uuid.New(), nil, time.Now(), Status("nope"))
	assert.Error(t, err)
}

func TestNewRecord_RequiresTenant(t *testing.T) {
	_, err := NewRecord(uuid.Nil, uuid.New(), nil, time.Now(), StatusPresent)
	assert.Error(t, err)
}
