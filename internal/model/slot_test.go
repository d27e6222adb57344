package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 int
		want           bool
	}{
		{"same interval", 540, 600, 540, 600, true},
		{"touching end", 540, 600, 600, 660, false},
		{"touching start", 600, 660, 540, 600, false},
		{"inside", 550, 560, 540, 600, true},
		{"contains", 500, 700, 540, 600, true},
		{"partial head", 510, 541, 540, 600, true},
		{"partial tail", 599, 620, 540, 600, true},
		{"disjoint", 0, 60, 540, 600, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1), "must be symmetric")
		})
	}
}

func TestMinutesSinceMidnight(t *testing.T) {
	m, err := MinutesSinceMidnight("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = MinutesSinceMidnight("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	_, err = MinutesSinceMidnight("24:00")
	assert.Error(t, err)

	_, err = MinutesSinceMidnight("nine")
	assert.Error(t, err)
}

func TestParseInstant(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)

	ts, err := ParseInstant("2025-01-10", "09:00", msk)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC), ts.UTC())

	ts, err = ParseInstant("2025-01-10", "09:00", nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())

	_, err = ParseInstant("10.01.2025", "09:00", time.UTC)
	assert.Error(t, err)
}

func TestSlotStatusHelpers(t *testing.T) {
	client := int64(7)
	slot := &Slot{Status: SlotStatusBooked, ClientID: &client}

	assert.True(t, slot.IsBooked())
	assert.False(t, slot.IsAvailable())
	assert.True(t, slot.HasClient(7))
	assert.False(t, slot.HasClient(8))

	free := &Slot{Status: SlotStatusAvailable}
	assert.True(t, free.IsAvailable())
	assert.False(t, free.HasClient(7))
}

func TestSlotClone(t *testing.T) {
	client := int64(7)
	reason := "sick"
	now := time.Now()
	slot := &Slot{ID: 1, ClientID: &client, BookedAt: &now, CancellationReason: &reason}

	c := slot.Clone()
	*c.ClientID = 8
	*c.CancellationReason = "other"
	*c.BookedAt = now.Add(time.Hour)

	assert.Equal(t, int64(7), *slot.ClientID)
	assert.Equal(t, "sick", *slot.CancellationReason)
	assert.Equal(t, now, *slot.BookedAt)
}

func TestOverlapsSlot(t *testing.T) {
	slot := &Slot{StartTime: "09:00", EndTime: "10:00"}

	overlaps, err := slot.OverlapsSlot(600, 660)
	require.NoError(t, err)
	assert.False(t, overlaps)

	overlaps, err = slot.OverlapsSlot(570, 630)
	require.NoError(t, err)
	assert.True(t, overlaps)

	broken := &Slot{StartTime: "9am", EndTime: "10:00"}
	_, err = broken.OverlapsSlot(0, 60)
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Anna Petrova", (&User{FirstName: "Anna", LastName: "Petrova"}).DisplayName())
	assert.Equal(t, "Anna", (&User{FirstName: "Anna"}).DisplayName())
	assert.Equal(t, "@anna", (&User{Username: "anna"}).DisplayName())
	assert.Equal(t, "", (&User{}).DisplayName())
}

func TestSessionRecordKey(t *testing.T) {
	a := &SessionRecord{ID: 1, TrainerID: 1, ClientID: 2, Date: "2025-01-10", StartTime: "09:00", EndTime: "10:00"}
	b := &SessionRecord{ID: 2, TrainerID: 1, ClientID: 2, Date: "2025-01-10", StartTime: "09:00", EndTime: "11:00"}

	assert.Equal(t, a.Key(), b.Key())
}
