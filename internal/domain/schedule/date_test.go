package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-05-20 ")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-20", d.String())
	assert.Equal(t, "May 20, 2025", d.Display())
	assert.Equal(t, time.Tuesday, d.Weekday())

	_, err = ParseDate("20/05/2025")
	assert.Error(t, err)
	_, err = ParseDate("2025-02-30")
	assert.Error(t, err)
}

func TestDate_Ordering(t *testing.T) {
	assert.True(t, MustParseDate("2024-12-31").Before(MustParseDate("2025-01-01")))
	assert.True(t, MustParseDate("2025-01-31").Before(MustParseDate("2025-02-01")))
	assert.False(t, may20.Before(may20))

	assert.True(t, may20.IsPast(may21))
	assert.False(t, may21.IsPast(may21))
	assert.Equal(t, MustParseDate("2025-06-01"), MustParseDate("2025-05-31").AddDays(1))
}

func TestDateOf_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	instant := time.Date(2025, 5, 20, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-05-20", DateOf(instant).String())
	assert.Equal(t, "2025-05-21", DateOf(instant.In(loc)).String())
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{D: may20})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2025-05-20"}`, string(b))

	var out struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2025-06-01"}`), &out))
	assert.Equal(t, jun01, out.D)
	assert.Error(t, json.Unmarshal([]byte(`{"d":"June 1"}`), &out))
}

func TestNormalizeTime(t *testing.T) {
	cases := map[string]string{
		"09:00 AM": "09:00 AM",
		"9:00 am":  "09:00 AM",
		"1:30 PM":  "01:30 PM",
		"12:00 PM": "12:00 PM",
		"14:30":    "02:30 PM",
		"00:15":    "12:15 AM",
		"9:05":     "09:05 AM",
	}
	for in, want := range cases {
		got, err := NormalizeTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "25:00", "noon", "9"} {
		_, err := NormalizeTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestTo24Hour(t *testing.T) {
	got, err := To24Hour("01:00 PM")
	require.NoError(t, err)
	assert.Equal(t, "13:00", got)

	got, err = To24Hour("12:00 AM")
	require.NoError(t, err)
	assert.Equal(t, "00:00", got)
}

func TestDate_At(t *testing.T) {
	kl := time.FixedZone("UTC+8", 8*60*60)

	start, err := MustParseDate("2025-05-20").At("01:30 PM", kl)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 20, 13, 30, 0, 0, kl), start)
	assert.Equal(t, "2025-05-20T05:30:00Z", start.UTC().Format(time.RFC3339))

	_, err = MustParseDate("2025-05-20").At("25:00", time.UTC)
	assert.Error(t, err)
}
