package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatLapTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"full lap", 83*time.Second + 456*time.Millisecond, "1:23.456"},
		{"short gap", 3*time.Second + time.Millisecond, "0:03.001"},
		{"truncates sub-millisecond", 3*time.Second + 900*time.Microsecond, "0:03.000"},
		{"zero", 0, "0:00.000"},
		{"over ten minutes", 10*time.Minute + 5*time.Second + 7*time.Millisecond, "10:05.007"},
		{"negative", -(2*time.Second + 500*time.Millisecond), "-0:02.500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLapTime(tt.in))
		})
	}
}

func TestFormatLapTime_FromProviderSeconds(t *testing.T) {
	// float seconds straight from JSON must not lose a millisecond
	assert.Equal(t, "1:23.456", FormatLapTime(SecondsToDuration(83.456)))
	assert.Equal(t, "0:03.001", FormatLapTime(SecondsToDuration(3.001)))
	assert.Equal(t, "0:03.000", FormatLapTime(SecondsToDuration(3.0009)))
}

func TestToSectorTime(t *testing.T) {
	assert.Equal(t, "28.123", ToSectorTime(28123*time.Millisecond, true))
	assert.Equal(t, "-", ToSectorTime(28123*time.Millisecond, false))
	assert.Equal(t, "-", ToSectorTime(0, true))
}

func TestNormalizeDriverCode(t *testing.T) {
	assert.Equal(t, "VER", NormalizeDriverCode("  ver "))
	assert.Equal(t, "", NormalizeDriverCode("   "))
}

func TestGetDriverCodeName(t *testing.T) {
	assert.Equal(t, "VER", GetDriverCodeName("Max Verstappen"))
	assert.Equal(t, "HAM", GetDriverCodeName("Lewis Hamilton"))
	assert.Equal(t, "ZHO", GetDriverCodeName("Zhou"))
	assert.Equal(t, "", GetDriverCodeName(""))
}

func TestToID_Stable(t *testing.T) {
	assert.Equal(t, ToID("https://api.openf1.org/v1/laps"), ToID("https://api.openf1.org/v1/laps"))
	assert.NotEqual(t, ToID("a"), ToID("b"))
	assert.Len(t, ToID("https://api.openf1.org/v1/laps"), 64)
	assert.Regexp(t, "^[0-9a-f]+$", ToID("https://api.openf1.org/v1/laps?session_key=9158"))
}
