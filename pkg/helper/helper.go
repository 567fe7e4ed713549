package helper

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatLapTime renders a duration as M:SS.mmm. Milliseconds are truncated, never rounded,
// so 3.0009s renders as 0:03.000.
func FormatLapTime(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	totalMs := d.Milliseconds()
	minutes := totalMs / 60000
	seconds := (totalMs % 60000) / 1000
	milliseconds := totalMs % 1000
	return fmt.Sprintf("%s%d:%02d.%03d", sign, minutes, seconds, milliseconds)
}

// method to convert to seconds and 3 milliseconds
func ToSectorTime(d time.Duration, valid bool) string {
	if !valid || d <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f", d.Seconds())
}

// SecondsToDuration converts provider float seconds into a duration rounded to the
// nanosecond, so 83.456 does not become 83.455999999s.
func SecondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// NormalizeDriverCode upper-cases and trims a driver code such as " ver ".
func NormalizeDriverCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetDriverCodeName guesses the three letter code of a driver from the full name.
func GetDriverCodeName(name string) string {
	if name == "" {
		return ""
	}
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	if len(words) > 1 {
		// F1 codes come from the surname: Max Verstappen -> VER
		surname := words[len(words)-1]
		if len(surname) >= 3 {
			return strings.ToUpper(surname[:3])
		}
		return strings.ToUpper(string(words[0][0]) + surname)
	}
	if len(words[0]) > 3 {
		return strings.ToUpper(words[0][:3])
	}
	return strings.ToUpper(words[0])
}

// convert name to a hash usable as a file name
func ToID(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}
