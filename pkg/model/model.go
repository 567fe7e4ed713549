package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinYear = 2018
)

var (
	ErrInvalidYear    = errors.New("year out of range")
	ErrEmptyGrandPrix = errors.New("grand prix cannot be empty")
	ErrEmptyDriver    = errors.New("driver code cannot be empty")
	ErrInvalidSession = errors.New("unknown session type")
)

// NullDuration is a duration that may be missing, e.g. a lap that was not timed.
type NullDuration struct {
	Duration time.Duration
	Valid    bool
}

func NewNullDuration(d time.Duration) NullDuration {
	return NullDuration{Duration: d, Valid: true}
}

type SessionKind string

const (
	Practice1  SessionKind = "FP1"
	Practice2  SessionKind = "FP2"
	Practice3  SessionKind = "FP3"
	Qualifying SessionKind = "Q"
	Race       SessionKind = "R"
)

var sessionLabels = map[SessionKind]string{
	Practice1:  "Practice 1",
	Practice2:  "Practice 2",
	Practice3:  "Practice 3",
	Qualifying: "Qualifying",
	Race:       "Race",
}

// SessionKinds lists the supported kinds in weekend order.
func SessionKinds() []SessionKind {
	return []SessionKind{Practice1, Practice2, Practice3, Qualifying, Race}
}

// Label returns the human (and provider) name of the session, e.g. "Practice 1".
func (k SessionKind) Label() string {
	return sessionLabels[k]
}

func (k SessionKind) Valid() bool {
	_, ok := sessionLabels[k]
	return ok
}

// ParseSessionKind accepts both codes ("FP1", "q") and labels ("Practice 1", "race").
func ParseSessionKind(s string) (SessionKind, error) {
	s = strings.TrimSpace(s)
	for _, k := range SessionKinds() {
		if strings.EqualFold(s, string(k)) || strings.EqualFold(s, k.Label()) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSession, s)
}

type Session struct {
	Key       int
	Year      int
	GrandPrix string
	Location  string
	Kind      SessionKind
	Name      string
	StartsAt  time.Time
}

type Driver struct {
	Number    int
	Code      string
	FullName  string
	Team      string
	TeamColor string // hex without '#', as sent by the provider; may be empty
}

type Lap struct {
	Driver    string
	Number    int
	Team      string
	LapTime   NullDuration
	Sectors   [3]NullDuration
	StartedAt time.Time
	PitOutLap bool
	Telemetry []TelemetrySample
}

// Valid reports whether the lap has a lap time. Untimed laps never count as fastest.
func (l Lap) Valid() bool {
	return l.LapTime.Valid
}

type TelemetrySample struct {
	Time     time.Time
	Distance float64 // meters since lap start
	Speed    float64 // km/h
}

type SectorBoundary struct {
	Sector     int     `json:"sector"`
	DistanceKm float64 `json:"distanceKm"`
}

type TracePoint struct {
	DistanceKm     float64 `json:"distanceKm"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	Speed          float64 `json:"speed"`
}

type Trace struct {
	Driver Driver       `json:"driver"`
	Points []TracePoint `json:"points"`
}

// MaxDistanceKm is the distance of the last point of the trace.
func (t Trace) MaxDistanceKm() float64 {
	if len(t.Points) == 0 {
		return 0
	}
	return t.Points[len(t.Points)-1].DistanceKm
}

func (t Trace) MaxSpeed() float64 {
	max := 0.0
	for _, p := range t.Points {
		if p.Speed > max {
			max = p.Speed
		}
	}
	return max
}

type Delta struct {
	Slower string        `json:"slower"`
	Gap    time.Duration `json:"gap"`
}

// DefaultRequest is the comparison offered before the user picks anything.
func DefaultRequest() Request {
	return Request{
		Year:      2024,
		GrandPrix: "Monza",
		Session:   Race,
		Driver1:   "VER",
		Driver2:   "HAM",
	}
}

type Request struct {
	Year      int         `json:"year"`
	GrandPrix string      `json:"grandPrix"`
	Session   SessionKind `json:"session"`
	Driver1   string      `json:"driver1"`
	Driver2   string      `json:"driver2"`
}

func (r Request) Normalize() Request {
	r.GrandPrix = strings.TrimSpace(r.GrandPrix)
	r.Driver1 = strings.ToUpper(strings.TrimSpace(r.Driver1))
	r.Driver2 = strings.ToUpper(strings.TrimSpace(r.Driver2))
	return r
}

func (r Request) Validate() error {
	if r.Year < MinYear || r.Year > time.Now().Year() {
		return fmt.Errorf("%w: %d", ErrInvalidYear, r.Year)
	}
	if r.GrandPrix == "" {
		return ErrEmptyGrandPrix
	}
	if !r.Session.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSession, r.Session)
	}
	if r.Driver1 == "" || r.Driver2 == "" {
		return ErrEmptyDriver
	}
	return nil
}

// Title is the chart title, e.g. "Fastest Lap Comparison — 2024 Monza Race".
func (r Request) Title() string {
	return fmt.Sprintf("Fastest Lap Comparison — %d %s %s", r.Year, r.GrandPrix, r.Session.Label())
}

type Comparison struct {
	Request   Request          `json:"request"`
	Laps      [2]Lap           `json:"-"`
	Traces    [2]Trace         `json:"traces"`
	LapTimes  [2]string        `json:"lapTimes"`
	Delta     Delta            `json:"delta"`
	DeltaText string           `json:"deltaText"`
	Sectors   []SectorBoundary `json:"sectors"`
}
