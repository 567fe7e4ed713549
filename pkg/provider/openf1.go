package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"f1lapcompare/pkg/helper"
	"f1lapcompare/pkg/model"

	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "https://api.openf1.org/v1"
	dateLayout     = "2006-01-02T15:04:05.000"
	// car data is sampled at ~4Hz, pad the lap window so the first and last samples are kept
	telemetryPadding = 250 * time.Millisecond
)

type SessionNotFoundError struct {
	Year      int
	GrandPrix string
	Kind      model.SessionKind
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("no %s session found for %q in %d", e.Kind.Label(), e.GrandPrix, e.Year)
}

type DriverNotFoundError struct {
	Code string
}

func (e *DriverNotFoundError) Error() string {
	return fmt.Sprintf("driver %s did not take part in this session", e.Code)
}

// Getter returns the raw body of a GET request. resources.Cache implements it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// OpenF1 talks to the OpenF1 REST API.
type OpenF1 struct {
	baseURL string
	getter  Getter
}

func NewOpenF1(baseURL string, getter Getter) *OpenF1 {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenF1{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		getter:  getter,
	}
}

func (o *OpenF1) get(ctx context.Context, endpoint, rawQuery string, v any) error {
	u := fmt.Sprintf("%s/%s?%s", o.baseURL, endpoint, rawQuery)
	body, err := o.getter.Get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrapf(err, "decoding %s response", endpoint)
	}
	return nil
}

// Session finds the session of the given kind whose location, country or circuit matches
// grandPrix, ignoring case.
func (o *OpenF1) Session(ctx context.Context, year int, grandPrix string, kind model.SessionKind) (model.Session, error) {
	q := url.Values{}
	q.Set("year", fmt.Sprint(year))
	q.Set("session_name", kind.Label())

	var sessions []sessionDTO
	if err := o.get(ctx, "sessions", q.Encode(), &sessions); err != nil {
		return model.Session{}, err
	}

	wanted := strings.ToLower(strings.TrimSpace(grandPrix))
	for _, s := range sessions {
		if !matchesGrandPrix(s, wanted) {
			continue
		}
		name := s.Location
		if name == "" {
			name = s.CountryName
		}
		return model.Session{
			Key:       s.SessionKey,
			Year:      s.Year,
			GrandPrix: name,
			Location:  s.CircuitShortName,
			Kind:      kind,
			Name:      s.SessionName,
			StartsAt:  s.DateStart,
		}, nil
	}
	return model.Session{}, &SessionNotFoundError{Year: year, GrandPrix: grandPrix, Kind: kind}
}

func matchesGrandPrix(s sessionDTO, wanted string) bool {
	if wanted == "" {
		return false
	}
	for _, candidate := range []string{s.Location, s.CountryName, s.CircuitShortName} {
		c := strings.ToLower(candidate)
		if c == "" {
			continue
		}
		if c == wanted || strings.Contains(c, wanted) || strings.Contains(wanted, c) {
			return true
		}
	}
	return false
}

func (o *OpenF1) Driver(ctx context.Context, session model.Session, code string) (model.Driver, error) {
	q := url.Values{}
	q.Set("session_key", fmt.Sprint(session.Key))

	var drivers []driverDTO
	if err := o.get(ctx, "drivers", q.Encode(), &drivers); err != nil {
		return model.Driver{}, err
	}

	code = helper.NormalizeDriverCode(code)
	for _, d := range drivers {
		acronym := d.NameAcronym
		if acronym == "" {
			acronym = helper.GetDriverCodeName(d.FullName)
		}
		if strings.EqualFold(acronym, code) {
			return model.Driver{
				Number:    d.DriverNumber,
				Code:      strings.ToUpper(acronym),
				FullName:  d.FullName,
				Team:      d.TeamName,
				TeamColor: strings.TrimPrefix(d.TeamColour, "#"),
			}, nil
		}
	}
	return model.Driver{}, &DriverNotFoundError{Code: code}
}

func (o *OpenF1) Laps(ctx context.Context, session model.Session, driver model.Driver) ([]model.Lap, error) {
	q := url.Values{}
	q.Set("session_key", fmt.Sprint(session.Key))
	q.Set("driver_number", fmt.Sprint(driver.Number))

	var dtos []lapDTO
	if err := o.get(ctx, "laps", q.Encode(), &dtos); err != nil {
		return nil, err
	}

	laps := make([]model.Lap, 0, len(dtos))
	for _, d := range dtos {
		lap := model.Lap{
			Driver:    driver.Code,
			Number:    d.LapNumber,
			Team:      driver.Team,
			LapTime:   nullSeconds(d.LapDuration),
			PitOutLap: d.IsPitOutLap,
			Sectors: [3]model.NullDuration{
				nullSeconds(d.DurationSector1),
				nullSeconds(d.DurationSector2),
				nullSeconds(d.DurationSector3),
			},
		}
		if d.DateStart != nil {
			lap.StartedAt = *d.DateStart
		} else {
			// without a start date the car data cannot be windowed
			lap.LapTime = model.NullDuration{}
		}
		laps = append(laps, lap)
	}
	sort.SliceStable(laps, func(i, j int) bool {
		return laps[i].Number < laps[j].Number
	})
	return laps, nil
}

func nullSeconds(v *float64) model.NullDuration {
	if v == nil || *v <= 0 {
		return model.NullDuration{}
	}
	return model.NewNullDuration(helper.SecondsToDuration(*v))
}

// Telemetry returns the car data samples recorded during the lap, with the distance driven
// since the first sample.
func (o *OpenF1) Telemetry(ctx context.Context, session model.Session, driver model.Driver, lap model.Lap) ([]model.TelemetrySample, error) {
	if lap.StartedAt.IsZero() || !lap.LapTime.Valid {
		return nil, nil
	}
	start := lap.StartedAt.UTC().Add(-telemetryPadding)
	end := lap.StartedAt.UTC().Add(lap.LapTime.Duration + telemetryPadding)

	// OpenF1 filters use comparison operators in the key, url.Values would escape them
	rawQuery := fmt.Sprintf("session_key=%d&driver_number=%d&date>=%s&date<=%s",
		session.Key, driver.Number,
		url.QueryEscape(start.Format(dateLayout)), url.QueryEscape(end.Format(dateLayout)))

	var dtos []carDataDTO
	if err := o.get(ctx, "car_data", rawQuery, &dtos); err != nil {
		return nil, err
	}

	sort.SliceStable(dtos, func(i, j int) bool {
		return dtos[i].Date.Before(dtos[j].Date)
	})

	samples := make([]model.TelemetrySample, 0, len(dtos))
	for _, d := range dtos {
		if d.Date.Before(lap.StartedAt) || d.Date.After(lap.StartedAt.Add(lap.LapTime.Duration)) {
			continue
		}
		samples = append(samples, model.TelemetrySample{
			Time:  d.Date,
			Speed: d.Speed,
		})
	}
	AddDistance(samples)
	return samples, nil
}
