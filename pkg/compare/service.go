package compare

import (
	"context"
	"errors"

	"f1lapcompare/pkg/model"

	pkgerrors "github.com/pkg/errors"
)

// Provider is the remote session/telemetry source.
type Provider interface {
	Session(ctx context.Context, year int, grandPrix string, kind model.SessionKind) (model.Session, error)
	Driver(ctx context.Context, session model.Session, code string) (model.Driver, error)
	Laps(ctx context.Context, session model.Session, driver model.Driver) ([]model.Lap, error)
	Telemetry(ctx context.Context, session model.Session, driver model.Driver, lap model.Lap) ([]model.TelemetrySample, error)
}

type Service struct {
	provider Provider
}

func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Run fetches both drivers' laps, picks each fastest lap, loads its telemetry and builds the
// comparison. Nothing is kept between calls.
func (s *Service) Run(ctx context.Context, req model.Request) (model.Comparison, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return model.Comparison{}, err
	}

	session, err := s.provider.Session(ctx, req.Year, req.GrandPrix, req.Session)
	if err != nil {
		return model.Comparison{}, pkgerrors.Wrap(err, "loading session")
	}

	driver1, lap1, err := s.fastestLapWithTelemetry(ctx, session, req.Driver1)
	if err != nil {
		return model.Comparison{}, err
	}
	driver2, lap2, err := s.fastestLapWithTelemetry(ctx, session, req.Driver2)
	if err != nil {
		return model.Comparison{}, err
	}

	return Build(req, driver1, lap1, driver2, lap2)
}

func (s *Service) fastestLapWithTelemetry(ctx context.Context, session model.Session, code string) (model.Driver, model.Lap, error) {
	driver, err := s.provider.Driver(ctx, session, code)
	if err != nil {
		return model.Driver{}, model.Lap{}, pkgerrors.Wrapf(err, "loading driver %s", code)
	}

	laps, err := s.provider.Laps(ctx, session, driver)
	if err != nil {
		return model.Driver{}, model.Lap{}, pkgerrors.Wrapf(err, "loading laps for %s", code)
	}

	lap, err := FastestLap(laps)
	if err != nil {
		var noLaps *NoLapsError
		if errors.As(err, &noLaps) {
			noLaps.Driver = driver.Code
		}
		return model.Driver{}, model.Lap{}, err
	}

	samples, err := s.provider.Telemetry(ctx, session, driver, lap)
	if err != nil {
		return model.Driver{}, model.Lap{}, pkgerrors.Wrapf(err, "loading telemetry for %s lap %d", code, lap.Number)
	}
	lap.Telemetry = samples
	if lap.Team == "" {
		lap.Team = driver.Team
	}
	return driver, lap, nil
}

// IsKernelError reports whether err is one of the comparison errors (no laps, missing
// sectors, empty telemetry) as opposed to a provider or validation failure.
func IsKernelError(err error) bool {
	var noLaps *NoLapsError
	var missing *MissingSectorDataError
	var empty *EmptyTelemetryError
	return errors.As(err, &noLaps) || errors.As(err, &missing) || errors.As(err, &empty)
}
