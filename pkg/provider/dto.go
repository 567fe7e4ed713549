package provider

import "time"

// Wire types of the OpenF1 API. Nullable numbers are pointers.

type sessionDTO struct {
	SessionKey       int       `json:"session_key"`
	SessionName      string    `json:"session_name"`
	SessionType      string    `json:"session_type"`
	Location         string    `json:"location"`
	CountryName      string    `json:"country_name"`
	CircuitShortName string    `json:"circuit_short_name"`
	MeetingKey       int       `json:"meeting_key"`
	Year             int       `json:"year"`
	DateStart        time.Time `json:"date_start"`
}

type driverDTO struct {
	DriverNumber int    `json:"driver_number"`
	NameAcronym  string `json:"name_acronym"`
	FullName     string `json:"full_name"`
	TeamName     string `json:"team_name"`
	TeamColour   string `json:"team_colour"`
}

type lapDTO struct {
	DriverNumber    int        `json:"driver_number"`
	LapNumber       int        `json:"lap_number"`
	LapDuration     *float64   `json:"lap_duration"`
	DurationSector1 *float64   `json:"duration_sector_1"`
	DurationSector2 *float64   `json:"duration_sector_2"`
	DurationSector3 *float64   `json:"duration_sector_3"`
	DateStart       *time.Time `json:"date_start"`
	IsPitOutLap     bool       `json:"is_pit_out_lap"`
}

type carDataDTO struct {
	Date     time.Time `json:"date"`
	Speed    float64   `json:"speed"`
	RPM      int       `json:"rpm"`
	NGear    int       `json:"n_gear"`
	Throttle int       `json:"throttle"`
	Brake    int       `json:"brake"`
	DRS      int       `json:"drs"`
}
