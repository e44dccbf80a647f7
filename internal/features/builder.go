// Package features turns a user's trip selection into the fixed-shape
// record the delay classifier was trained on.
//
// Day-of-week convention: Monday = 0 … Sunday = 6. A record is a weekend
// record when the day is 5 or 6.
package features

import (
	"fmt"

	"github.com/raildelay/raildelay/internal/refdata"
)

// Placeholder values for columns the classifier expects but which are not
// known at prediction time.
const (
	DefaultServiceMaximumDelay = 0.0
	DefaultStopPlatformChange  = false
	DefaultStopOrder           = 3
	DefaultPrevStopDelay       = 0.0
)

// RawInput is a single trip selection.
type RawInput struct {
	TrainType   string
	TrainNumber int
	StationCode string
	Platform    string
	ArrivalDate Date
	ArrivalTime Clock
}

// Record is the classifier's input row. JSON names are the training columns.
type Record struct {
	TrainNumber         int     `json:"service_train_number"`
	ServiceMaximumDelay float64 `json:"service_maximum_delay"`
	ArrHour             int     `json:"arr_hour"`
	ArrDayOfWeek        int     `json:"arr_dayofweek"`
	ArrMonth            int     `json:"arr_month"`
	IsWeekend           int     `json:"is_weekend"`
	ServiceType         string  `json:"service_type"`
	ServiceCompany      string  `json:"service_company"`
	StopStationCode     string  `json:"stop_station_code"`
	StopPlatformChange  bool    `json:"stop_platform_change"`
	StopPlannedPlatform string  `json:"stop_planned_platform"`
	StopActualPlatform  string  `json:"stop_actual_platform"`
	StopOrder           int     `json:"stop_order"`
	PrevStopDelay       float64 `json:"prev_stop_delay"`
}

var columns = []string{
	"service_train_number",
	"service_maximum_delay",
	"arr_hour",
	"arr_dayofweek",
	"arr_month",
	"is_weekend",
	"service_type",
	"service_company",
	"stop_station_code",
	"stop_platform_change",
	"stop_planned_platform",
	"stop_actual_platform",
	"stop_order",
	"prev_stop_delay",
}

// Columns returns the column names in training order.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Values returns the record's values in Columns order.
func (r Record) Values() []any {
	return []any{
		r.TrainNumber,
		r.ServiceMaximumDelay,
		r.ArrHour,
		r.ArrDayOfWeek,
		r.ArrMonth,
		r.IsWeekend,
		r.ServiceType,
		r.ServiceCompany,
		r.StopStationCode,
		r.StopPlatformChange,
		r.StopPlannedPlatform,
		r.StopActualPlatform,
		r.StopOrder,
		r.PrevStopDelay,
	}
}

// ValidationError reports input that does not match the reference data.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Build derives the classifier record from a trip selection. It has no
// side effects: equal inputs give equal records.
func Build(in RawInput, ref *refdata.Data) (Record, error) {
	trainType, ok := ref.TrainType(in.TrainType)
	if !ok {
		return Record{}, &ValidationError{Field: "trainType", Value: in.TrainType, Reason: "unknown train type"}
	}
	if !trainType.HasNumber(in.TrainNumber) {
		return Record{}, &ValidationError{
			Field:  "trainNumber",
			Value:  fmt.Sprint(in.TrainNumber),
			Reason: fmt.Sprintf("not a %s train number", trainType.Name),
		}
	}
	if _, ok := ref.Station(in.StationCode); !ok {
		return Record{}, &ValidationError{Field: "stationCode", Value: in.StationCode, Reason: "unknown station"}
	}
	if !ref.HasPlatform(refdata.Platform(in.Platform)) {
		return Record{}, &ValidationError{Field: "platform", Value: in.Platform, Reason: "unknown platform"}
	}
	if !in.ArrivalDate.IsValid() {
		return Record{}, &ValidationError{Field: "arrivalDate", Value: in.ArrivalDate.String(), Reason: "not a calendar date"}
	}
	if !in.ArrivalTime.IsValid() {
		return Record{}, &ValidationError{Field: "arrivalTime", Value: in.ArrivalTime.String(), Reason: "not a time of day"}
	}

	arrival := combine(in.ArrivalDate, in.ArrivalTime)
	dayOfWeek := mondayBasedWeekday(arrival)

	isWeekend := 0
	if dayOfWeek >= 5 {
		isWeekend = 1
	}

	return Record{
		TrainNumber:         in.TrainNumber,
		ServiceMaximumDelay: DefaultServiceMaximumDelay,
		ArrHour:             arrival.Hour(),
		ArrDayOfWeek:        dayOfWeek,
		ArrMonth:            int(arrival.Month()),
		IsWeekend:           isWeekend,
		ServiceType:         trainType.Name,
		ServiceCompany:      trainType.Company,
		StopStationCode:     in.StationCode,
		StopPlatformChange:  DefaultStopPlatformChange,
		StopPlannedPlatform: in.Platform,
		StopActualPlatform:  in.Platform,
		StopOrder:           DefaultStopOrder,
		PrevStopDelay:       DefaultPrevStopDelay,
	}, nil
}
