package prediction

import (
	"errors"
	"fmt"
	"time"

	"github.com/raildelay/raildelay/internal/features"
)

// Defaults for fields a request may leave empty.
const (
	DefaultArrivalTime = "08:00"
	DefaultPlatform    = "5"
)

// ErrMalformedInput marks a request field that could not be parsed, as
// opposed to one that parsed but is absent from the reference data.
var ErrMalformedInput = errors.New("malformed input")

// TrainNumberDefaults looks up the preselected number of a train type.
// *Service satisfies it.
type TrainNumberDefaults interface {
	DefaultTrainNumber(trainType string) (int, error)
}

// Request is a trip selection in its submitted string form. TrainNumber,
// Platform, ArrivalDate and ArrivalTime are optional.
type Request struct {
	TrainType   string
	TrainNumber *int
	StationCode string
	Platform    string
	ArrivalDate string
	ArrivalTime string
}

// Resolve fills in defaults and parses the date and time. A missing date
// becomes the calendar date of now. Failures are *features.ValidationError;
// parse failures also match ErrMalformedInput.
func Resolve(req Request, numbers TrainNumberDefaults, now time.Time) (features.RawInput, error) {
	date := features.DateOf(now)
	if req.ArrivalDate != "" {
		parsed, err := features.ParseDate(req.ArrivalDate)
		if err != nil {
			return features.RawInput{}, malformed("arrivalDate", req.ArrivalDate, "expected YYYY-MM-DD")
		}
		date = parsed
	}

	arrivalTime := req.ArrivalTime
	if arrivalTime == "" {
		arrivalTime = DefaultArrivalTime
	}
	clock, err := features.ParseClock(arrivalTime)
	if err != nil {
		return features.RawInput{}, malformed("arrivalTime", arrivalTime, "expected HH:MM")
	}

	platform := req.Platform
	if platform == "" {
		platform = DefaultPlatform
	}

	var number int
	if req.TrainNumber != nil {
		number = *req.TrainNumber
	} else if number, err = numbers.DefaultTrainNumber(req.TrainType); err != nil {
		return features.RawInput{}, &features.ValidationError{Field: "trainType", Value: req.TrainType, Reason: "unknown train type"}
	}

	return features.RawInput{
		TrainType:   req.TrainType,
		TrainNumber: number,
		StationCode: req.StationCode,
		Platform:    platform,
		ArrivalDate: date,
		ArrivalTime: clock,
	}, nil
}

func malformed(field, value, reason string) error {
	return fmt.Errorf("%w: %w", ErrMalformedInput, &features.ValidationError{Field: field, Value: value, Reason: reason})
}
