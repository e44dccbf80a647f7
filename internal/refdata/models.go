// Package refdata holds the immutable lookup tables the delay predictor
// is configured with: train types, stations, platforms and delay classes.
package refdata

import (
	"errors"
	"fmt"
)

// Reference data errors.
var (
	ErrUnknownTrainType = errors.New("unknown train type")
	ErrInvalidData      = errors.New("invalid reference data")
)

// DelayClass is one of the three ordinal delay buckets the classifier
// distinguishes. Its integer value is the index into a probability vector.
type DelayClass int

const (
	OnTime DelayClass = iota
	Slight
	Major
)

// NumClasses is the number of delay classes.
const NumClasses = 3

// Classes lists every delay class in ordinal order.
var Classes = [NumClasses]DelayClass{OnTime, Slight, Major}

var classLabels = [NumClasses]string{
	"On-time (0–2 min)",
	"Slight delay (2–5 min)",
	"Major delay (5+ min)",
}

var classCodes = [NumClasses]string{"ON_TIME", "SLIGHT", "MAJOR"}

// representativeMinutes must increase strictly with the class ordinal.
var representativeMinutes = [NumClasses]float64{1.0, 3.5, 8.0}

// Valid reports whether c is one of the three known classes.
func (c DelayClass) Valid() bool {
	return c >= OnTime && c <= Major
}

// Label returns the human-readable label of the class.
func (c DelayClass) Label() string {
	if !c.Valid() {
		return ""
	}
	return classLabels[c]
}

// String returns the stable machine code of the class (ON_TIME, SLIGHT, MAJOR).
func (c DelayClass) String() string {
	if !c.Valid() {
		return fmt.Sprintf("DelayClass(%d)", int(c))
	}
	return classCodes[c]
}

// RepresentativeMinutes returns the typical delay of the class used for blending.
func (c DelayClass) RepresentativeMinutes() float64 {
	if !c.Valid() {
		return 0
	}
	return representativeMinutes[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c DelayClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid delay class %d", int(c))
	}
	return []byte(classCodes[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *DelayClass) UnmarshalText(text []byte) error {
	for i, code := range classCodes {
		if code == string(text) {
			*c = DelayClass(i)
			return nil
		}
	}
	return fmt.Errorf("unknown delay class %q", string(text))
}

// TrainType describes a train service type.
type TrainType struct {
	// Name is the unique service type name (e.g., "Intercity").
	Name string

	// Company is the operating company (e.g., "NS").
	Company string

	// Numbers are the valid train numbers. The first one is the default.
	Numbers []int
}

// DefaultNumber returns the first listed train number.
func (t TrainType) DefaultNumber() int {
	return t.Numbers[0]
}

// HasNumber reports whether n is a valid number for this type.
func (t TrainType) HasNumber(n int) bool {
	for _, v := range t.Numbers {
		if v == n {
			return true
		}
	}
	return false
}

// Station represents a train station.
type Station struct {
	// Code is the station code (e.g., "UT" for Utrecht Centraal).
	Code string

	// Name is the display name.
	Name string
}

// Platform is a platform identifier from a fixed set.
type Platform string
