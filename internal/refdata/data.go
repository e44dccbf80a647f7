package refdata

import (
	"fmt"
	"slices"
)

// Data is a validated, read-only set of reference tables. It is safe for
// concurrent use because nothing mutates it after New returns.
type Data struct {
	trainTypes []TrainType
	byName     map[string]int
	stations   []Station
	byCode     map[string]int
	platforms  []Platform
	platformOK map[Platform]struct{}
}

// New validates the given tables and returns an immutable Data.
// The input slices are copied.
func New(trainTypes []TrainType, stations []Station, platforms []Platform) (*Data, error) {
	d := &Data{
		trainTypes: make([]TrainType, 0, len(trainTypes)),
		byName:     make(map[string]int, len(trainTypes)),
		stations:   make([]Station, 0, len(stations)),
		byCode:     make(map[string]int, len(stations)),
		platforms:  slices.Clone(platforms),
		platformOK: make(map[Platform]struct{}, len(platforms)),
	}

	if len(trainTypes) == 0 {
		return nil, fmt.Errorf("%w: no train types", ErrInvalidData)
	}
	for _, t := range trainTypes {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: train type with empty name", ErrInvalidData)
		}
		if _, dup := d.byName[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate train type %q", ErrInvalidData, t.Name)
		}
		if len(t.Numbers) == 0 {
			return nil, fmt.Errorf("%w: train type %q has no train numbers", ErrInvalidData, t.Name)
		}
		seen := make(map[int]struct{}, len(t.Numbers))
		for _, n := range t.Numbers {
			if n <= 0 {
				return nil, fmt.Errorf("%w: train type %q has non-positive number %d", ErrInvalidData, t.Name, n)
			}
			if _, dup := seen[n]; dup {
				return nil, fmt.Errorf("%w: train type %q lists number %d twice", ErrInvalidData, t.Name, n)
			}
			seen[n] = struct{}{}
		}
		d.byName[t.Name] = len(d.trainTypes)
		d.trainTypes = append(d.trainTypes, TrainType{
			Name:    t.Name,
			Company: t.Company,
			Numbers: slices.Clone(t.Numbers),
		})
	}

	if len(stations) == 0 {
		return nil, fmt.Errorf("%w: no stations", ErrInvalidData)
	}
	for _, s := range stations {
		if s.Code == "" {
			return nil, fmt.Errorf("%w: station with empty code", ErrInvalidData)
		}
		if _, dup := d.byCode[s.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate station code %q", ErrInvalidData, s.Code)
		}
		d.byCode[s.Code] = len(d.stations)
		d.stations = append(d.stations, s)
	}

	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: no platforms", ErrInvalidData)
	}
	for _, p := range platforms {
		if p == "" {
			return nil, fmt.Errorf("%w: empty platform identifier", ErrInvalidData)
		}
		if _, dup := d.platformOK[p]; dup {
			return nil, fmt.Errorf("%w: duplicate platform %q", ErrInvalidData, p)
		}
		d.platformOK[p] = struct{}{}
	}

	return d, nil
}

// TrainType looks up a train type by name.
func (d *Data) TrainType(name string) (TrainType, bool) {
	i, ok := d.byName[name]
	if !ok {
		return TrainType{}, false
	}
	t := d.trainTypes[i]
	t.Numbers = slices.Clone(t.Numbers)
	return t, true
}

// DefaultTrainNumber returns the number a train-number selector resets to
// when the given train type is chosen.
func (d *Data) DefaultTrainNumber(name string) (int, error) {
	i, ok := d.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTrainType, name)
	}
	return d.trainTypes[i].DefaultNumber(), nil
}

// ValidTrainNumber reports whether number belongs to the named train type.
func (d *Data) ValidTrainNumber(name string, number int) bool {
	i, ok := d.byName[name]
	if !ok {
		return false
	}
	return d.trainTypes[i].HasNumber(number)
}

// Station looks up a station by code.
func (d *Data) Station(code string) (Station, bool) {
	i, ok := d.byCode[code]
	if !ok {
		return Station{}, false
	}
	return d.stations[i], true
}

// HasPlatform reports whether p is in the platform enumeration.
func (d *Data) HasPlatform(p Platform) bool {
	_, ok := d.platformOK[p]
	return ok
}

// TrainTypes returns all train types in configuration order.
func (d *Data) TrainTypes() []TrainType {
	out := make([]TrainType, len(d.trainTypes))
	for i, t := range d.trainTypes {
		t.Numbers = slices.Clone(t.Numbers)
		out[i] = t
	}
	return out
}

// Stations returns all stations in configuration order.
func (d *Data) Stations() []Station {
	return slices.Clone(d.stations)
}

// Platforms returns the platform enumeration in configuration order.
func (d *Data) Platforms() []Platform {
	return slices.Clone(d.platforms)
}
