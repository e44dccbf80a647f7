package refdata

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML layout of a reference data file.
type FileConfig struct {
	TrainTypes []TrainTypeConfig `yaml:"trainTypes" validate:"required,min=1,dive"`
	Stations   []StationConfig   `yaml:"stations" validate:"required,min=1,dive"`
	Platforms  []string          `yaml:"platforms" validate:"required,min=1,dive,required"`
}

// TrainTypeConfig is one train type entry of a reference data file.
type TrainTypeConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Company string `yaml:"company" validate:"required"`
	Numbers []int  `yaml:"numbers" validate:"required,min=1,dive,gt=0"`
}

// StationConfig is one station entry of a reference data file.
type StationConfig struct {
	Code string `yaml:"code" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

// LoadFile reads, validates and freezes a YAML reference data file.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference data: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML reference data.
func Parse(raw []byte) (*Data, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decoding reference data: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return cfg.build()
}

func (c FileConfig) build() (*Data, error) {
	trainTypes := make([]TrainType, 0, len(c.TrainTypes))
	for _, t := range c.TrainTypes {
		trainTypes = append(trainTypes, TrainType(t))
	}
	stations := make([]Station, 0, len(c.Stations))
	for _, s := range c.Stations {
		stations = append(stations, Station(s))
	}
	platforms := make([]Platform, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		platforms = append(platforms, Platform(p))
	}
	return New(trainTypes, stations, platforms)
}
