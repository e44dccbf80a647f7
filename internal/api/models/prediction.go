package models

// PredictionRequest asks for the expected delay of one train at one stop.
// Omitted optional fields default to the type's first train number,
// platform 5, today and 08:00.
type PredictionRequest struct {
	TrainType   string `json:"trainType" validate:"required,max=100"`
	TrainNumber *int   `json:"trainNumber,omitempty" validate:"omitempty,gt=0"`
	StationCode string `json:"stationCode" validate:"required,max=10"`
	Platform    string `json:"platform,omitempty" validate:"omitempty,max=10"`
	ArrivalDate string `json:"arrivalDate,omitempty"`
	ArrivalTime string `json:"arrivalTime,omitempty"`
}

// PredictionResponse is the expected delay for a request.
type PredictionResponse struct {
	// ExpectedDelayMinutes is rounded to 2 decimals.
	ExpectedDelayMinutes float64 `json:"expectedDelayMinutes"`

	Category      string `json:"category"`
	CategoryLabel string `json:"categoryLabel"`

	// MostLikelyCategory is the class with the highest probability. It can
	// differ from Category.
	MostLikelyCategory string `json:"mostLikelyCategory"`

	Probabilities []ClassProbability `json:"probabilities"`
	Features      map[string]any     `json:"features"`
}

// ClassProbability is one row of the probability table, rounded to 3
// decimals.
type ClassProbability struct {
	Category    string  `json:"category"`
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}
