package models

// TrainType is a train service type and the numbers it runs under.
type TrainType struct {
	Name          string `json:"name"`
	Company       string `json:"company"`
	Numbers       []int  `json:"numbers"`
	DefaultNumber int    `json:"defaultNumber"`
}

// TrainTypeList lists the known train types.
type TrainTypeList struct {
	Items []TrainType `json:"items"`
}

// Station is a stop a prediction can be made for.
type Station struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// StationList lists the known stations.
type StationList struct {
	Items []Station `json:"items"`
}

// PlatformList lists the known platform identifiers.
type PlatformList struct {
	Items []string `json:"items"`
}

// DelayClass describes one of the classifier's output classes.
type DelayClass struct {
	Code                 string  `json:"code"`
	Label                string  `json:"label"`
	RepresentativeMinutes float64 `json:"representativeMinutes"`
}

// DelayClassList lists the delay classes in classifier order.
type DelayClassList struct {
	Items []DelayClass `json:"items"`
}

// DefaultTrainNumber is the number preselected for a train type.
type DefaultTrainNumber struct {
	TrainType   string `json:"trainType"`
	TrainNumber int    `json:"trainNumber"`
}
