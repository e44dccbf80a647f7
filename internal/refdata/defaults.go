package refdata

// DefaultTrainTypes returns the built-in train types for the Dutch network.
func DefaultTrainTypes() []TrainType {
	return []TrainType{
		{Name: "Nightjet", Company: "NS Int", Numbers: []int{420, 402, 421, 403}},
		{Name: "Intercity", Company: "NS", Numbers: []int{1410, 1409, 1414, 1413, 1714, 1716, 1718, 2217}},
		{Name: "Sprinter", Company: "NS", Numbers: []int{5108, 4117, 4308, 5808, 5612, 4019, 6116, 4610}},
		{Name: "Stoptrein", Company: "Arriva", Numbers: []int{37812, 32210, 37807, 37607, 20352, 8020, 20350, 30906}},
		{Name: "Intercity direct", Company: "NS", Numbers: []int{1817, 1819, 1821, 1814, 1812, 2415, 1816, 1823}},
		{Name: "ICE", Company: "DB", Numbers: []int{222, 121, 220, 225, 128, 123}},
		{Name: "EuroCity", Company: "EuroCity", Numbers: []int{9211, 9215, 9212, 9219, 9216, 9223}},
		{Name: "Eurocity Direct", Company: "NS", Numbers: []int{9512, 9523, 9516, 9520, 9527, 9524}},
		{Name: "Eurostar", Company: "Eurostar", Numbers: []int{9301, 9310, 9106, 9303, 9115, 9316}},
		{Name: "European Sleeper", Company: "European Sleeper", Numbers: []int{452, 453}},
		{Name: "Nachttrein", Company: "NS Int", Numbers: []int{32748, 32786, 32749, 32787}},
	}
}

// DefaultStations returns the built-in stations.
func DefaultStations() []Station {
	return []Station{
		{Code: "AMS", Name: "Amsterdam Centraal"},
		{Code: "UT", Name: "Utrecht Centraal"},
		{Code: "RDM", Name: "Rotterdam Centraal"},
		{Code: "DH", Name: "Den Haag Centraal"},
		{Code: "EHV", Name: "Eindhoven"},
		{Code: "HLM", Name: "Haarlem"},
	}
}

// DefaultPlatforms returns the built-in platform enumeration.
func DefaultPlatforms() []Platform {
	return []Platform{"1", "2", "3", "4", "5", "6", "7", "8"}
}

// Default returns the built-in reference data. It panics if the built-in
// tables are inconsistent, which a unit test guards against.
func Default() *Data {
	d, err := New(DefaultTrainTypes(), DefaultStations(), DefaultPlatforms())
	if err != nil {
		panic(err)
	}
	return d
}
