package wiki

// MappingItem is one row of the item mapping dump.
type MappingItem struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Members  bool   `json:"members"`
	Limit    int    `json:"limit"`
	Value    int    `json:"value"`
	HighAlch int    `json:"highalch"`
	LowAlch  int    `json:"lowalch"`
}

// LatestPrice is the most recent instant buy/sell pair for one item.
type LatestPrice struct {
	High     int64 `json:"high"`
	HighTime int64 `json:"highTime"`
	Low      int64 `json:"low"`
	LowTime  int64 `json:"lowTime"`
}

type latestResponse struct {
	Data map[string]LatestPrice `json:"data"`
}

type timeseriesResponse struct {
	Data []timeseriesPoint `json:"data"`
}

type timeseriesPoint struct {
	Timestamp       int64 `json:"timestamp"`
	AvgHighPrice    int64 `json:"avgHighPrice"`
	AvgLowPrice     int64 `json:"avgLowPrice"`
	HighPriceVolume int64 `json:"highPriceVolume"`
	LowPriceVolume  int64 `json:"lowPriceVolume"`
}
