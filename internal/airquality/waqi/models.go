package waqi

import (
	"strconv"
	"strings"
)

// API response types (from the WAQI API).

// aqiValue decodes the aqi field, which is a number on healthy stations
// but the string "-" when the station has no current reading. Anything
// that does not parse as a number is treated as "no data".
type aqiValue struct {
	value int
	valid bool
}

func (a *aqiValue) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*a = aqiValue{}
		return nil
	}
	*a = aqiValue{value: int(f), valid: true}
	return nil
}

type feedResponse struct {
	Status string   `json:"status"`
	Data   feedData `json:"data"`
}

type feedData struct {
	AQI aqiValue `json:"aqi"`
	IDX int      `json:"idx"`
}

type searchResponse struct {
	Status string          `json:"status"`
	Data   []searchStation `json:"data"`
}

type searchStation struct {
	UID     int         `json:"uid"`
	AQI     aqiValue    `json:"aqi"`
	Station stationInfo `json:"station"`
}

type stationInfo struct {
	Name string    `json:"name"`
	Geo  []float64 `json:"geo"`
}
