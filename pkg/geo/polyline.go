package geo

import (
	"errors"
	"math"
)

// ErrMalformedPolyline indicates a truncated or otherwise undecodable
// polyline string. Callers treat this as fatal for the affected candidate
// route, not for the whole request.
var ErrMalformedPolyline = errors.New("malformed polyline")

// DecodePolyline decodes a polyline-encoded string into coordinates.
// The format is the standard signed-varint codec with 5-bit chunks,
// zig-zag sign encoding, and a 1e5 scale factor (Google/ORS precision 5).
func DecodePolyline(encoded string) ([]Coordinate, error) {
	if encoded == "" {
		return nil, nil
	}

	var coords []Coordinate
	index := 0
	lat := 0
	lng := 0

	for index < len(encoded) {
		latDelta, next, err := decodeVarint(encoded, index)
		if err != nil {
			return nil, err
		}
		index = next
		lat += latDelta

		lngDelta, next, err := decodeVarint(encoded, index)
		if err != nil {
			return nil, err
		}
		index = next
		lng += lngDelta

		coords = append(coords, Coordinate{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}

	return coords, nil
}

// decodeVarint decodes one signed value starting at index. A continuation
// bit set on the final byte of the string means the sequence is truncated.
func decodeVarint(encoded string, index int) (int, int, error) {
	shift := 0
	result := 0

	for {
		if index >= len(encoded) {
			return 0, 0, ErrMalformedPolyline
		}
		b := int(encoded[index]) - 63
		if b < 0 {
			return 0, 0, ErrMalformedPolyline
		}
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// EncodePolyline encodes coordinates into a polyline string at precision 5.
// It is the exact inverse of DecodePolyline for coordinates rounded to five
// decimal places.
func EncodePolyline(coords []Coordinate) string {
	if len(coords) == 0 {
		return ""
	}

	encoded := make([]byte, 0, len(coords)*4)
	prevLat := 0
	prevLng := 0

	for _, coord := range coords {
		lat := int(math.Round(coord.Lat * 1e5))
		lng := int(math.Round(coord.Lng * 1e5))

		encoded = encodeVarint(encoded, lat-prevLat)
		encoded = encodeVarint(encoded, lng-prevLng)

		prevLat = lat
		prevLng = lng
	}

	return string(encoded)
}

func encodeVarint(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	return append(buf, byte(value)+63)
}
