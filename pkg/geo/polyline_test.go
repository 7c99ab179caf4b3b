package geo

import (
	"errors"
	"math"
	"testing"
)

func TestDecodePolyline_Valid(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		expected []Coordinate
	}{
		{
			name:    "single point",
			encoded: "_p~iF~ps|U",
			expected: []Coordinate{
				{Lat: 38.5, Lng: -120.2},
			},
		},
		{
			name:    "three points - Google example",
			encoded: "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
			expected: []Coordinate{
				{Lat: 38.5, Lng: -120.2},
				{Lat: 40.7, Lng: -120.95},
				{Lat: 43.252, Lng: -126.453},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DecodePolyline(tt.encoded)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d coordinates, got %d", len(tt.expected), len(result))
			}
			for i, coord := range result {
				if !coordsEqual(coord, tt.expected[i], 0.00001) {
					t.Errorf("coordinate %d: expected %+v, got %+v", i, tt.expected[i], coord)
				}
			}
		})
	}
}

func TestDecodePolyline_Empty(t *testing.T) {
	result, err := DecodePolyline("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
}

func TestDecodePolyline_Truncated(t *testing.T) {
	// Drop the final byte of a valid encoding so the last varint has its
	// continuation bit set with nothing following.
	valid := EncodePolyline([]Coordinate{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
	})

	_, err := DecodePolyline(valid[:len(valid)-1])
	if !errors.Is(err, ErrMalformedPolyline) {
		t.Errorf("expected ErrMalformedPolyline, got %v", err)
	}
}

func TestPolyline_RoundTrip(t *testing.T) {
	points := []Coordinate{
		{Lat: -6.20010, Lng: 106.81660},
		{Lat: -6.19523, Lng: 106.81891},
		{Lat: -6.18104, Lng: 106.82035},
		{Lat: -6.17450, Lng: 106.82270},
	}

	decoded, err := DecodePolyline(EncodePolyline(points))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != len(points) {
		t.Fatalf("expected %d points, got %d", len(points), len(decoded))
	}
	for i := range points {
		if !coordsEqual(decoded[i], points[i], 0.000001) {
			t.Errorf("point %d: expected %+v, got %+v", i, points[i], decoded[i])
		}
	}
}

func coordsEqual(a, b Coordinate, tolerance float64) bool {
	return math.Abs(a.Lat-b.Lat) <= tolerance && math.Abs(a.Lng-b.Lng) <= tolerance
}
