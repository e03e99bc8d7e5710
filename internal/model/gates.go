package model

import (
	"log/slog"
	"strings"
)

// TimePhase is the current time-of-day class of a world.
type TimePhase uint8

const (
	PhaseDay TimePhase = iota
	PhaseNight
)

func (p TimePhase) String() string {
	if p == PhaseNight {
		return "NIGHT"
	}
	return "DAY"
}

// Weather is the current weather class of a world.
// Thunder implies rain.
type Weather uint8

const (
	WeatherClear Weather = iota
	WeatherRain
	WeatherThunder
)

func (w Weather) String() string {
	switch w {
	case WeatherRain:
		return "RAIN"
	case WeatherThunder:
		return "THUNDER"
	default:
		return "CLEAR"
	}
}

// TimeGate restricts a candidate to a time-of-day class.
type TimeGate uint8

const (
	TimeAny TimeGate = iota
	TimeDay
	TimeNight
)

var timeGateNames = map[TimeGate]string{
	TimeAny:   "ALL",
	TimeDay:   "DAY",
	TimeNight: "NIGHT",
}

func (g TimeGate) String() string {
	return timeGateNames[g]
}

// Allows reports whether the gate admits the given phase.
func (g TimeGate) Allows(p TimePhase) bool {
	switch g {
	case TimeDay:
		return p == PhaseDay
	case TimeNight:
		return p == PhaseNight
	default:
		return true
	}
}

func (g TimeGate) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText decodes a gate name. Unknown names decode to TimeAny.
func (g *TimeGate) UnmarshalText(text []byte) error {
	*g = parseGate(string(text), timeGateNames, TimeAny, "time")
	return nil
}

// WeatherGate restricts a candidate to a weather class.
type WeatherGate uint8

const (
	WeatherAny WeatherGate = iota
	WeatherGateClear
	WeatherGateRain
	WeatherGateThunder
)

var weatherGateNames = map[WeatherGate]string{
	WeatherAny:         "ALL",
	WeatherGateClear:   "CLEAR",
	WeatherGateRain:    "RAIN",
	WeatherGateThunder: "THUNDER",
}

func (g WeatherGate) String() string {
	return weatherGateNames[g]
}

// Allows reports whether the gate admits the given weather.
// RAIN excludes thunderstorms.
func (g WeatherGate) Allows(w Weather) bool {
	switch g {
	case WeatherGateClear:
		return w == WeatherClear
	case WeatherGateRain:
		return w == WeatherRain
	case WeatherGateThunder:
		return w == WeatherThunder
	default:
		return true
	}
}

func (g WeatherGate) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText decodes a gate name. Unknown names decode to WeatherAny.
func (g *WeatherGate) UnmarshalText(text []byte) error {
	*g = parseGate(string(text), weatherGateNames, WeatherAny, "weather")
	return nil
}

// Medium restricts where a candidate may be placed.
type Medium uint8

const (
	MediumAny Medium = iota
	MediumSurface
	MediumUnderground
	MediumWater
)

var mediumNames = map[Medium]string{
	MediumAny:         "ALL",
	MediumSurface:     "SURFACE",
	MediumUnderground: "UNDERGROUND",
	MediumWater:       "WATER",
}

func (m Medium) String() string {
	return mediumNames[m]
}

func (m Medium) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a medium name. Unknown names decode to MediumAny.
func (m *Medium) UnmarshalText(text []byte) error {
	*m = parseGate(string(text), mediumNames, MediumAny, "medium")
	return nil
}

// parseGate maps a case-insensitive name onto its enum value. "ANY" is
// accepted as an alias of "ALL"; an empty name is silently the fallback.
func parseGate[T comparable](name string, names map[T]string, fallback T, kind string) T {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "" || upper == "ANY" {
		return fallback
	}
	for v, n := range names {
		if n == upper {
			return v
		}
	}
	slog.Warn("unknown gate value, using ALL", "kind", kind, "value", name)
	return fallback
}
