package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTimeGateAllows(t *testing.T) {
	assert.True(t, TimeAny.Allows(PhaseDay))
	assert.True(t, TimeAny.Allows(PhaseNight))
	assert.True(t, TimeDay.Allows(PhaseDay))
	assert.False(t, TimeDay.Allows(PhaseNight))
	assert.True(t, TimeNight.Allows(PhaseNight))
	assert.False(t, TimeNight.Allows(PhaseDay))
}

func TestWeatherGateAllows(t *testing.T) {
	tests := []struct {
		gate    WeatherGate
		weather Weather
		want    bool
	}{
		{WeatherAny, WeatherClear, true},
		{WeatherAny, WeatherThunder, true},
		{WeatherGateClear, WeatherClear, true},
		{WeatherGateClear, WeatherRain, false},
		{WeatherGateRain, WeatherRain, true},
		{WeatherGateRain, WeatherThunder, false},
		{WeatherGateThunder, WeatherThunder, true},
		{WeatherGateThunder, WeatherRain, false},
	}

	for _, tt := range tests {
		t.Run(tt.gate.String()+"/"+tt.weather.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gate.Allows(tt.weather))
		})
	}
}

func TestGateUnmarshalText(t *testing.T) {
	tests := []struct {
		in   string
		want TimeGate
	}{
		{"day", TimeDay},
		{" NIGHT ", TimeNight},
		{"All", TimeAny},
		{"any", TimeAny},
		{"", TimeAny},
		{"dusk", TimeAny},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			g := TimeNight
			if tt.want == TimeNight {
				g = TimeDay
			}
			require.NoError(t, g.UnmarshalText([]byte(tt.in)))
			assert.Equal(t, tt.want, g)
		})
	}
}

func TestGatesYAML(t *testing.T) {
	type gates struct {
		Time    TimeGate    `yaml:"time"`
		Weather WeatherGate `yaml:"weather"`
		Medium  Medium      `yaml:"medium"`
	}

	var g gates
	require.NoError(t, yaml.Unmarshal([]byte("time: night\nweather: Rain\nmedium: water\n"), &g))
	assert.Equal(t, TimeNight, g.Time)
	assert.Equal(t, WeatherGateRain, g.Weather)
	assert.Equal(t, MediumWater, g.Medium)

	out, err := yaml.Marshal(g)
	require.NoError(t, err)
	assert.Equal(t, "time: NIGHT\nweather: RAIN\nmedium: WATER\n", string(out))
}
