package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeware/agentbridge/internal/logging"
	"github.com/bridgeware/agentbridge/internal/platform"
)

type staticTool struct {
	name string
	out  string
	err  error
}

func (t staticTool) Name() string                 { return t.name }
func (t staticTool) Description() string          { return "static" }
func (t staticTool) InputSchema() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }
func (t staticTool) Execute(context.Context, string) (string, error) {
	return t.out, t.err
}

func testRegistry() *Registry {
	return NewRegistry(logging.New(io.Discard, "silent"))
}

func TestRegistrySpecs(t *testing.T) {
	r := testRegistry()
	r.Register(CityWeather{})

	specs := r.Specs()
	require.Len(t, specs, 1)
	assert.Equal(t, "function", specs[0].Type)
	require.NotNil(t, specs[0].Function)
	assert.Equal(t, "get_weather_for_city", specs[0].Function.Name)
	assert.NotEmpty(t, specs[0].Function.Parameters)
}

func TestRegistryOutputsAnswerEveryCall(t *testing.T) {
	r := testRegistry()
	r.Register(staticTool{name: "ok", out: "fine"})
	r.Register(staticTool{name: "broken", err: errors.New("no upstream")})

	outputs := r.Outputs(context.Background(), []platform.ToolCall{
		{ID: "call_1", Name: "ok", Arguments: "{}"},
		{ID: "call_2", Name: "broken", Arguments: "{}"},
		{ID: "call_3", Name: "missing", Arguments: "{}"},
	})

	require.Len(t, outputs, 3)
	assert.Equal(t, "call_1", outputs[0].CallID)
	assert.Equal(t, "fine", outputs[0].Output)
	assert.Contains(t, outputs[1].Output, "no upstream")
	assert.Contains(t, outputs[2].Output, "unknown tool")
}

func TestCityWeatherKnownCity(t *testing.T) {
	out, err := CityWeather{}.Execute(context.Background(), `{"city":"Boston"}`)
	require.NoError(t, err)
	assert.Equal(t, "The weather in Boston is 61 and rainy.", out)
}

func TestCityWeatherCaseInsensitive(t *testing.T) {
	out, err := CityWeather{}.Execute(context.Background(), `{"city":"SEATTLE"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "54 and drizzling")
}

func TestCityWeatherUnknownCity(t *testing.T) {
	out, err := CityWeather{}.Execute(context.Background(), `{"city":"Reykjavik"}`)
	require.NoError(t, err)
	assert.Equal(t, "Weather data for Reykjavik is not available.", out)
}

func TestCityWeatherMissingCity(t *testing.T) {
	_, err := CityWeather{}.Execute(context.Background(), `{}`)
	assert.Error(t, err)
}

func TestForecastTwoHopLookup(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		switch {
		case r.URL.Path == "/points/42.360100,-71.058900":
			fmt.Fprintf(w, `{"properties":{"forecast":"%s/gridpoints/BOX/71,90/forecast"}}`, srv.URL)
		case r.URL.Path == "/gridpoints/BOX/71,90/forecast":
			io.WriteString(w, `{"properties":{"updated":"2026-08-31T12:00:00Z","periods":[
				{"name":"Tonight","temperature":61,"temperatureUnit":"F","windSpeed":"10 mph","windDirection":"NE","shortForecast":"Rain"}
			]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	out, err := Forecast{BaseURL: srv.URL}.Execute(context.Background(),
		`{"latitude":42.3601,"longitude":-71.0589}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Tonight: 61°F")
	assert.Contains(t, out, "Rain")
}

func TestForecastRequiresCoordinates(t *testing.T) {
	_, err := Forecast{}.Execute(context.Background(), `{"latitude":42.0}`)
	assert.Error(t, err)
}

func TestForecastUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := Forecast{BaseURL: srv.URL}.Execute(context.Background(),
		`{"latitude":42.3601,"longitude":-71.0589}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
