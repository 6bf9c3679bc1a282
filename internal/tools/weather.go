package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CityWeather reports conditions for a named city from a fixed table. It
// exists so turns can exercise the full function-call round trip without an
// upstream weather dependency.
type CityWeather struct{}

func (CityWeather) Name() string { return "get_weather_for_city" }

func (CityWeather) Description() string {
	return "Get the current weather for a city by name."
}

func (CityWeather) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"city": {"type": "string", "description": "City name, e.g. Boston"}
		},
		"required": ["city"]
	}`)
}

var cityConditions = map[string]string{
	"boston":        "61 and rainy",
	"new york":      "68 and partly cloudy",
	"san francisco": "58 and foggy",
	"seattle":       "54 and drizzling",
	"austin":        "84 and sunny",
}

func (CityWeather) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		City string `json:"city"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing arguments: %w", err)
	}
	if args.City == "" {
		return "", fmt.Errorf("city is required")
	}

	if conditions, ok := cityConditions[strings.ToLower(strings.TrimSpace(args.City))]; ok {
		return fmt.Sprintf("The weather in %s is %s.", args.City, conditions), nil
	}
	return fmt.Sprintf("Weather data for %s is not available.", args.City), nil
}

// Forecast fetches NWS period forecasts by coordinate. The lookup is two
// hops: resolve the point to a gridpoint, then fetch that gridpoint's
// forecast.
type Forecast struct {
	// BaseURL overrides the NWS API root, for tests.
	BaseURL string

	// UserAgent identifies this service to the NWS API, which rejects
	// anonymous clients.
	UserAgent string

	// HTTPClient defaults to a 30s-timeout client.
	HTTPClient *http.Client
}

func (Forecast) Name() string { return "get_forecast" }

func (Forecast) Description() string {
	return "Get the weather forecast for a US location by latitude and longitude."
}

func (Forecast) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"latitude": {"type": "number", "description": "Latitude of the location (-90 to 90)"},
			"longitude": {"type": "number", "description": "Longitude of the location (-180 to 180)"}
		},
		"required": ["latitude", "longitude"]
	}`)
}

type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Updated string `json:"updated"`
		Periods []struct {
			Name             string `json:"name"`
			Temperature      int    `json:"temperature"`
			TemperatureUnit  string `json:"temperatureUnit"`
			WindSpeed        string `json:"windSpeed"`
			WindDirection    string `json:"windDirection"`
			ShortForecast    string `json:"shortForecast"`
			DetailedForecast string `json:"detailedForecast"`
		} `json:"periods"`
	} `json:"properties"`
}

func (f Forecast) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("parsing arguments: %w", err)
	}
	if args.Latitude == nil || args.Longitude == nil {
		return "", fmt.Errorf("latitude and longitude are required")
	}

	base := f.BaseURL
	if base == "" {
		base = "https://api.weather.gov"
	}

	pointsURL := fmt.Sprintf("%s/points/%f,%f", base, *args.Latitude, *args.Longitude)
	var points pointsResponse
	if err := f.fetch(ctx, pointsURL, &points); err != nil {
		return "", fmt.Errorf("resolving gridpoint: %w", err)
	}
	if points.Properties.Forecast == "" {
		return "", fmt.Errorf("no forecast available for %f,%f", *args.Latitude, *args.Longitude)
	}

	var forecast forecastResponse
	if err := f.fetch(ctx, points.Properties.Forecast, &forecast); err != nil {
		return "", fmt.Errorf("fetching forecast: %w", err)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Forecast for %.4f, %.4f (updated %s)\n", *args.Latitude, *args.Longitude, forecast.Properties.Updated)
	for i, period := range forecast.Properties.Periods {
		if i >= 4 {
			break
		}
		fmt.Fprintf(&out, "%s: %d°%s, wind %s %s. %s\n",
			period.Name, period.Temperature, period.TemperatureUnit,
			period.WindDirection, period.WindSpeed, period.ShortForecast)
	}
	return out.String(), nil
}

func (f Forecast) fetch(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	ua := f.UserAgent
	if ua == "" {
		ua = "(agentbridge weather tool)"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/geo+json")

	hc := f.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

var (
	_ Tool = CityWeather{}
	_ Tool = Forecast{}
)
