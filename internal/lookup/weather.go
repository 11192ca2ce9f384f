package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultWeatherBaseURL = "http://api.openweathermap.org/data/2.5/weather"

var weatherCityPattern = regexp.MustCompile(`weather in ([a-z\s]+)`)

type Weather struct {
	City        string
	Description string
	TempC       float64
}

func (w Weather) String() string {
	return fmt.Sprintf("The weather in %s is %s with %s°C 🌤️", w.City, w.Description, strconv.FormatFloat(w.TempC, 'f', -1, 64))
}

type WeatherClient struct {
	baseURL     string
	apiKey      string
	defaultCity string
	http        *http.Client
}

func NewWeatherClient(baseURL, apiKey, defaultCity string, timeout time.Duration) *WeatherClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultWeatherBaseURL
	}
	return &WeatherClient{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:      apiKey,
		defaultCity: defaultCity,
		http:        &http.Client{Timeout: timeout},
	}
}

// CityFor extracts the city from a "weather in <city>" clause, falling back
// to the configured default.
func (c *WeatherClient) CityFor(clause string) string {
	m := weatherCityPattern.FindStringSubmatch(strings.ToLower(clause))
	if m == nil {
		return c.defaultCity
	}
	city := strings.TrimSpace(m[1])
	if city == "" {
		return c.defaultCity
	}
	return titleCase(city)
}

func (c *WeatherClient) Current(ctx context.Context, city string) (Weather, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Weather{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Weather{}, transportError("weather", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Weather{}, transportError("weather", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Weather{}, &StatusError{Service: "weather", Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out struct {
		Main *struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return Weather{}, fmt.Errorf("weather: %w: %v", ErrMalformedResponse, err)
	}
	if out.Main == nil || len(out.Weather) == 0 {
		return Weather{}, fmt.Errorf("weather: %w: missing main.temp or weather[0]", ErrMalformedResponse)
	}
	return Weather{City: city, Description: out.Weather[0].Description, TempC: out.Main.Temp}, nil
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
