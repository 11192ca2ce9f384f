package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"moyen/internal/lookup"
	"moyen/internal/segment"
)

var ErrUnknownTag = errors.New("tag has no catalog entry")

// Request is what a Handler receives for one accepted clause.
type Request struct {
	Tag    string
	Clause string
}

// Handler turns an accepted clause into reply text.
type Handler interface {
	Handle(ctx context.Context, req Request) (string, error)
}

// HandlerError carries the capability and subject of a failed lookup so the
// router can word its apology.
type HandlerError struct {
	Capability string
	Subject    string
	Err        error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Capability, e.Subject, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

const (
	capabilityWeather   = "weather"
	capabilityWorldTime = "worldtime"
)

// Dispatcher selects a Handler by tag; unregistered tags go to the fallback.
type Dispatcher struct {
	byTag    map[string]Handler
	fallback Handler
}

func NewDispatcher(fallback Handler) *Dispatcher {
	return &Dispatcher{byTag: make(map[string]Handler), fallback: fallback}
}

func (d *Dispatcher) Register(tag string, h Handler) *Dispatcher {
	d.byTag[tag] = h
	return d
}

func (d *Dispatcher) For(tag string) Handler {
	if h, ok := d.byTag[tag]; ok {
		return h
	}
	return d.fallback
}

type WeatherLookup interface {
	CityFor(clause string) string
	Current(ctx context.Context, city string) (lookup.Weather, error)
}

type WorldTimeLookup interface {
	Lookup(ctx context.Context, location string) (lookup.ZoneTime, error)
}

type WeatherHandler struct {
	weather WeatherLookup
}

func NewWeatherHandler(w WeatherLookup) *WeatherHandler {
	return &WeatherHandler{weather: w}
}

func (h *WeatherHandler) Handle(ctx context.Context, req Request) (string, error) {
	city := h.weather.CityFor(req.Clause)
	report, err := h.weather.Current(ctx, city)
	if err != nil {
		return "", &HandlerError{Capability: capabilityWeather, Subject: city, Err: err}
	}
	return report.String(), nil
}

type TimeHandler struct {
	worldTime WorldTimeLookup
	clock     lookup.Clock
}

func NewTimeHandler(w WorldTimeLookup, clock lookup.Clock) *TimeHandler {
	if clock == nil {
		clock = lookup.SystemClock
	}
	return &TimeHandler{worldTime: w, clock: clock}
}

// Handle answers in UTC when the clause asks for it, in a named location when
// the clause says "in <place>", and in local time otherwise.
func (h *TimeHandler) Handle(ctx context.Context, req Request) (string, error) {
	words := segment.Words(req.Clause)
	if containsWord(words, "universal") || containsWord(words, "utc") {
		return lookup.UniversalTime(h.clock()), nil
	}
	if location, ok := locationAfterIn(req.Clause); ok {
		zt, err := h.worldTime.Lookup(ctx, location)
		if err != nil {
			return "", &HandlerError{Capability: capabilityWorldTime, Subject: location, Err: err}
		}
		return zt.String(), nil
	}
	return lookup.LocalTime(h.clock()), nil
}

// CatalogHandler samples one reply candidate uniformly at random.
type CatalogHandler struct {
	catalog Catalog
	pick    func(n int) int
}

type Catalog interface {
	Responses(tag string) ([]string, bool)
}

func NewCatalogHandler(c Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c, pick: rand.IntN}
}

func (h *CatalogHandler) Handle(_ context.Context, req Request) (string, error) {
	candidates, ok := h.catalog.Responses(req.Tag)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTag, req.Tag)
	}
	if len(candidates) == 0 {
		return replyFiller, nil
	}
	return candidates[h.pick(len(candidates))], nil
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

// locationAfterIn returns the text after the last standalone "in".
func locationAfterIn(clause string) (string, bool) {
	fields := strings.Fields(clause)
	for i := len(fields) - 1; i >= 0; i-- {
		if strings.EqualFold(strings.Trim(fields[i], "'\"“”‘’"), "in") {
			location := strings.TrimSpace(strings.Join(fields[i+1:], " "))
			return location, location != ""
		}
	}
	return "", false
}
