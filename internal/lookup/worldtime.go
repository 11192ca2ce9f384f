package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	DefaultWorldTimeBaseURL = "http://worldtimeapi.org/api/timezone"
	DefaultMatchCutoff      = 0.6
)

var datetimePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T(\d{2}:\d{2}:\d{2})`)

type ZoneTime struct {
	Location string
	Zone     string
	Date     string
	Clock    string
}

func (z ZoneTime) String() string {
	return fmt.Sprintf("The current time in %s is %s %s ⏰", z.Location, z.Date, z.Clock)
}

type WorldTimeClient struct {
	baseURL string
	cutoff  float64
	http    *http.Client
}

// NewWorldTimeClient bounds every outbound call by timeout.
func NewWorldTimeClient(baseURL string, cutoff float64, timeout time.Duration) *WorldTimeClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultMatchCutoff
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultWorldTimeBaseURL
	}
	return &WorldTimeClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		cutoff:  cutoff,
		http:    &http.Client{Timeout: timeout},
	}
}

// Lookup resolves a free-text location to a timezone and returns its wall
// clock without sub-second precision.
func (c *WorldTimeClient) Lookup(ctx context.Context, location string) (ZoneTime, error) {
	name := titleCase(strings.TrimSpace(location))

	var zones []string
	if err := c.getJSON(ctx, c.baseURL, &zones); err != nil {
		return ZoneTime{}, err
	}

	zone, ok := MatchZone(name, zones, c.cutoff)
	if !ok {
		return ZoneTime{}, fmt.Errorf("%w: %q", ErrNoTimezoneMatch, location)
	}

	var payload struct {
		Datetime string `json:"datetime"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/"+zone, &payload); err != nil {
		return ZoneTime{}, err
	}
	date, clock, err := splitDatetime(payload.Datetime)
	if err != nil {
		return ZoneTime{}, err
	}
	return ZoneTime{Location: name, Zone: zone, Date: date, Clock: clock}, nil
}

func (c *WorldTimeClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return transportError("worldtime", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError("worldtime", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Service: "worldtime", Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("worldtime: %w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// MatchZone picks the zone whose last path segment is most similar to name,
// requiring a similarity ratio of at least cutoff. Equal scores prefer the
// lexically greater segment, then the earlier zone.
func MatchZone(name string, zones []string, cutoff float64) (string, bool) {
	target := strings.Split(name, "")
	var (
		bestZone  string
		bestSeg   string
		bestScore = -1.0
	)
	for _, zone := range zones {
		seg := zone[strings.LastIndex(zone, "/")+1:]
		if seg == "" {
			continue
		}
		score := difflib.NewMatcher(strings.Split(seg, ""), target).Ratio()
		if score < cutoff {
			continue
		}
		if score > bestScore || (score == bestScore && seg > bestSeg) {
			bestZone, bestSeg, bestScore = zone, seg, score
		}
	}
	return bestZone, bestZone != ""
}

func splitDatetime(raw string) (string, string, error) {
	m := datetimePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrMissingDatetime, raw)
	}
	return m[1], m[2], nil
}
