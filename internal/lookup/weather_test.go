package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWeatherCityFor(t *testing.T) {
	c := NewWeatherClient("", "k", "Lagos", 0)
	tests := []struct {
		clause string
		want   string
	}{
		{clause: "what's the weather in Lagos", want: "Lagos"},
		{clause: "WEATHER IN new york", want: "New York"},
		{clause: "is it raining", want: "Lagos"},
		{clause: "weather in 123", want: "Lagos"},
	}
	for _, tt := range tests {
		if got := c.CityFor(tt.clause); got != tt.want {
			t.Fatalf("CityFor(%q)=%q, want %q", tt.clause, got, tt.want)
		}
	}
}

func TestWeatherCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Lagos" || q.Get("appid") != "secret" || q.Get("units") != "metric" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"main":{"temp":30},"weather":[{"description":"clear sky"}]}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, "secret", "Lagos", time.Second)
	got, err := c.Current(context.Background(), c.CityFor("what's the weather in Lagos"))
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !strings.Contains(got.String(), "The weather in Lagos is clear sky with 30°C") {
		t.Fatalf("unexpected report: %q", got.String())
	}
}

func TestWeatherFractionalTemp(t *testing.T) {
	w := Weather{City: "Oslo", Description: "snow", TempC: -2.5}
	if !strings.Contains(w.String(), "with -2.5°C") {
		t.Fatalf("unexpected report: %q", w.String())
	}
}

func TestWeatherTruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "200")
		_, _ = w.Write([]byte(`{"main":{"temp":30}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, "k", "Lagos", time.Second)
	_, err := c.Current(context.Background(), "Lagos")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err=%v, want ErrTransport", err)
	}
}

func TestWeatherNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, "bad", "Lagos", time.Second)
	_, err := c.Current(context.Background(), "Lagos")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("err=%v, want StatusError 401", err)
	}
}

func TestWeatherMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"main":{"temp":30},"weather":[]}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, "k", "Lagos", time.Second)
	if _, err := c.Current(context.Background(), "Lagos"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err=%v, want ErrMalformedResponse", err)
	}
}

func TestWeatherTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewWeatherClient(srv.URL, "k", "Lagos", 50*time.Millisecond)
	if _, err := c.Current(context.Background(), "Lagos"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("err=%v, want ErrTimeout", err)
	}
}
