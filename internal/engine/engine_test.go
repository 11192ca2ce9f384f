package engine

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moyen/internal/config"
	"moyen/internal/domain"
	"moyen/internal/session"
)

func testConfig(weatherURL string) config.EngineConfig {
	return config.EngineConfig{
		BotName:             "Moyennn",
		IntentsPath:         "testdata/intents.json",
		VectorizerPath:      "testdata/vectorizer.json",
		ModelPath:           "testdata/model.json",
		ConfidenceThreshold: 0.75,
		WeatherBaseURL:      weatherURL,
		WeatherAPIKey:       "k",
		WeatherDefaultCity:  "Lagos",
		WeatherTimeout:      time.Second,
		WorldTimeTimeout:    time.Second,
		TimezoneMatchCutoff: 0.6,
	}
}

func TestBuildAndChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"main":{"temp":30},"weather":[{"description":"clear sky"}]}`))
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := Build(testConfig(srv.URL), session.NewMemoryStore(time.Minute), nil, logger)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	resp := eng.Service.HandleChat(context.Background(), domain.ChatRequest{Message: "weather in Lagos", SessionID: "s"})
	if !strings.Contains(resp.Response, "The weather in Lagos is clear sky with 30°C") {
		t.Fatalf("response=%q", resp.Response)
	}
}

func TestBuildFailsOnMissingArtifacts(t *testing.T) {
	cfg := testConfig("")
	cfg.ModelPath = "testdata/missing.json"
	if _, err := Build(cfg, session.NewMemoryStore(0), nil, nil); err == nil {
		t.Fatalf("expected error for missing model")
	}

	cfg = testConfig("")
	cfg.IntentsPath = "testdata/missing.json"
	if _, err := Build(cfg, session.NewMemoryStore(0), nil, nil); err == nil {
		t.Fatalf("expected error for missing catalog")
	}
}
