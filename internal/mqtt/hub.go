package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"moyen/internal/domain"
)

type HubConfig struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// SessionResetter clears a session's context on a reset command.
type SessionResetter interface {
	ResetSession(ctx context.Context, sessionID string) error
}

// Hub publishes resolved turns and listens for session reset commands.
type Hub struct {
	cfg      HubConfig
	client   paho.Client
	resetter SessionResetter
	logger   *slog.Logger
}

func NewHub(cfg HubConfig, resetter SessionResetter, logger *slog.Logger) *Hub {
	return &Hub{
		cfg:      cfg,
		resetter: resetter,
		logger:   logger,
	}
}

// SetResetter must be called before Start.
func (h *Hub) SetResetter(r SessionResetter) {
	h.resetter = r
}

func (h *Hub) Start(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(h.cfg.BrokerURL).
		SetClientID(h.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if h.cfg.Username != "" {
		opts.SetUsername(h.cfg.Username)
		opts.SetPassword(h.cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		h.logger.Error("mqtt connection lost", "error", err)
	})

	h.client = paho.NewClient(opts)
	if token := h.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	if token := h.client.Subscribe(TopicSessionReset(h.cfg.TopicPrefix), 1, h.handleReset); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	go func() {
		<-ctx.Done()
		h.client.Disconnect(100)
	}()

	return nil
}

func (h *Hub) handleReset(_ paho.Client, msg paho.Message) {
	sessionID, err := ParseSessionID(msg.Topic(), h.cfg.TopicPrefix)
	if err != nil {
		h.logger.Warn("skip invalid reset topic", "topic", msg.Topic(), "error", err)
		return
	}
	if h.resetter == nil {
		h.logger.Warn("reset ignored, no resetter", "session_id", sessionID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.resetter.ResetSession(ctx, sessionID); err != nil {
		h.logger.Warn("reset session failed", "session_id", sessionID, "error", err)
		return
	}
	h.logger.Info("session reset", "session_id", sessionID)
}

// PublishTurn sends ev to {prefix}/session/{id}/turn with QoS 0.
func (h *Hub) PublishTurn(ctx context.Context, ev domain.TurnEvent) error {
	if h.client == nil {
		return fmt.Errorf("mqtt hub not started")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	token := h.client.Publish(TopicTurn(h.cfg.TopicPrefix, ev.SessionID), 0, false, body)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		return token.Error()
	}
}
