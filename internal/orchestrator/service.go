package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"moyen/internal/domain"
	"moyen/internal/lookup"
	"moyen/internal/rules"
	"moyen/internal/segment"
	"moyen/internal/session"
)

const DefaultConfidenceThreshold = 0.75

// affirmativeTokens turn a clause after a greeting into smalltalk.
var affirmativeTokens = []string{"fine", "good"}

type Classifier interface {
	Classify(text string) (domain.Classification, error)
}

type TurnPublisher interface {
	PublishTurn(ctx context.Context, ev domain.TurnEvent) error
}

type Config struct {
	// ConfidenceThreshold is the minimum posterior a classification needs to
	// be dispatched. Zero means DefaultConfidenceThreshold.
	ConfidenceThreshold float64
}

type Service struct {
	threshold  float64
	rules      *rules.Layer
	classifier Classifier
	dispatcher *Dispatcher
	sessions   session.Store
	publisher  TurnPublisher
	clock      lookup.Clock
	logger     *slog.Logger
}

func New(cfg Config, ruleLayer *rules.Layer, classifier Classifier, dispatcher *Dispatcher, sessions session.Store, publisher TurnPublisher, logger *slog.Logger) *Service {
	threshold := cfg.ConfidenceThreshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		threshold:  threshold,
		rules:      ruleLayer,
		classifier: classifier,
		dispatcher: dispatcher,
		sessions:   sessions,
		publisher:  publisher,
		clock:      lookup.SystemClock,
		logger:     logger,
	}
}

type turnState struct {
	responses        []string
	answered         map[string]struct{}
	tags             []string
	overridden       bool
	rule             string
	contextTriggered bool
}

func (t *turnState) resolve(tag, reply string) {
	t.answered[tag] = struct{}{}
	t.tags = append(t.tags, tag)
	t.responses = append(t.responses, reply)
}

// HandleChat answers one utterance. Every failure degrades to an apology in
// the reply, so there is no error return.
func (s *Service) HandleChat(ctx context.Context, req domain.ChatRequest) domain.ChatResponse {
	chatStart := time.Now()

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return domain.ChatResponse{Response: replyEmptyMessage, SessionID: sessionID}
	}

	sc, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		s.logger.Warn("load session context failed", "session_id", sessionID, "error", err)
		sc = session.Context{}
	}
	turn := s.route(ctx, message, &sc)

	if len(turn.tags) > 0 {
		// the store stamps UpdatedAt with its own clock, which also measures expiry
		sc.UpdatedAt = time.Time{}
		if err := s.sessions.Save(ctx, sessionID, sc); err != nil {
			s.logger.Warn("save session context failed", "session_id", sessionID, "error", err)
		}
	}

	reply := strings.Join(turn.responses, " ")
	if reply == "" {
		reply = replyCatchAll
	}

	if s.publisher != nil {
		ev := domain.TurnEvent{
			TurnID:           uuid.NewString(),
			SessionID:        sessionID,
			Tags:             turn.tags,
			Overridden:       turn.overridden,
			Rule:             turn.rule,
			ContextTriggered: turn.contextTriggered,
			Reply:            reply,
			At:               s.clock().UTC(),
		}
		if err := s.publisher.PublishTurn(ctx, ev); err != nil {
			s.logger.Warn("publish turn failed", "session_id", sessionID, "error", err)
		}
	}

	s.logger.Info("chat turn",
		"session_id", sessionID,
		"tags", turn.tags,
		"overridden", turn.overridden,
		"rule", turn.rule,
		"context_triggered", turn.contextTriggered,
		"last_intent", sc.LastIntent,
		"total_ms", time.Since(chatStart).Milliseconds(),
	)

	return domain.ChatResponse{Response: reply, SessionID: sessionID, Tags: turn.tags}
}

// route runs the override layer, then each clause in order. Clause i+1 sees
// the answered tags and context left by clause i.
func (s *Service) route(ctx context.Context, message string, sc *session.Context) turnState {
	turn := turnState{answered: map[string]struct{}{}}

	if m, ok := s.rules.Check(message); ok {
		turn.overridden = true
		turn.rule = m.Rule
		turn.resolve(m.Tag, m.Reply)
		sc.LastIntent = m.Tag
		return turn
	}

	for _, clause := range segment.Split(message) {
		if sc.LastIntent == domain.TagGreeting && isAffirmative(clause) {
			turn.contextTriggered = true
			turn.resolve(domain.TagSmalltalk, replySmalltalkFollow)
			sc.LastIntent = domain.TagSmalltalk
			break
		}

		result, err := s.classifier.Classify(clause)
		if err != nil {
			s.logger.Debug("classify clause failed", "clause", clause, "error", err)
			turn.responses = append(turn.responses, apologyFor(err))
			continue
		}
		if result.Confidence < s.threshold {
			s.logger.Debug("classification below threshold", "clause", clause, "tag", result.Tag, "confidence", result.Confidence)
			turn.responses = append(turn.responses, replyLowConfidence)
			continue
		}
		if _, done := turn.answered[result.Tag]; done {
			continue
		}

		reply, err := s.dispatcher.For(result.Tag).Handle(ctx, Request{Tag: result.Tag, Clause: clause})
		if err != nil {
			s.logger.Warn("clause handler failed", "tag", result.Tag, "error", err)
			reply = apologyFor(err)
		}
		turn.resolve(result.Tag, reply)
		sc.LastIntent = result.Tag
	}
	return turn
}

func isAffirmative(clause string) bool {
	words := segment.Words(clause)
	for _, tok := range affirmativeTokens {
		if containsWord(words, tok) {
			return true
		}
	}
	return false
}

// ResetSession clears the stored context for sessionID.
func (s *Service) ResetSession(ctx context.Context, sessionID string) error {
	return s.sessions.Reset(ctx, sessionID)
}
