package orchestrator

import (
	"errors"
	"fmt"

	"moyen/internal/classifier"
	"moyen/internal/lookup"
)

const (
	replyEmptyMessage    = "Please type a message so I can help 🙂"
	replyNotSure         = "I’m not sure I understand 🤔"
	replyLowConfidence   = "Sorry, I didn’t quite get that 🤔"
	replyUnknownTag      = "Sorry, I don’t understand that yet 🤔"
	replyFiller          = "Hmm..."
	replyCatchAll        = "Sorry, I didn’t quite understand that. Can you try rephrasing? 🤔"
	replySmalltalkFollow = "Glad to hear that 😊 What would you like to talk about?"
)

// apologyFor maps a clause failure to the sentence spoken in its place.
func apologyFor(err error) string {
	if errors.Is(err, classifier.ErrClassificationFailed) {
		return replyNotSure
	}
	if errors.Is(err, ErrUnknownTag) {
		return replyUnknownTag
	}

	var he *HandlerError
	if !errors.As(err, &he) {
		return replyNotSure
	}
	switch he.Capability {
	case capabilityWeather:
		if errors.Is(err, lookup.ErrTimeout) {
			return fmt.Sprintf("Sorry, the weather service for %s took too long to answer 🌧️", he.Subject)
		}
		return fmt.Sprintf("Sorry, I couldn’t fetch the weather for %s 🌧️", he.Subject)
	case capabilityWorldTime:
		switch {
		case errors.Is(err, lookup.ErrNoTimezoneMatch):
			return fmt.Sprintf("Sorry, I couldn't determine the timezone for %s ⏰", he.Subject)
		case errors.Is(err, lookup.ErrMissingDatetime):
			return fmt.Sprintf("Time data not available for %s ⏰", he.Subject)
		case errors.Is(err, lookup.ErrTimeout):
			return fmt.Sprintf("Sorry, the time service took too long for %s ⏰", he.Subject)
		default:
			return fmt.Sprintf("Sorry, I couldn't fetch the time for %s ⏰", he.Subject)
		}
	}
	return replyNotSure
}
