package mqtt

import "fmt"

func TopicSessionReset(prefix string) string {
	return fmt.Sprintf("%s/session/+/reset", prefix)
}

func TopicTurn(prefix, sessionID string) string {
	return fmt.Sprintf("%s/session/%s/turn", prefix, sessionID)
}

func TopicReset(prefix, sessionID string) string {
	return fmt.Sprintf("%s/session/%s/reset", prefix, sessionID)
}
