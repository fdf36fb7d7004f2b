package cache

import "fmt"

// SourceFetchKey caches a connector's fetch response for a given params hash.
func SourceFetchKey(sourceType, paramsHash string) string {
	return fmt.Sprintf("source:%s:%s", sourceType, paramsHash)
}

// AgentStatusKey holds the serialized singleton agent status for fast polls.
func AgentStatusKey() string {
	return "agent:status"
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
