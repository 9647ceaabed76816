package rule

import "strings"

// TopicMatcher is the external collaborator the =~ comparison operator
// delegates to.
type TopicMatcher interface {
	Match(text, pattern string) (bool, error)
}

// MQTTTopicMatcher is the default TopicMatcher: broker-style topic
// wildcards, "+" matching exactly one segment and "#" (only valid as the
// final segment) matching the remainder, including zero segments.
type MQTTTopicMatcher struct{}

// Match implements TopicMatcher.
func (MQTTTopicMatcher) Match(text, pattern string) (bool, error) {
	textSegs := strings.Split(text, "/")
	patSegs := strings.Split(pattern, "/")

	for i, p := range patSegs {
		if p == "#" {
			return i == len(patSegs)-1, nil
		}
		if i >= len(textSegs) {
			return false, nil
		}
		if p == "+" {
			continue
		}
		if p != textSegs[i] {
			return false, nil
		}
	}

	return len(patSegs) == len(textSegs), nil
}
