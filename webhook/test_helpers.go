package webhook

import "github.com/stretchr/testify/mock"

// MatchMessage creates a custom matcher for message arguments in mocks
func MatchMessage(matcher func(Message) bool) interface{} {
	return mock.MatchedBy(matcher)
}
