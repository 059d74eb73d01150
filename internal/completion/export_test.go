package completion

import "time"

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

var (
	WithDeepSeekHTTPClient = withDeepSeekHTTPClient
	WithChatCompleter      = withChatCompleter
	WithMessageCreator     = withMessageCreator
	WithContentGenerator   = withContentGenerator
)

// Function exports for unit testing internal logic.
var (
	ClassifyStatus        = classifyStatus
	ClassifyTransport     = classifyTransport
	ClassifyOpenAIError   = classifyOpenAIError
	ClassifyDeepSeekError = classifyDeepSeekError
	StripCodeFences       = stripCodeFences
)

// SetNow replaces the clock used to timestamp cache entries.
func (c *CachedCompleter) SetNow(now func() time.Time) { c.now = now }

// HTTPTimeout exposes the configured DeepSeek client timeout.
func (c *DeepSeekCompleter) HTTPTimeout() time.Duration { return c.httpTimeout }
