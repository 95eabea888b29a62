package recognizer

import (
	"fmt"
)

// Backend names accepted by New.
const (
	BackendMyScript = "myscript"
	BackendOpenAI   = "openai"
)

// Config selects and configures a recognizer backend.
// Zero values are replaced with sensible defaults.
type Config struct {
	Backend string // "myscript" (default) or "openai"

	MyScript MyScriptConfig
	OpenAI   OpenAIConfig
}

// New creates a recognizer for the configured backend.
func New(cfg Config) (Recognizer, error) {
	switch cfg.Backend {
	case "", BackendMyScript:
		return NewMyScript(cfg.MyScript)
	case BackendOpenAI:
		return NewOpenAI(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unknown recognizer backend: %s", cfg.Backend)
	}
}
