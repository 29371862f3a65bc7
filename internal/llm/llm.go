package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Client is the completion provider. Complete blocks until the provider
// responds or errors; there is no retry and no timeout of its own.
type Client interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}
