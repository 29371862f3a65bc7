package llm

import "fmt"

// Model names are opaque strings the completion provider understands. The set
// is closed; anything outside it is rejected before reaching the provider.
type Model string

const (
	ModelGPT5Nano      Model = "gpt-5-nano"
	ModelGPT41Nano     Model = "gpt-4.1-nano"
	ModelDeepseekR1    Model = "deepseek-r1-0528"
	ModelOpenAIFast    Model = "openai-fast"
	ModelMistralSmall  Model = "mistral-small-3.1-24b"
	ModelGPT4oMini     Model = "gpt-4o-mini"
	ModelGPT4          Model = "gpt-4"
	ModelGemini25Lite  Model = "gemini-2.5-flash-lite"
	ModelGemini25Flash Model = "gemini-2.5-flash"
)

const DefaultModel = ModelGPT41Nano

var supportedModels = map[Model]struct{}{
	ModelGPT5Nano:      {},
	ModelGPT41Nano:     {},
	ModelDeepseekR1:    {},
	ModelOpenAIFast:    {},
	ModelMistralSmall:  {},
	ModelGPT4oMini:     {},
	ModelGPT4:          {},
	ModelGemini25Lite:  {},
	ModelGemini25Flash: {},
}

// ParseModel validates a caller-supplied model name. An empty name selects
// the default.
func ParseModel(name string) (Model, error) {
	if name == "" {
		return DefaultModel, nil
	}
	if _, ok := supportedModels[Model(name)]; !ok {
		return "", fmt.Errorf("model %s not supported", name)
	}
	return Model(name), nil
}
