package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModelDefault(t *testing.T) {
	model, err := ParseModel("")
	assert.NoError(t, err)
	assert.Equal(t, DefaultModel, model)
}

func TestParseModelSupported(t *testing.T) {
	for name := range supportedModels {
		model, err := ParseModel(string(name))
		assert.NoError(t, err)
		assert.Equal(t, name, model)
	}
}

func TestParseModelUnsupported(t *testing.T) {
	_, err := ParseModel("gpt-4-turbo")
	assert.Error(t, err)

	_, err = ParseModel("not-a-model")
	assert.Error(t, err)
}
