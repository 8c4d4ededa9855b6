package provider

import "fmt"

// Names accepted by New.
const (
	NameOpenAI    = "openai"
	NameAnthropic = "anthropic"
)

// New returns the provider for the given name. An empty model selects the
// provider's default.
func New(name, model string) (Provider, error) {
	switch name {
	case NameOpenAI, "":
		return NewOpenAI(model), nil
	case NameAnthropic:
		return NewAnthropic(model), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
