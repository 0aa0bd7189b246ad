package collab

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Backend names accepted by New.
const (
	BackendStatic  = "static"
	BackendOllama  = "ollama"
	BackendCommand = "command"
)

// New builds a collaborator from a backend name and its raw option map (as
// decoded from YAML).
func New(backend string, options map[string]any) (Collaborator, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendStatic:
		return Static{}, nil
	case BackendOllama:
		var opts OllamaOptions
		if err := mapstructure.Decode(options, &opts); err != nil {
			return nil, fmt.Errorf("decode ollama options: %w", err)
		}
		return NewOllama(opts, &http.Client{}), nil
	case BackendCommand:
		var opts CommandOptions
		if err := mapstructure.Decode(options, &opts); err != nil {
			return nil, fmt.Errorf("decode command options: %w", err)
		}
		return NewCommand(opts)
	}
	return nil, fmt.Errorf("unknown collaborator backend %q", backend)
}
