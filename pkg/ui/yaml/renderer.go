// Package yaml renders results as YAML documents
package yaml

import (
	"io"

	"github.com/arthur-debert/dotfiles/pkg/ui/view"
	"gopkg.in/yaml.v3"
)

// Renderer writes one YAML document per call
type Renderer struct {
	output io.Writer
}

// New creates a new YAML renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult encodes the view of result
func (r *Renderer) RenderResult(result interface{}) error {
	return r.encode(view.Convert(result))
}

// RenderError encodes the error under an "error" key
func (r *Renderer) RenderError(err error) error {
	return r.encode(map[string]interface{}{"error": view.NewError(err)})
}

// RenderMessage encodes a message object
func (r *Renderer) RenderMessage(msg string) error {
	return r.encode(view.Message{Message: msg})
}

func (r *Renderer) encode(v interface{}) error {
	enc := yaml.NewEncoder(r.output)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
