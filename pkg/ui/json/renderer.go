// Package json renders results as indented JSON documents
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/dotfiles/pkg/ui/view"
)

// Renderer writes one JSON document per call
type Renderer struct {
	encoder *json.Encoder
}

// New creates a new JSON renderer
func New(output io.Writer) (*Renderer, error) {
	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	return &Renderer{encoder: enc}, nil
}

// RenderResult encodes the view of result
func (r *Renderer) RenderResult(result interface{}) error {
	return r.encoder.Encode(view.Convert(result))
}

// RenderError encodes the error under an "error" key
func (r *Renderer) RenderError(err error) error {
	return r.encoder.Encode(map[string]interface{}{"error": view.NewError(err)})
}

// RenderMessage encodes a message object
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(view.Message{Message: msg})
}
