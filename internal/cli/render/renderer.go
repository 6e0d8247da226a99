package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type Renderer[T any] interface {
	Render(result T) error
}

// JSONRenderer writes any result as indented JSON
type JSONRenderer[T any] struct {
	out io.Writer
}

// NewJSONRenderer creates a new JSON renderer
func NewJSONRenderer[T any](out io.Writer) *JSONRenderer[T] {
	return &JSONRenderer[T]{out: out}
}

func (r *JSONRenderer[T]) Render(result T) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(r.out, string(data))
	return err
}

// YAMLRenderer writes a result as YAML through its JSON form, so both outputs share field names
type YAMLRenderer[T any] struct {
	out io.Writer
}

// NewYAMLRenderer creates a new YAML renderer
func NewYAMLRenderer[T any](out io.Writer) *YAMLRenderer[T] {
	return &YAMLRenderer[T]{out: out}
}

func (r *YAMLRenderer[T]) Render(result T) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to convert result: %w", err)
	}
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}

// funcRenderer adapts a render function to Renderer
type funcRenderer[T any] func(T) error

func (f funcRenderer[T]) Render(result T) error { return f(result) }

// Select returns the JSON renderer when asJSON is set, otherwise the human one
func Select[T any](out io.Writer, asJSON bool, human func(T) error) Renderer[T] {
	if asJSON {
		return NewJSONRenderer[T](out)
	}
	return funcRenderer[T](human)
}
