// Package typeid issues the prefixed, sortable identifiers used for
// sessions, user layers and committed shapes.
package typeid

import (
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixSession = "sess"
	PrefixLayer   = "layer"
	PrefixShape   = "shp"
)

var ErrInvalidID = errors.New("invalid id")

func New(prefix string) string {
	return typeid.MustGenerate(prefix).String()
}

func NewSessionID() string { return New(PrefixSession) }
func NewLayerID() string   { return New(PrefixLayer) }
func NewShapeID() string   { return New(PrefixShape) }

// Prefix returns the type prefix of id.
func Prefix(id string) (string, error) {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return parsed.Prefix(), nil
}

// Validate checks that id parses and carries the wanted prefix. Both
// failures wrap ErrInvalidID.
func Validate(id, want string) error {
	got, err := Prefix(id)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %q has prefix %q, want %q", ErrInvalidID, id, got, want)
	}
	return nil
}
