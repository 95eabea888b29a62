// Package model tracks the recognition model selected for handwriting
// recognition and the lifecycle of its download.
package model

import (
	"fmt"

	"golang.org/x/text/language"
)

// DefaultLanguageTag is the model selected when no explicit language is
// configured.
const DefaultLanguageTag = "en-US"

// Model identifies a recognition model by its language tag.
type Model struct {
	Tag language.Tag
}

// Parse builds a Model from a BCP-47 language tag string.
func Parse(tag string) (Model, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return Model{}, fmt.Errorf("parse language tag %q: %w", tag, err)
	}
	return Model{Tag: t}, nil
}

// MustParse is Parse for known-good tags; it panics on error.
func MustParse(tag string) Model {
	m, err := Parse(tag)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the canonical tag, e.g. "en-US".
func (m Model) String() string { return m.Tag.String() }

// Equal reports whether two models identify the same language tag.
func (m Model) Equal(o Model) bool { return m.Tag == o.Tag }

// DownloadState is the download lifecycle of a model.
type DownloadState int

const (
	StateNotRequested DownloadState = iota
	StateDownloading
	StateDownloaded
	StateFailed
)

// String returns a short human-readable state name.
func (s DownloadState) String() string {
	switch s {
	case StateNotRequested:
		return "not-requested"
	case StateDownloading:
		return "downloading"
	case StateDownloaded:
		return "downloaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
