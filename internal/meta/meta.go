// Package meta parses and validates the JSON metadata payload a plugin
// module exports, and implements the semantic-version compatibility rule
// used for dependency checking.
package meta

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/hoistdev/hoist/api"
)

var (
	// ErrInvalid is returned for any payload that cannot be accepted:
	// unparsable JSON, a missing required field, an invalid plugin name
	// or an incompatible API version.
	ErrInvalid = errors.New("invalid plugin metadata")
)

// rawMetadata mirrors api.Metadata with pointers so that absent fields can
// be told apart from empty ones.
type rawMetadata struct {
	API          *string          `json:"api"`
	Name         *string          `json:"name"`
	PrettyName   *string          `json:"prettyName"`
	Version      *string          `json:"version"`
	Author       *string          `json:"author"`
	URL          *string          `json:"url"`
	License      *string          `json:"license"`
	Copyright    *string          `json:"copyright"`
	Dependencies []api.Dependency `json:"dependencies"`
}

// Parse decodes a metadata payload. On any failure it returns the zero
// Metadata and an error wrapping ErrInvalid; it never returns a partially
// filled value.
func Parse(payload []byte) (api.Metadata, error) {
	var raw rawMetadata
	if err := json.Unmarshal(payload, &raw); err != nil {
		return api.Metadata{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	required := map[string]*string{
		"api":        raw.API,
		"name":       raw.Name,
		"prettyName": raw.PrettyName,
		"version":    raw.Version,
		"author":     raw.Author,
		"url":        raw.URL,
		"license":    raw.License,
		"copyright":  raw.Copyright,
	}
	for field, val := range required {
		if val == nil {
			return api.Metadata{}, fmt.Errorf("%w: missing field %q", ErrInvalid, field)
		}
	}

	if !api.ValidName(*raw.Name) {
		return api.Metadata{}, fmt.Errorf("%w: bad plugin name %q", ErrInvalid, *raw.Name)
	}
	if !Compatible(*raw.API, api.Version) {
		return api.Metadata{}, fmt.Errorf("%w: plugin api %q incompatible with host api %q",
			ErrInvalid, *raw.API, api.Version)
	}
	if _, err := semver.NewVersion(*raw.Version); err != nil {
		return api.Metadata{}, fmt.Errorf("%w: bad version %q", ErrInvalid, *raw.Version)
	}
	for _, dep := range raw.Dependencies {
		if !api.ValidName(dep.Name) {
			return api.Metadata{}, fmt.Errorf("%w: bad dependency name %q", ErrInvalid, dep.Name)
		}
	}

	return api.Metadata{
		API:          *raw.API,
		Name:         *raw.Name,
		PrettyName:   *raw.PrettyName,
		Version:      *raw.Version,
		Author:       *raw.Author,
		URL:          *raw.URL,
		License:      *raw.License,
		Copyright:    *raw.Copyright,
		Dependencies: raw.Dependencies,
	}, nil
}

// Compatible reports whether candidate satisfies the required minimum:
// same major component and candidate >= min under semver ordering.
// Malformed versions are never compatible.
func Compatible(candidate, min string) bool {
	cv, err := semver.NewVersion(candidate)
	if err != nil {
		return false
	}
	mv, err := semver.NewVersion(min)
	if err != nil {
		return false
	}
	return cv.Major() == mv.Major() && !cv.LessThan(mv)
}
