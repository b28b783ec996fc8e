// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package articledef reads article definitions authored on disk as
// JSONC (JSON with comments and trailing commas) and turns them into
// service inputs.
//
// A definition without a key creates a new article; one with a key
// edits that article. The JSON written by `inkstand export` is itself
// a valid definition, so an exported article can be edited and read
// back in.
//
//	{
//	  // Omit "key" to create.
//	  "title": "Release notes",
//	  "contentFile": "release-notes.md",
//	  "tags": ["go", "release",],
//	}
package articledef

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/inkstand/inkstand/lib/article"
)

// Definition is one article as authored in a JSONC file.
type Definition struct {
	// Key selects the article to edit. Empty means create.
	Key string `json:"key,omitempty"`

	Title        string   `json:"title"`
	Content      string   `json:"content,omitempty"`
	Introduction string   `json:"introduction,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	// ContentFile names a markdown file holding the content, relative
	// to the definition file. Mutually exclusive with Content.
	ContentFile string `json:"contentFile,omitempty"`

	// Published, when set on an edit, sets the publish state.
	Published *bool `json:"published,omitempty"`

	// CreateDate is carried by exported records. It must match the
	// stored value on edit.
	CreateDate *time.Time `json:"createDate,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Definition. Fields it does not know,
// such as the history carried by exported records, are ignored.
func Parse(data []byte) (*Definition, error) {
	var definition Definition
	if err := json.Unmarshal(jsonc.ToJSON(data), &definition); err != nil {
		return nil, fmt.Errorf("parsing article definition: %w", err)
	}
	return &definition, nil
}

// ReadFile reads and parses a definition file, loads its ContentFile
// if any, and validates the result.
func ReadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	definition, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := definition.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if definition.ContentFile != "" {
		contentPath := definition.ContentFile
		if !filepath.IsAbs(contentPath) {
			contentPath = filepath.Join(filepath.Dir(path), contentPath)
		}
		content, err := os.ReadFile(contentPath)
		if err != nil {
			return nil, fmt.Errorf("%s: reading content file: %w", path, err)
		}
		definition.Content = string(content)
		definition.ContentFile = ""
	}

	return definition, nil
}

// Validate reports structural problems: a malformed key, content given
// both inline and by file, or empty or repeated tags.
func (d *Definition) Validate() error {
	var errs []error

	if d.Key != "" && !article.ValidKey(d.Key) {
		errs = append(errs, fmt.Errorf("key %q is not %d lowercase letters or digits", d.Key, article.KeyLength))
	}
	if d.Content != "" && d.ContentFile != "" {
		errs = append(errs, errors.New("content and contentFile are mutually exclusive"))
	}
	if d.Key == "" && d.Published != nil {
		errs = append(errs, errors.New("published applies only to edits; new articles start as drafts"))
	}

	seen := make(map[string]bool, len(d.Tags))
	for _, tag := range d.Tags {
		switch {
		case strings.TrimSpace(tag) == "":
			errs = append(errs, errors.New("tags must not be empty"))
		case seen[tag]:
			errs = append(errs, fmt.Errorf("tag %q listed twice", tag))
		}
		seen[tag] = true
	}

	return errors.Join(errs...)
}

// IsEdit reports whether the definition targets an existing article.
func (d *Definition) IsEdit() bool {
	return d.Key != ""
}

func (d *Definition) fields() article.Fields {
	return article.Fields{
		Title:        d.Title,
		Content:      d.Content,
		Introduction: d.Introduction,
		Tags:         d.Tags,
	}
}

// CreateInput converts the definition for Service.Create.
func (d *Definition) CreateInput() article.CreateInput {
	return article.CreateInput{Fields: d.fields()}
}

// EditInput converts the definition for Service.Edit.
func (d *Definition) EditInput() article.EditInput {
	return article.EditInput{
		Key:        d.Key,
		Fields:     d.fields(),
		CreateDate: d.CreateDate,
		Published:  d.Published,
	}
}
