// Package settings stores per-user preference documents.
package settings

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"

	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

//go:embed schema.json
var schemaJSON []byte

// Defaults is returned to users who never saved settings.
var Defaults = json.RawMessage(`{"university":"","currentYear":"","passingYear":"","github":"","linkedin":"","darkMode":false,"notifications":true,"profilePictureUrl":null}`)

type Service struct {
	repo   repository.SettingsRepo
	schema *jsonschema.Schema
}

func NewService(repo repository.SettingsRepo) (*Service, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(schemaJSON, rs); err != nil {
		return nil, fmt.Errorf("compile settings schema: %w", err)
	}
	return &Service{repo: repo, schema: rs}, nil
}

func (s *Service) Get(ctx context.Context, userID string) (json.RawMessage, error) {
	doc, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if doc == nil {
		return Defaults, nil
	}
	return doc, nil
}

// Put validates doc and replaces the stored document.
func (s *Service) Put(ctx context.Context, userID string, doc json.RawMessage) (json.RawMessage, error) {
	if !json.Valid(doc) {
		return nil, apperr.Invalid("body", "must be valid JSON")
	}
	verrs, err := s.schema.ValidateBytes(ctx, doc)
	if err != nil {
		return nil, apperr.Invalid("body", err.Error())
	}
	if len(verrs) > 0 {
		ve := &apperr.ValidationError{Fields: map[string]string{}}
		for _, ke := range verrs {
			path := ke.PropertyPath
			if path == "" || path == "/" {
				path = "body"
			}
			ve.Fields[path] = ke.Message
		}
		return nil, ve
	}
	if err := s.repo.PutSettings(ctx, userID, doc); err != nil {
		return nil, fmt.Errorf("put settings: %w", err)
	}
	return doc, nil
}
