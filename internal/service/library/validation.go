package library

import (
	"errors"
	"fmt"
	"regexp"

	"sanctum/internal/config"
	"sanctum/internal/domain"
	models "sanctum/internal/domain/models/library"
	librarySvc "sanctum/internal/domain/services/library"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var noSlashes = validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("name cannot contain slashes")

var validKind = validation.By(func(value interface{}) error {
	var k models.Kind
	switch v := value.(type) {
	case models.Kind:
		k = v
	case *models.Kind:
		if v == nil {
			return nil
		}
		k = *v
	}
	if !k.Valid() {
		return errors.New("unknown node type")
	}
	return nil
})

func validateCreateRequest(req *librarySvc.CreateNodeRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ParentID, validation.Required.Error("parentId is required")),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxNodeNameLength),
			noSlashes,
		),
		validation.Field(&req.Type, validation.Required, validKind),
		validation.Field(&req.Version, validation.Min(int64(0))),
	)
}

func validatePatch(patch *models.NodePatch) error {
	return validation.ValidateStruct(patch,
		validation.Field(&patch.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxNodeNameLength),
			noSlashes,
		),
		validation.Field(&patch.Kind, validKind),
		validation.Field(&patch.ParentID, validation.NilOrNotEmpty),
		validation.Field(&patch.Version, validation.Min(int64(0))),
	)
}

// checkPayload rejects content or url the node's resulting kind cannot carry
func checkPayload(stored models.Kind, patch *models.NodePatch) error {
	kind := stored
	if patch.Kind != nil {
		kind = *patch.Kind
	}
	if patch.Content != nil && !kind.HasContent() {
		return fmt.Errorf("%w: %s nodes have no content", domain.ErrValidation, kind)
	}
	if patch.ExternalRef != nil && !kind.HasExternalRef() {
		return fmt.Errorf("%w: %s nodes have no url", domain.ErrValidation, kind)
	}
	return nil
}
