package links

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// CreateLinkInput carries the validated fields for a new link.
type CreateLinkInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	URL         string `json:"url" validate:"required,url"`
	Icon        string `json:"icon" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	MediaURL    string `json:"media_url" validate:"omitempty,url"`
	MediaType   string `json:"media_type" validate:"omitempty,oneof=image video"`
	Position    int    `json:"position" validate:"gte=0"`
	IsActive    bool   `json:"is_active"`
}

// UpdateLinkInput carries the validated fields for a link update. All
// fields are written; partial updates are expressed by sending the current
// value back.
type UpdateLinkInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	URL         string `json:"url" validate:"required,url"`
	Icon        string `json:"icon" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	MediaURL    string `json:"media_url" validate:"omitempty,url"`
	MediaType   string `json:"media_type" validate:"omitempty,oneof=image video"`
	IsActive    bool   `json:"is_active"`
}

// SocialLinkInput carries the validated fields for a social link.
type SocialLinkInput struct {
	Platform string `json:"platform" validate:"required,oneof=twitter x instagram tiktok youtube twitch github linkedin facebook email website"`
	URL      string `json:"url" validate:"required,url"`
	Position int    `json:"position" validate:"gte=0"`
}

// ValidationError reports which fields of an input failed which rule.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, rule := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, rule))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateInput runs struct-tag validation and converts failures into a
// ValidationError.
func ValidateInput(input any) error {
	err := getValidator().Struct(input)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}
