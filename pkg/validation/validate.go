// Package validation holds the request DTOs and their validation rules.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"boardd/pkg/boarderr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateUserRequest creates a user row.
type CreateUserRequest struct {
	UserID          string  `json:"user_id" validate:"required,max=255,excludes=:"`
	Username        string  `json:"username" validate:"required,max=255"`
	ProfileImageURL *string `json:"profile_image_url,omitempty" validate:"omitempty,url,max=2083"`
}

// CreateThreadRequest creates a thread. GenreTag may be empty; threads
// without a genre store the empty string.
type CreateThreadRequest struct {
	ThreadName string `json:"thread_name" validate:"required,max=255"`
	GenreTag   string `json:"genre_tag" validate:"omitempty,max=100"`
}

// CreatePostRequest appends a post to a thread. UserID may be empty; the
// post is then attributed to the guest user.
type CreatePostRequest struct {
	ThreadID string  `json:"thread_id" validate:"required,max=255"`
	UserID   string  `json:"user_id" validate:"omitempty,max=255"`
	Content  string  `json:"content" validate:"required"`
	ImageURL *string `json:"image_url,omitempty" validate:"omitempty,url,max=2083"`
}

// ReactRequest increments a reaction counter.
type ReactRequest struct {
	ThreadID string `json:"thread_id" validate:"required,max=255,excludes=:"`
	PostID   string `json:"post_id" validate:"required,max=255,excludes=:"`
	Kind     string `json:"kind" validate:"required,alphanum,max=32"`
}

// Struct validates a DTO, folding failures into the validation error
// class with a readable field list.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", boarderr.ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", boarderr.ErrValidation, err)
}
