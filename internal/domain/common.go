package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mediashare/backend/internal/repository"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
	"gorm.io/gorm"
)

var validate = validator.New()

// validateRequest checks the validate tags of req and describes the first
// failing field.
func validateRequest(ctx context.Context, req any) error {
	err := validate.StructCtx(ctx, req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		field := validationErrs[0]
		return errorx.New(errorx.BadRequest, "Invalid %s (%s)",
			strings.ToLower(field.Field()), field.Tag())
	}

	xcontext.Logger(ctx).Errorf("Cannot validate request: %v", err)
	return errorx.Unknown
}

// repositoryError maps the errors of row-level protected repositories. Errors
// it does not know are logged with action and become errorx.Unknown.
func repositoryError(ctx context.Context, err error, action string) error {
	switch {
	case errors.Is(err, repository.ErrNoRequester):
		return errorx.New(errorx.Unauthenticated, "You need to sign in first")

	case errors.Is(err, repository.ErrNotOwner):
		return errorx.New(errorx.PermissionDenied, "You are not allowed to %s", action)

	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorx.New(errorx.NotFound, "Not found")
	}

	var errx errorx.Error
	if errors.As(err, &errx) {
		return errx
	}

	xcontext.Logger(ctx).Errorf("Cannot %s: %v", action, err)
	return errorx.Unknown
}
