package controller

import "errors"

// Validator is implemented by request DTOs with their own checks.
type Validator interface {
	Validate() error
}

// ValidateDTO runs dto's Validate and wraps plain errors in a validation
// AppError. Errors that already are AppErrors pass through.
func ValidateDTO(dto Validator) error {
	if dto == nil {
		return NewValidationErrorWithCode("validation.dto_nil", "request cannot be empty", nil)
	}
	err := dto.Validate()
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return NewValidationError(err.Error(), nil)
}
