package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"tasks-lab/errors"
)

var validate = validator.New()

// ValidateCommand checks the envelope and the command message against their constraints.
func ValidateCommand(env CommandEnvelope) error {
	if env.Message == nil {
		return fmt.Errorf("%w: empty message", errors.ErrInvalidCommand)
	}
	if err := validate.Struct(env.Context); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	if err := validate.Struct(env.Message); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	return nil
}
