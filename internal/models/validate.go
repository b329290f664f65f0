package models

import (
	"fmt"

	"github.com/vincentsto199-blip/Comic/internal/shared"
)

var errPageRange = fmt.Errorf("%w: page range requires both start and end", shared.ErrValidation)

func errBlank(field string) error {
	return fmt.Errorf("%w: %s is required", shared.ErrValidation, field)
}
