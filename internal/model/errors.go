package model

import "errors"

// ErrValidation marks input that was rejected before any orchestration or
// persistence happened. Wrap with the field-level detail:
//
//	fmt.Errorf("%w: %s", model.ErrValidation, err)
var ErrValidation = errors.New("invalid input")
