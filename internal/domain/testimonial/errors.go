package testimonial

import "errors"

var (
	ErrNameRequired         = errors.New("name is required")
	ErrOrganizationRequired = errors.New("organization is required")
	ErrTextRequired         = errors.New("text is required")

	ErrNameTooLong         = errors.New("name must be at most 20 characters")
	ErrOrganizationTooLong = errors.New("organization must be at most 20 characters")
	ErrTextTooLong         = errors.New("text must be at most 50 characters")

	ErrRatingOutOfRange = errors.New("select a rating between 1 and 5")
)
