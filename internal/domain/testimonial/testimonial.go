package testimonial

import "strings"

const (
	MaxNameLen         = 20
	MaxOrganizationLen = 20
	MaxTextLen         = 50

	MinRating = 1
	MaxRating = 5
)

// Row is a persisted testimonial as stored and emitted by the data gateway.
// CreatedAt is gateway-assigned RFC3339 text and is not used for ordering.
type Row struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Rating       int    `json:"rating"`
	Text         string `json:"text"`
	CreatedAt    string `json:"createdAt"`
}

// Draft is a client-composed testimonial before the gateway assigns
// id and createdAt.
type Draft struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Rating       int    `json:"rating"`
	Text         string `json:"text"`
}

// Normalized returns the draft with surrounding whitespace trimmed.
func (d Draft) Normalized() Draft {
	return Draft{
		Name:         strings.TrimSpace(d.Name),
		Organization: strings.TrimSpace(d.Organization),
		Rating:       d.Rating,
		Text:         strings.TrimSpace(d.Text),
	}
}

// Validate checks the draft after trimming. Checks run in a fixed order and
// stop at the first failure so the surfaced message is deterministic:
// required fields first, then lengths, then the rating range.
func (d Draft) Validate() error {
	n := d.Normalized()

	if n.Name == "" {
		return ErrNameRequired
	}
	if n.Organization == "" {
		return ErrOrganizationRequired
	}
	if n.Text == "" {
		return ErrTextRequired
	}

	if len([]rune(n.Name)) > MaxNameLen {
		return ErrNameTooLong
	}
	if len([]rune(n.Organization)) > MaxOrganizationLen {
		return ErrOrganizationTooLong
	}
	if len([]rune(n.Text)) > MaxTextLen {
		return ErrTextTooLong
	}

	if n.Rating < MinRating || n.Rating > MaxRating {
		return ErrRatingOutOfRange
	}
	return nil
}
