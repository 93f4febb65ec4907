package resource

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyResourceName   = errors.New("resource name cannot be empty")
	ErrNegativeUnitPrice   = errors.New("unit price cannot be negative")
	ErrInvalidCurrency     = errors.New("currency must be a 3-letter ISO code")
	ErrResourceNameTooLong = errors.New("resource name is too long (max 255 characters)")
)

const (
	MaxResourceNameLength = 255
)

// Resource is a bookable court as seen by the booking engine. It is owned by
// the catalog; only the fields the engine needs are carried.
type Resource struct {
	id        uuid.UUID
	venueID   uuid.UUID
	ownerID   uuid.UUID
	name      string
	unitPrice int64
	currency  string
}

func NewResource(id, venueID, ownerID uuid.UUID, name string, unitPrice int64, currency string) (*Resource, error) {
	if err := validateResourceName(name); err != nil {
		return nil, err
	}
	if unitPrice < 0 {
		return nil, ErrNegativeUnitPrice
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}

	return &Resource{
		id:        id,
		venueID:   venueID,
		ownerID:   ownerID,
		name:      strings.TrimSpace(name),
		unitPrice: unitPrice,
		currency:  currency,
	}, nil
}

func validateResourceName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyResourceName
	}
	if len(name) > MaxResourceNameLength {
		return ErrResourceNameTooLong
	}
	return nil
}

func (r *Resource) ID() uuid.UUID      { return r.id }
func (r *Resource) VenueID() uuid.UUID { return r.venueID }
func (r *Resource) OwnerID() uuid.UUID { return r.ownerID }
func (r *Resource) Name() string       { return r.name }
func (r *Resource) UnitPrice() int64   { return r.unitPrice }
func (r *Resource) Currency() string   { return r.currency }
