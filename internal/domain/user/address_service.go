// internal/domain/user/address_service.go
package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
)

var ErrAddressNotFound = apperror.NotFound("Address not found")

const defaultCountry = "India"

// AddressService handles address business logic
type AddressService struct {
	addresses AddressRepository
	log       logrus.FieldLogger
}

// NewAddressService creates a new address service
func NewAddressService(addresses AddressRepository, log logrus.FieldLogger) *AddressService {
	return &AddressService{
		addresses: addresses,
		log:       log,
	}
}

// AddressRequest represents address create and update data
type AddressRequest struct {
	Type      AddressType `json:"type" binding:"required,oneof=home work other"`
	Name      string      `json:"name" binding:"required,min=2"`
	Line1     string      `json:"line1" binding:"required,min=5"`
	Line2     string      `json:"line2"`
	City      string      `json:"city" binding:"required,min=2"`
	State     string      `json:"state" binding:"required,min=2"`
	Pincode   string      `json:"pincode" binding:"required,min=6"`
	Country   string      `json:"country" binding:"omitempty,min=2"`
	Phone     string      `json:"phone" binding:"omitempty,min=10"`
	IsDefault bool        `json:"isDefault"`
}

func (r *AddressRequest) apply(a *Address) {
	a.Type = r.Type
	a.Name = strings.TrimSpace(r.Name)
	a.Line1 = strings.TrimSpace(r.Line1)
	a.Line2 = strings.TrimSpace(r.Line2)
	a.City = strings.TrimSpace(r.City)
	a.State = strings.TrimSpace(r.State)
	a.Pincode = strings.TrimSpace(r.Pincode)
	a.Country = strings.TrimSpace(r.Country)
	if a.Country == "" {
		a.Country = defaultCountry
	}
	a.Phone = strings.TrimSpace(r.Phone)
	a.IsDefault = r.IsDefault
}

// GetUserAddresses retrieves all addresses for a user, default first
func (s *AddressService) GetUserAddresses(ctx context.Context, userID uint) ([]Address, error) {
	addresses, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}
	if addresses == nil {
		addresses = []Address{}
	}
	return addresses, nil
}

// GetAddress retrieves a specific address for a user
func (s *AddressService) GetAddress(ctx context.Context, userID, addressID uint) (*Address, error) {
	return s.addresses.FindByID(ctx, userID, addressID)
}

// CreateAddress adds an address and returns the user's address list.
// The first address of a user always becomes the default.
func (s *AddressService) CreateAddress(ctx context.Context, userID uint, req *AddressRequest) ([]Address, error) {
	address := &Address{UserID: userID}
	req.apply(address)

	count, err := s.addresses.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count addresses: %w", err)
	}
	if count == 0 {
		address.IsDefault = true
	}

	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"address_id": address.ID,
	}).Debug("address created")

	return s.GetUserAddresses(ctx, userID)
}

// UpdateAddress replaces an address and returns the user's address list
func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID uint, req *AddressRequest) ([]Address, error) {
	address, err := s.addresses.FindByID(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	wasDefault := address.IsDefault
	req.apply(address)
	// An update never leaves the user without the default they had
	if wasDefault {
		address.IsDefault = true
	}

	if err := s.addresses.Update(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return s.GetUserAddresses(ctx, userID)
}

// DeleteAddress deletes an address and returns the remaining ones
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID uint) ([]Address, error) {
	if _, err := s.addresses.FindByID(ctx, userID, addressID); err != nil {
		return nil, err
	}

	if err := s.addresses.Delete(ctx, userID, addressID); err != nil {
		return nil, fmt.Errorf("failed to delete address: %w", err)
	}

	return s.GetUserAddresses(ctx, userID)
}

// SetDefaultAddress makes one address the user's only default
func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, addressID uint) ([]Address, error) {
	if _, err := s.addresses.FindByID(ctx, userID, addressID); err != nil {
		return nil, err
	}

	if err := s.addresses.SetDefault(ctx, userID, addressID); err != nil {
		return nil, fmt.Errorf("failed to set default address: %w", err)
	}

	return s.GetUserAddresses(ctx, userID)
}
