package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/nueve-shop/api/internal/domain"
	"github.com/nueve-shop/api/internal/repositories"
)

const addressIDPrefix = "adr_"

var (
	// ErrAddressInvalidInput signals the caller provided invalid address data.
	ErrAddressInvalidInput = errors.New("address: invalid input")
	// ErrAddressNotFound indicates the address does not exist for the user.
	ErrAddressNotFound = errors.New("address: not found")
	// ErrAddressInUse indicates the address is referenced by existing orders.
	ErrAddressInUse = errors.New("address: referenced by orders")
)

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// AddressServiceDeps bundles collaborators for the address service.
type AddressServiceDeps struct {
	Addresses  repositories.AddressRepository
	UnitOfWork repositories.UnitOfWork
	Clock      func() time.Time
	IDGen      func() string
}

type addressService struct {
	addresses  repositories.AddressRepository
	unitOfWork repositories.UnitOfWork
	clock      func() time.Time
	newID      func() string
}

// NewAddressService wires dependencies into a concrete AddressService.
func NewAddressService(deps AddressServiceDeps) (AddressService, error) {
	if deps.Addresses == nil {
		return nil, errors.New("address service: address repository is required")
	}
	if deps.UnitOfWork == nil {
		return nil, errors.New("address service: unit of work is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &addressService{
		addresses:  deps.Addresses,
		unitOfWork: deps.UnitOfWork,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

func (s *addressService) List(ctx context.Context, userID string) ([]domain.Address, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrAddressInvalidInput)
	}
	return s.addresses.ListByUser(ctx, userID)
}

// Create inserts an address. When the new address is flagged as default, or
// the user has none yet, previous defaults are cleared in the same unit of
// work so at most one default survives.
func (s *addressService) Create(ctx context.Context, cmd UpsertAddressCommand) (domain.Address, error) {
	if err := validateAddressInput(cmd); err != nil {
		return domain.Address{}, err
	}

	existing, err := s.addresses.ListByUser(ctx, cmd.UserID)
	if err != nil {
		return domain.Address{}, err
	}

	now := s.clock()
	address := addressFromCommand(cmd)
	address.ID = addressIDPrefix + s.newID()
	address.CreatedAt = now
	address.UpdatedAt = now
	if len(existing) == 0 {
		// The first address always becomes the default.
		address.IsDefault = true
	}

	err = s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		if address.IsDefault {
			if err := s.addresses.ClearDefaults(txCtx, cmd.UserID, ""); err != nil {
				return err
			}
		}
		return s.addresses.Insert(txCtx, address)
	})
	if err != nil {
		return domain.Address{}, err
	}

	return address, nil
}

func (s *addressService) Update(ctx context.Context, cmd UpsertAddressCommand) (domain.Address, error) {
	if strings.TrimSpace(cmd.AddressID) == "" {
		return domain.Address{}, fmt.Errorf("%w: address id is required", ErrAddressInvalidInput)
	}
	if err := validateAddressInput(cmd); err != nil {
		return domain.Address{}, err
	}

	current, err := s.addresses.FindByID(ctx, cmd.UserID, cmd.AddressID)
	if err != nil {
		if isNotFound(err) {
			return domain.Address{}, fmt.Errorf("%w: %s", ErrAddressNotFound, cmd.AddressID)
		}
		return domain.Address{}, err
	}

	address := addressFromCommand(cmd)
	address.ID = current.ID
	address.CreatedAt = current.CreatedAt
	address.UpdatedAt = s.clock()

	err = s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		if address.IsDefault {
			if err := s.addresses.ClearDefaults(txCtx, cmd.UserID, address.ID); err != nil {
				return err
			}
		}
		return s.addresses.Update(txCtx, address)
	})
	if err != nil {
		if isNotFound(err) {
			return domain.Address{}, fmt.Errorf("%w: %s", ErrAddressNotFound, cmd.AddressID)
		}
		return domain.Address{}, err
	}

	return address, nil
}

func (s *addressService) Delete(ctx context.Context, userID, addressID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(addressID) == "" {
		return fmt.Errorf("%w: user id and address id are required", ErrAddressInvalidInput)
	}

	err := s.addresses.Delete(ctx, userID, addressID)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", ErrAddressNotFound, addressID)
		}
		if isConflict(err) {
			return fmt.Errorf("%w: %s", ErrAddressInUse, addressID)
		}
		return err
	}
	return nil
}

// SetDefault promotes the given address to the user's single default.
func (s *addressService) SetDefault(ctx context.Context, userID, addressID string) (domain.Address, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(addressID) == "" {
		return domain.Address{}, fmt.Errorf("%w: user id and address id are required", ErrAddressInvalidInput)
	}

	address, err := s.addresses.FindByID(ctx, userID, addressID)
	if err != nil {
		if isNotFound(err) {
			return domain.Address{}, fmt.Errorf("%w: %s", ErrAddressNotFound, addressID)
		}
		return domain.Address{}, err
	}

	err = s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.addresses.ClearDefaults(txCtx, userID, addressID); err != nil {
			return err
		}
		return s.addresses.MarkDefault(txCtx, userID, addressID)
	})
	if err != nil {
		return domain.Address{}, err
	}

	address.IsDefault = true
	address.UpdatedAt = s.clock()
	return address, nil
}

func addressFromCommand(cmd UpsertAddressCommand) domain.Address {
	return domain.Address{
		UserID:       cmd.UserID,
		Name:         strings.TrimSpace(cmd.Name),
		Phone:        strings.TrimSpace(cmd.Phone),
		AddressLine1: strings.TrimSpace(cmd.AddressLine1),
		AddressLine2: trimOptional(cmd.AddressLine2),
		City:         strings.TrimSpace(cmd.City),
		State:        strings.TrimSpace(cmd.State),
		Pincode:      strings.TrimSpace(cmd.Pincode),
		IsDefault:    cmd.IsDefault,
	}
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateAddressInput(cmd UpsertAddressCommand) error {
	if strings.TrimSpace(cmd.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrAddressInvalidInput)
	}
	if l := len(strings.TrimSpace(cmd.Name)); l < 2 || l > 100 {
		return fmt.Errorf("%w: name must be between 2 and 100 characters", ErrAddressInvalidInput)
	}
	if strings.TrimSpace(cmd.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrAddressInvalidInput)
	}
	if l := len(strings.TrimSpace(cmd.AddressLine1)); l < 5 || l > 255 {
		return fmt.Errorf("%w: address line 1 must be between 5 and 255 characters", ErrAddressInvalidInput)
	}
	if l := len(strings.TrimSpace(cmd.City)); l < 2 || l > 100 {
		return fmt.Errorf("%w: city must be between 2 and 100 characters", ErrAddressInvalidInput)
	}
	if l := len(strings.TrimSpace(cmd.State)); l < 2 || l > 100 {
		return fmt.Errorf("%w: state must be between 2 and 100 characters", ErrAddressInvalidInput)
	}
	if !pincodePattern.MatchString(strings.TrimSpace(cmd.Pincode)) {
		return fmt.Errorf("%w: pincode must be a 6 digit code", ErrAddressInvalidInput)
	}
	return nil
}
