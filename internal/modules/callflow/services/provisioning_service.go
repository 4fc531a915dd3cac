package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/credit"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/repositories"
)

// CreditReserver is the part of the credit ledger provisioning depends on.
type CreditReserver interface {
	Reserve(ctx context.Context, ownerID uuid.UUID, planType string) (*credit.Reservation, error)
	Release(ctx context.Context, reservation *credit.Reservation) error
}

type LocationAttrs struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Timezone string `json:"timezone"`
	// RequestKey makes a creation attempt idempotent per owner.
	RequestKey string `json:"request_key,omitempty"`
}

// ProvisioningService creates locations against purchased credit.
type ProvisioningService struct {
	ledger    CreditReserver
	locations repositories.LocationRepo
	audit     AuditRecorder
}

func NewProvisioningService(ledger CreditReserver, locations repositories.LocationRepo, audit AuditRecorder) *ProvisioningService {
	return &ProvisioningService{
		ledger:    ledger,
		locations: locations,
		audit:     audit,
	}
}

// Provision reserves one credit of planType and creates the location.
// When the write fails the credit is released again and the error wraps
// ErrCreationFailed. A reservation failure returns credit.ErrInsufficientCredit
// with nothing changed.
func (s *ProvisioningService) Provision(ctx context.Context, ownerID uuid.UUID, planType string, attrs LocationAttrs) (*models.Location, error) {
	if err := normalizeAttrs(ownerID, planType, &attrs); err != nil {
		return nil, err
	}

	if attrs.RequestKey != "" {
		existing, err := s.locations.FindByRequestKey(ctx, ownerID, attrs.RequestKey)
		if err == nil {
			log.Info().Str("owner_id", ownerID.String()).Str("request_key", attrs.RequestKey).Msg("location already provisioned for request key")
			return existing, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up request key: %w", err)
		}
	}

	reservation, err := s.ledger.Reserve(ctx, ownerID, planType)
	if err != nil {
		return nil, err
	}

	location := &models.Location{
		OwnerID:  ownerID,
		PlanType: reservation.PlanType,
		Name:     attrs.Name,
		Address:  attrs.Address,
		Timezone: attrs.Timezone,
	}
	if attrs.RequestKey != "" {
		key := attrs.RequestKey
		location.RequestKey = &key
	}

	if err := s.locations.Create(ctx, location); err != nil {
		s.compensate(ctx, reservation)

		if errors.Is(err, repositories.ErrDuplicate) && attrs.RequestKey != "" {
			winner, findErr := s.locations.FindByRequestKey(ctx, ownerID, attrs.RequestKey)
			if findErr == nil {
				return winner, nil
			}
			err = findErr
		}
		return nil, fmt.Errorf("%w: %w", ErrCreationFailed, err)
	}

	log.Info().
		Str("owner_id", ownerID.String()).
		Str("plan_type", location.PlanType).
		Str("location_id", location.ID.String()).
		Msg("location provisioned")

	if err := s.audit.LogChange(ctx, ownerID, audit.ActionLocationProvisioned, "location", location.ID.String(), nil, location); err != nil {
		log.Error().Err(err).Str("location_id", location.ID.String()).Msg("failed to audit provisioning")
	}
	return location, nil
}

// List returns the owner's locations, oldest first.
func (s *ProvisioningService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Location, error) {
	return s.locations.FindByOwner(ctx, ownerID)
}

// compensate releases a reservation whose location was never created. It
// runs detached from ctx so a cancelled request still gives the credit back.
func (s *ProvisioningService) compensate(ctx context.Context, reservation *credit.Reservation) {
	ctx = context.WithoutCancel(ctx)

	if err := s.ledger.Release(ctx, reservation); err != nil {
		log.Error().
			Err(err).
			Str("owner_id", reservation.OwnerID.String()).
			Str("entry_id", reservation.EntryID.String()).
			Msg("failed to release credit after provisioning failure")
		return
	}

	if err := s.audit.LogChange(ctx, reservation.OwnerID, audit.ActionCreditReleased, "credit_entry", reservation.EntryID.String(), nil, reservation); err != nil {
		log.Error().Err(err).Msg("failed to audit credit release")
	}
}

func normalizeAttrs(ownerID uuid.UUID, planType string, attrs *LocationAttrs) error {
	if ownerID == uuid.Nil {
		return fmt.Errorf("%w: owner_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(planType) == "" {
		return fmt.Errorf("%w: plan_type is required", ErrInvalidInput)
	}

	attrs.Name = strings.TrimSpace(attrs.Name)
	attrs.Address = strings.TrimSpace(attrs.Address)
	attrs.Timezone = strings.TrimSpace(attrs.Timezone)
	attrs.RequestKey = strings.TrimSpace(attrs.RequestKey)

	if attrs.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if attrs.Timezone == "" {
		attrs.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(attrs.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, attrs.Timezone)
	}
	return nil
}
