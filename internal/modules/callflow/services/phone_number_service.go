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
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/repositories"
)

type AssignNumberRequest struct {
	CountryCode     string `json:"country_code"`
	Provider        string `json:"provider,omitempty"`
	WhatsAppEnabled bool   `json:"whatsapp_enabled"`
}

// PhoneNumberService attaches provider-issued virtual numbers to locations.
type PhoneNumberService struct {
	numbers   repositories.PhoneNumberRepo
	locations repositories.LocationRepo
	gateway   NumberGateway
	audit     AuditRecorder
	now       func() time.Time
}

func NewPhoneNumberService(numbers repositories.PhoneNumberRepo, locations repositories.LocationRepo, gateway NumberGateway, audit AuditRecorder) *PhoneNumberService {
	return &PhoneNumberService{
		numbers:   numbers,
		locations: locations,
		gateway:   gateway,
		audit:     audit,
		now:       time.Now,
	}
}

// AssignVirtualNumber issues a number and stores it for the location. If
// the record cannot be stored the number is handed back to the provider.
func (s *PhoneNumberService) AssignVirtualNumber(ctx context.Context, ownerID, locationID uuid.UUID, req AssignNumberRequest) (*models.PhoneNumber, error) {
	countryCode := strings.ToUpper(strings.TrimSpace(req.CountryCode))
	if countryCode == "" {
		return nil, fmt.Errorf("%w: country_code is required", ErrInvalidInput)
	}

	location, err := s.locations.FindByID(ctx, locationID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && location.OwnerID != ownerID) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}

	res := s.gateway.GenerateVirtualNumber(ctx, req.Provider, countryCode)
	if !res.Success {
		return nil, res.Err()
	}

	number := &models.PhoneNumber{
		OwnerID:         ownerID,
		LocationID:      location.ID,
		Number:          res.Number,
		CountryCode:     countryCode,
		Provider:        res.Provider,
		SMSEnabled:      true,
		WhatsAppEnabled: req.WhatsAppEnabled,
	}
	if err := s.numbers.Create(ctx, number); err != nil {
		release := s.gateway.ReleaseVirtualNumber(context.WithoutCancel(ctx), res.Provider, res.Number)
		if !release.Success {
			log.Error().
				Str("provider", res.Provider).
				Str("number", res.Number).
				Str("error", release.Error).
				Msg("failed to release number after storage failure")
		}
		return nil, fmt.Errorf("%w: %w", ErrCreationFailed, err)
	}

	if err := s.audit.LogChange(ctx, ownerID, audit.ActionNumberAssigned, "phone_number", number.ID.String(), nil, number); err != nil {
		log.Error().Err(err).Str("phone_number_id", number.ID.String()).Msg("failed to audit number assignment")
	}
	return number, nil
}

// ReleaseVirtualNumber gives the number back to its provider and marks the
// record released.
func (s *PhoneNumberService) ReleaseVirtualNumber(ctx context.Context, ownerID, id uuid.UUID) (*models.PhoneNumber, error) {
	number, err := s.numbers.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && (number.OwnerID != ownerID || number.ReleasedAt != nil)) {
		return nil, ErrPhoneNumberNotFound
	}
	if err != nil {
		return nil, err
	}

	res := s.gateway.ReleaseVirtualNumber(ctx, number.Provider, number.Number)
	if !res.Success {
		return nil, res.Err()
	}

	at := s.now().UTC()
	if err := s.numbers.MarkReleased(ctx, number.ID, at); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPhoneNumberNotFound
		}
		return nil, err
	}
	old := *number
	number.ReleasedAt = &at

	if err := s.audit.LogChange(ctx, ownerID, audit.ActionNumberReleased, "phone_number", number.ID.String(), old, number); err != nil {
		log.Error().Err(err).Str("phone_number_id", number.ID.String()).Msg("failed to audit number release")
	}
	return number, nil
}
