package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Milo-adonos/SilentView/internal/contexts"
	"github.com/Milo-adonos/SilentView/internal/data/repos"
	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

const MaxAlerts = 5

var (
	msgAlertLimit  = fmt.Sprintf("Vous avez atteint la limite de %d alertes", MaxAlerts)
	msgAlertExists = "Cette alerte existe déjà"
	msgAlertFailed = "Erreur lors de l'ajout de l'alerte"
)

type AlertService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*types.Alert, error)
	Add(ctx context.Context, userID uuid.UUID, handle, network string) (*types.Alert, error)
	Delete(ctx context.Context, userID, alertID uuid.UUID) error
	// Toggle flips is_active and returns the new value.
	Toggle(ctx context.Context, userID, alertID uuid.UUID) (bool, error)
}

type alertService struct {
	db        *gorm.DB
	log       *logger.Logger
	alertRepo repos.AlertRepo
}

func NewAlertService(db *gorm.DB, log *logger.Logger, alertRepo repos.AlertRepo) AlertService {
	return &alertService{db: db, log: log.With("service", "AlertService"), alertRepo: alertRepo}
}

func (s *alertService) List(ctx context.Context, userID uuid.UUID) ([]*types.Alert, error) {
	return s.alertRepo.ListByUser(dbctx.Of(ctx), userID)
}

func (s *alertService) Add(ctx context.Context, userID uuid.UUID, handle, network string) (*types.Alert, error) {
	h := strings.ReplaceAll(strings.TrimSpace(handle), "@", "")
	if h == "" {
		return nil, pkgerrors.Invalid("Le nom d'utilisateur est requis")
	}
	n, err := contexts.ParseNetwork(network)
	if err != nil {
		return nil, pkgerrors.Invalid("Réseau social inconnu")
	}

	var created *types.Alert
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		count, err := s.alertRepo.CountByUser(dbc, userID)
		if err != nil {
			return err
		}
		if count >= MaxAlerts {
			return pkgerrors.Conflict(msgAlertLimit)
		}
		exists, err := s.alertRepo.Exists(dbc, userID, h, string(n))
		if err != nil {
			return err
		}
		if exists {
			return pkgerrors.Conflict(msgAlertExists)
		}
		a := &types.Alert{UserID: userID, TargetUsername: h, SocialNetwork: string(n), IsActive: true}
		if err := s.alertRepo.Create(dbc, a); err != nil {
			return err
		}
		created = a
		return nil
	})
	var v *pkgerrors.Validation
	if errors.As(err, &v) {
		return nil, err
	}
	if err != nil {
		s.log.Warn("Error adding alert", "error", err, "user_id", userID.String())
		return nil, fmt.Errorf("%s: %w", msgAlertFailed, err)
	}
	return created, nil
}

func (s *alertService) Delete(ctx context.Context, userID, alertID uuid.UUID) error {
	return s.alertRepo.Delete(dbctx.Of(ctx), userID, alertID)
}

func (s *alertService) Toggle(ctx context.Context, userID, alertID uuid.UUID) (bool, error) {
	var active bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		rows, err := s.alertRepo.ListByUser(dbc, userID)
		if err != nil {
			return err
		}
		for _, a := range rows {
			if a.ID == alertID {
				active = !a.IsActive
				return s.alertRepo.SetActive(dbc, userID, alertID, active)
			}
		}
		return pkgerrors.ErrNotFound
	})
	return active, err
}
