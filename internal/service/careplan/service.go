// Package careplan keeps at most one active care plan per resident.
package careplan

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	"github.com/careconnect/careconnect-api/internal/service/event"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

type Service struct {
	repo         repository.CarePlanRepository
	residentRepo repository.ResidentRepository
	tx           repository.Transactor
	events       event.Emitter
}

func NewService(repo repository.CarePlanRepository, residentRepo repository.ResidentRepository,
	tx repository.Transactor, events event.Emitter) *Service {
	return &Service{
		repo:         repo,
		residentRepo: residentRepo,
		tx:           tx,
		events:       events,
	}
}

func (s *Service) Create(ctx context.Context, actorID, residentID uuid.UUID, req *model.CreateCarePlanRequest) (*model.CarePlan, error) {
	if _, err := s.residentRepo.GetByID(ctx, residentID); err != nil {
		return nil, service.RepoError("resident", err)
	}

	plan := &model.CarePlan{
		ResidentID:      residentID,
		Title:           strings.TrimSpace(req.Title),
		MedicalNeeds:    req.MedicalNeeds,
		DietaryNeeds:    req.DietaryNeeds,
		AssistanceNeeds: req.AssistanceNeeds,
		Goals:           req.Goals,
		StartDate:       req.StartDate,
		ReviewDate:      req.ReviewDate,
		Status:          req.Status,
		CreatedBy:       actorID,
	}
	if plan.Status == "" {
		plan.Status = model.CarePlanStatusDraft
	}
	if plan.StartDate.IsZero() {
		plan.StartDate = model.Today()
	}
	if err := validateDates(plan); err != nil {
		return nil, err
	}

	plan.ID = uuid.New()
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if plan.Status != model.CarePlanStatusActive {
			return s.repo.Create(ctx, plan)
		}
		return s.activate(ctx, actorID, plan, s.repo.Create)
	})
	if err != nil {
		return nil, service.RepoError("care plan", err)
	}
	return plan, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.CarePlan, error) {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.RepoError("care plan", err)
	}
	return plan, nil
}

func (s *Service) ListByResident(ctx context.Context, residentID uuid.UUID) ([]*model.CarePlan, error) {
	if _, err := s.residentRepo.GetByID(ctx, residentID); err != nil {
		return nil, service.RepoError("resident", err)
	}
	plans, err := s.repo.ListByResident(ctx, residentID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return plans, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCarePlanRequest) (*model.CarePlan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Status == model.CarePlanStatusArchived {
		return nil, apperrors.Validation("archived care plans cannot be edited")
	}

	if req.Title != nil {
		plan.Title = strings.TrimSpace(*req.Title)
	}
	if req.MedicalNeeds != nil {
		plan.MedicalNeeds = *req.MedicalNeeds
	}
	if req.DietaryNeeds != nil {
		plan.DietaryNeeds = *req.DietaryNeeds
	}
	if req.AssistanceNeeds != nil {
		plan.AssistanceNeeds = *req.AssistanceNeeds
	}
	if req.Goals != nil {
		plan.Goals = *req.Goals
	}
	if req.StartDate != nil {
		plan.StartDate = *req.StartDate
	}
	if req.ReviewDate != nil {
		if req.ReviewDate.IsZero() {
			plan.ReviewDate = nil
		} else {
			plan.ReviewDate = req.ReviewDate
		}
	}
	if err := validateDates(plan); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, service.RepoError("care plan", err)
	}
	return plan, nil
}

// Activate makes the plan the resident's active plan and archives the previous one.
func (s *Service) Activate(ctx context.Context, actorID, id uuid.UUID) (*model.CarePlan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch plan.Status {
	case model.CarePlanStatusActive:
		return plan, nil
	case model.CarePlanStatusArchived:
		return nil, apperrors.Validation("archived care plans cannot be activated")
	}

	plan.Status = model.CarePlanStatusActive
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.activate(ctx, actorID, plan, s.repo.Update)
	})
	if err != nil {
		return nil, service.RepoError("care plan", err)
	}
	return plan, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return service.RepoError("care plan", s.repo.Delete(ctx, id))
}

// activate archives the resident's current active plan before write stores
// plan, so the one-active-plan index never sees two active rows.
func (s *Service) activate(ctx context.Context, actorID uuid.UUID, plan *model.CarePlan,
	write func(context.Context, *model.CarePlan) error) error {
	archived, err := s.repo.ArchiveActive(ctx, plan.ResidentID, plan.ID)
	if err != nil {
		return err
	}
	if err := write(ctx, plan); err != nil {
		return err
	}
	if archived != nil {
		log.Info().
			Str("resident_id", plan.ResidentID.String()).
			Str("archived_id", archived.String()).
			Str("active_id", plan.ID.String()).
			Msg("Archived previous care plan")
	}
	return s.events.Emit(ctx, model.EventCarePlanActivated, model.CarePlanActivatedPayload{
		CarePlanID: plan.ID,
		ResidentID: plan.ResidentID,
		ArchivedID: archived,
		ActorID:    actorID,
	})
}

func validateDates(p *model.CarePlan) error {
	if p.ReviewDate != nil && p.ReviewDate.Before(p.StartDate) {
		return apperrors.Validation("invalid care plan dates", "review_date cannot be before start_date")
	}
	return nil
}
