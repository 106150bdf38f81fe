// Package bcma implements barcode medication administration: scan the
// resident wristband, scan the medication, verify the pair, then log the dose.
package bcma

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/service"
	"github.com/careconnect/careconnect-api/internal/service/event"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

const (
	outcomeMatched  = "matched"
	outcomeRejected = "rejected"
)

type Service struct {
	residentRepo   repository.ResidentRepository
	medicationRepo repository.MedicationRepository
	historyRepo    repository.MedicalHistoryRepository
	adminRepo      repository.AdministrationRepository
	tx             repository.Transactor
	events         event.Emitter
	verifications  *prometheus.CounterVec
	now            func() time.Time
}

func NewService(residentRepo repository.ResidentRepository, medicationRepo repository.MedicationRepository,
	historyRepo repository.MedicalHistoryRepository, adminRepo repository.AdministrationRepository,
	tx repository.Transactor, events event.Emitter, verifications *prometheus.CounterVec) *Service {
	return &Service{
		residentRepo:   residentRepo,
		medicationRepo: medicationRepo,
		historyRepo:    historyRepo,
		adminRepo:      adminRepo,
		tx:             tx,
		events:         events,
		verifications:  verifications,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Scan resolves a wristband to the resident and the medications active today.
func (s *Service) Scan(ctx context.Context, residentBarcode string) (*model.ScanResult, error) {
	resident, err := s.residentRepo.GetByBarcode(ctx, residentBarcode)
	if err != nil {
		return nil, service.RepoError("resident", err)
	}

	meds, err := s.medicationRepo.ListByResident(ctx, resident.ID, model.MedicationStatusActive)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	today := model.NewDate(s.now())
	due := make([]*model.Medication, 0, len(meds))
	for _, m := range meds {
		if m.ActiveOn(today) {
			due = append(due, m)
		}
	}
	return &model.ScanResult{Resident: resident, Medications: due}, nil
}

// Verify checks a resident and medication pair. Every failed rule adds a reason;
// the pair matches only when there are none.
func (s *Service) Verify(ctx context.Context, req *model.VerifyRequest) (*model.Verification, error) {
	v, err := s.verify(ctx, req.ResidentBarcode, req.MedicationBarcode)
	if err != nil {
		return nil, err
	}
	s.observe(v)
	return v, nil
}

// Administer logs a dose. A given dose requires a matching verification;
// refused, held and missed doses are always recorded.
func (s *Service) Administer(ctx context.Context, actorID uuid.UUID, req *model.AdministerRequest) (*model.Administration, error) {
	v, err := s.verify(ctx, req.ResidentBarcode, req.MedicationBarcode)
	if err != nil {
		return nil, err
	}
	s.observe(v)

	if v.Resident == nil {
		return nil, apperrors.NotFound("resident", nil)
	}
	if v.Medication == nil {
		return nil, apperrors.NotFound("medication", nil)
	}
	if v.Medication.ResidentID != v.Resident.ID {
		return nil, apperrors.Validation("medication is not prescribed to this resident")
	}
	if req.Status == model.AdministrationGiven && !v.Matched {
		return nil, apperrors.Validation("medication verification failed", v.Reasons...)
	}

	record := &model.Administration{
		MedicationID:   v.Medication.ID,
		ResidentID:     v.Resident.ID,
		AdministeredBy: actorID,
		AdministeredAt: s.now(),
		Status:         req.Status,
		DoseGiven:      strings.TrimSpace(req.DoseGiven),
		Notes:          strings.TrimSpace(req.Notes),
		ScanVerified:   v.Matched,
	}
	if record.Status == model.AdministrationGiven && record.DoseGiven == "" {
		record.DoseGiven = v.Medication.Dosage
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.adminRepo.Create(ctx, record); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventMedicationAdministered, model.MedicationAdministeredPayload{
			AdministrationID: record.ID,
			ResidentID:       record.ResidentID,
			MedicationID:     record.MedicationID,
			MedicationName:   v.Medication.Name,
			Status:           record.Status,
			AdministeredBy:   actorID,
			AdministeredAt:   record.AdministeredAt,
		})
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	record.MedicationName = v.Medication.Name
	record.MedicationDosage = v.Medication.Dosage
	return record, nil
}

func (s *Service) verify(ctx context.Context, residentBarcode, medicationBarcode string) (*model.Verification, error) {
	v := &model.Verification{Reasons: []string{}}

	resident, err := s.residentRepo.GetByBarcode(ctx, residentBarcode)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		v.Reasons = append(v.Reasons, "resident wristband not recognised")
	case err != nil:
		return nil, apperrors.Internal(err)
	default:
		v.Resident = resident
		if resident.Status != model.ResidentStatusActive {
			v.Reasons = append(v.Reasons, fmt.Sprintf("resident is %s", resident.Status))
		}
	}

	med, err := s.medicationRepo.GetByBarcode(ctx, medicationBarcode)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		v.Reasons = append(v.Reasons, "medication barcode not recognised")
		return v, nil
	case err != nil:
		return nil, apperrors.Internal(err)
	}
	v.Medication = med

	now := s.now()
	if resident != nil && med.ResidentID != resident.ID {
		v.Reasons = append(v.Reasons, "medication is not prescribed to this resident")
	}
	if med.Status != model.MedicationStatusActive {
		v.Reasons = append(v.Reasons, fmt.Sprintf("medication is %s", strings.ReplaceAll(med.Status, "_", " ")))
	}
	if !med.ActiveOn(model.NewDate(now)) {
		v.Reasons = append(v.Reasons, "medication is outside its prescribed dates")
	}

	if resident != nil {
		allergies, err := s.historyRepo.ActiveAllergies(ctx, resident.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		medName := strings.ToLower(med.Name)
		for _, a := range allergies {
			name := strings.ToLower(strings.TrimSpace(a.Name))
			if name != "" && strings.Contains(medName, name) {
				v.Reasons = append(v.Reasons, fmt.Sprintf("resident has an active allergy to %s", a.Name))
			}
		}
	}

	last, err := s.adminRepo.LastGiven(ctx, med.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}
	if last != nil {
		v.LastGivenAt = &last.AdministeredAt
		if interval, ok := model.MinDoseInterval(med.Frequency); ok {
			next := last.AdministeredAt.Add(interval)
			v.NextDueAt = &next
			if now.Before(next) {
				v.Reasons = append(v.Reasons, fmt.Sprintf("dose given too recently, next dose due at %s", next.Format(time.RFC3339)))
			}
		}
	}

	v.Matched = len(v.Reasons) == 0
	return v, nil
}

func (s *Service) observe(v *model.Verification) {
	if s.verifications == nil {
		return
	}
	outcome := outcomeRejected
	if v.Matched {
		outcome = outcomeMatched
	}
	s.verifications.WithLabelValues(outcome).Inc()
}
