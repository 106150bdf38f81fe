package bcma

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/repository/mocks"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
	"github.com/careconnect/careconnect-api/pkg/metrics"
)

type emitter struct{ mock.Mock }

func (e *emitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	return e.Called(ctx, eventType, payload).Error(0)
}

var now = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	residents *mocks.ResidentRepository
	meds      *mocks.MedicationRepository
	history   *mocks.MedicalHistoryRepository
	admins    *mocks.AdministrationRepository
	events    *emitter
	metrics   *metrics.Metrics
	resident  *model.Resident
	med       *model.Medication
}

func newFixture() *fixture {
	f := &fixture{
		residents: &mocks.ResidentRepository{},
		meds:      &mocks.MedicationRepository{},
		history:   &mocks.MedicalHistoryRepository{},
		admins:    &mocks.AdministrationRepository{},
		events:    &emitter{},
		metrics:   metrics.New("test", prometheus.NewRegistry()),
	}
	f.svc = NewService(f.residents, f.meds, f.history, f.admins, mocks.Transactor{}, f.events, f.metrics.BCMAVerifications)
	f.svc.now = func() time.Time { return now }

	f.resident = &model.Resident{Base: model.Base{ID: uuid.New()}, Status: model.ResidentStatusActive, Barcode: "RES-AAAAAAAAAA"}
	f.med = &model.Medication{
		Base:       model.Base{ID: uuid.New()},
		ResidentID: f.resident.ID,
		Name:       "Amoxicillin",
		Dosage:     "250mg",
		Frequency:  model.FrequencyEvery8Hours,
		StartDate:  model.NewDate(now.AddDate(0, 0, -3)),
		Status:     model.MedicationStatusActive,
		Barcode:    "MED-BBBBBBBBBB",
	}
	return f
}

func counterValue(t *testing.T, c *prometheus.CounterVec, outcome string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.WithLabelValues(outcome).Write(&m))
	return m.GetCounter().GetValue()
}

func (f *fixture) lookups() {
	f.residents.On("GetByBarcode", mock.Anything, f.resident.Barcode).Return(f.resident, nil)
	f.meds.On("GetByBarcode", mock.Anything, f.med.Barcode).Return(f.med, nil)
}

func (f *fixture) request() *model.VerifyRequest {
	return &model.VerifyRequest{ResidentBarcode: f.resident.Barcode, MedicationBarcode: f.med.Barcode}
}

func TestVerify_Matched(t *testing.T) {
	f := newFixture()
	f.lookups()
	f.history.On("ActiveAllergies", mock.Anything, f.resident.ID).Return([]*model.MedicalHistoryRecord{{Name: "Latex"}}, nil)
	f.admins.On("LastGiven", mock.Anything, f.med.ID).Return(&model.Administration{AdministeredAt: now.Add(-8 * time.Hour)}, nil)

	v, err := f.svc.Verify(context.Background(), f.request())
	require.NoError(t, err)
	assert.True(t, v.Matched)
	assert.Empty(t, v.Reasons)
	require.NotNil(t, v.NextDueAt)
	assert.Equal(t, now.Add(-time.Hour), *v.NextDueAt)
	assert.Equal(t, 1.0, counterValue(t, f.metrics.BCMAVerifications, outcomeMatched))
}

func TestVerify_CollectsEveryReason(t *testing.T) {
	f := newFixture()
	f.resident.Status = model.ResidentStatusHospitalized
	f.med.Status = model.MedicationStatusOnHold
	end := model.NewDate(now.AddDate(0, 0, -1))
	f.med.EndDate = &end
	f.lookups()
	f.history.On("ActiveAllergies", mock.Anything, f.resident.ID).
		Return([]*model.MedicalHistoryRecord{{Name: "amoxicillin"}}, nil)
	f.admins.On("LastGiven", mock.Anything, f.med.ID).Return(&model.Administration{AdministeredAt: now.Add(-2 * time.Hour)}, nil)

	v, err := f.svc.Verify(context.Background(), f.request())
	require.NoError(t, err)
	assert.False(t, v.Matched)
	assert.Len(t, v.Reasons, 5)
	assert.Contains(t, v.Reasons, "resident is hospitalized")
	assert.Contains(t, v.Reasons, "medication is on hold")
	assert.Contains(t, v.Reasons, "medication is outside its prescribed dates")
	assert.Contains(t, v.Reasons, "resident has an active allergy to amoxicillin")
	assert.Equal(t, 1.0, counterValue(t, f.metrics.BCMAVerifications, outcomeRejected))
}

func TestVerify_WrongResident(t *testing.T) {
	f := newFixture()
	f.med.ResidentID = uuid.New()
	f.lookups()
	f.history.On("ActiveAllergies", mock.Anything, f.resident.ID).Return(nil, nil)
	f.admins.On("LastGiven", mock.Anything, f.med.ID).Return(nil, repository.ErrNotFound)

	v, err := f.svc.Verify(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, []string{"medication is not prescribed to this resident"}, v.Reasons)
}

func TestVerify_UnknownBarcodes(t *testing.T) {
	f := newFixture()
	f.residents.On("GetByBarcode", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	f.meds.On("GetByBarcode", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	v, err := f.svc.Verify(context.Background(), f.request())
	require.NoError(t, err)
	assert.False(t, v.Matched)
	assert.Len(t, v.Reasons, 2)
}

func TestAdminister(t *testing.T) {
	actor := uuid.New()

	t.Run("given dose is logged with an event", func(t *testing.T) {
		f := newFixture()
		f.lookups()
		f.history.On("ActiveAllergies", mock.Anything, f.resident.ID).Return(nil, nil)
		f.admins.On("LastGiven", mock.Anything, f.med.ID).Return(nil, repository.ErrNotFound)
		f.admins.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Administration) bool {
			return a.ScanVerified && a.DoseGiven == "250mg" && a.AdministeredBy == actor
		})).Return(nil).Once()
		f.events.On("Emit", mock.Anything, model.EventMedicationAdministered, mock.Anything).Return(nil).Once()

		rec, err := f.svc.Administer(context.Background(), actor, &model.AdministerRequest{
			ResidentBarcode: f.resident.Barcode, MedicationBarcode: f.med.Barcode, Status: model.AdministrationGiven,
		})
		require.NoError(t, err)
		assert.Equal(t, "Amoxicillin", rec.MedicationName)
		f.events.AssertExpectations(t)
	})

	t.Run("given dose blocked by failed verification", func(t *testing.T) {
		f := newFixture()
		f.lookups()
		f.history.On("ActiveAllergies", mock.Anything, f.resident.ID).Return(nil, nil)
		f.admins.On("LastGiven", mock.Anything, f.med.ID).Return(&model.Administration{AdministeredAt: now.Add(-time.Hour)}, nil)

		_, err := f.svc.Administer(context.Background(), actor, &model.AdministerRequest{
			ResidentBarcode: f.resident.Barcode, MedicationBarcode: f.med.Barcode, Status: model.AdministrationGiven,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))
		appErr, _ := apperrors.As(err)
		assert.Len(t, appErr.Details, 1)
		f.admins.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("refused dose logged despite failed verification", func(t *testing.T) {
		f := newFixture()
		f.lookups()
		f.history.On("ActiveAllergies", mock.Anything, f.resident.ID).Return(nil, nil)
		f.admins.On("LastGiven", mock.Anything, f.med.ID).Return(&model.Administration{AdministeredAt: now.Add(-time.Hour)}, nil)
		f.admins.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Administration) bool {
			return !a.ScanVerified && a.Status == model.AdministrationRefused && a.DoseGiven == ""
		})).Return(nil).Once()
		f.events.On("Emit", mock.Anything, model.EventMedicationAdministered, mock.Anything).Return(nil).Once()

		_, err := f.svc.Administer(context.Background(), actor, &model.AdministerRequest{
			ResidentBarcode: f.resident.Barcode, MedicationBarcode: f.med.Barcode, Status: model.AdministrationRefused,
		})
		require.NoError(t, err)
	})
}

func TestScan_FiltersToActiveToday(t *testing.T) {
	f := newFixture()
	future := &model.Medication{StartDate: model.NewDate(now.AddDate(0, 0, 2))}
	f.residents.On("GetByBarcode", mock.Anything, f.resident.Barcode).Return(f.resident, nil)
	f.meds.On("ListByResident", mock.Anything, f.resident.ID, model.MedicationStatusActive).
		Return([]*model.Medication{f.med, future}, nil)

	res, err := f.svc.Scan(context.Background(), f.resident.Barcode)
	require.NoError(t, err)
	assert.Equal(t, []*model.Medication{f.med}, res.Medications)
}
