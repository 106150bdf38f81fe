package medication

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/internal/repository/mocks"
	apperrors "github.com/careconnect/careconnect-api/pkg/errors"
)

func newService() (*Service, *mocks.MedicationRepository, *mocks.ResidentRepository, *mocks.AdministrationRepository) {
	meds := &mocks.MedicationRepository{}
	residents := &mocks.ResidentRepository{}
	admins := &mocks.AdministrationRepository{}
	return NewService(meds, residents, admins), meds, residents, admins
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	residentID := uuid.New()

	t.Run("generates barcode and defaults", func(t *testing.T) {
		svc, meds, residents, _ := newService()
		residents.On("GetByID", ctx, residentID).Return(&model.Resident{}, nil).Once()
		meds.On("Create", ctx, mock.Anything).Return(nil).Once()

		med, err := svc.Create(ctx, residentID, &model.CreateMedicationRequest{
			Name: "Metformin", Dosage: "500mg", Route: "oral", Frequency: model.FrequencyTwiceDaily, PrescribedBy: "Dr. Patel",
		})
		require.NoError(t, err)
		assert.Regexp(t, `^MED-[0-9A-F]{10}$`, med.Barcode)
		assert.Equal(t, model.MedicationStatusActive, med.Status)
		assert.Equal(t, model.Today(), med.StartDate)
	})

	t.Run("end before start", func(t *testing.T) {
		svc, _, residents, _ := newService()
		residents.On("GetByID", ctx, residentID).Return(&model.Resident{}, nil).Once()
		start := model.NewDate(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
		end := model.NewDate(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

		_, err := svc.Create(ctx, residentID, &model.CreateMedicationRequest{
			Name: "Metformin", Dosage: "500mg", Route: "oral", Frequency: model.FrequencyOnceDaily,
			PrescribedBy: "Dr. Patel", StartDate: start, EndDate: &end,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))
	})

	t.Run("unknown resident", func(t *testing.T) {
		svc, _, residents, _ := newService()
		residents.On("GetByID", ctx, residentID).Return(nil, repository.ErrNotFound).Once()
		_, err := svc.Create(ctx, residentID, &model.CreateMedicationRequest{})
		assert.Equal(t, http.StatusNotFound, apperrors.StatusCode(err))
	})
}

func TestGet_WrongResident(t *testing.T) {
	svc, meds, _, _ := newService()
	id := uuid.New()
	meds.On("GetByID", mock.Anything, id).Return(&model.Medication{ResidentID: uuid.New()}, nil).Once()

	_, err := svc.Get(context.Background(), uuid.New(), id)
	assert.Equal(t, http.StatusNotFound, apperrors.StatusCode(err))
}

func TestUpdate_ClearsEndDate(t *testing.T) {
	svc, meds, _, _ := newService()
	residentID, id := uuid.New(), uuid.New()
	end := model.Today()
	existing := &model.Medication{Base: model.Base{ID: id}, ResidentID: residentID, StartDate: end, EndDate: &end}
	meds.On("GetByID", mock.Anything, id).Return(existing, nil).Once()
	meds.On("Update", mock.Anything, existing).Return(nil).Once()

	cleared := model.Date{}
	med, err := svc.Update(context.Background(), residentID, id, &model.UpdateMedicationRequest{EndDate: &cleared})
	require.NoError(t, err)
	assert.Nil(t, med.EndDate)
}

func TestAdministrations_Window(t *testing.T) {
	svc, _, residents, admins := newService()
	residentID := uuid.New()
	residents.On("GetByID", mock.Anything, residentID).Return(&model.Resident{}, nil)

	from := time.Now().AddDate(0, -6, 0)
	_, err := svc.Administrations(context.Background(), residentID, &from, nil)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))

	admins.On("List", mock.Anything, mock.MatchedBy(func(f *model.AdministrationFilter) bool {
		return f.ResidentID == residentID && f.To.Sub(*f.From) == 7*24*time.Hour
	})).Return([]*model.Administration{{Status: model.AdministrationGiven}}, nil).Once()

	records, err := svc.Administrations(context.Background(), residentID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
