package resident

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

type emitter struct{ mock.Mock }

func (e *emitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	return e.Called(ctx, eventType, payload).Error(0)
}

func newService() (*Service, *mocks.ResidentRepository, *mocks.GroupRepository, *emitter) {
	residents := &mocks.ResidentRepository{}
	groups := &mocks.GroupRepository{}
	events := &emitter{}
	return NewService(residents, groups, mocks.Transactor{}, events), residents, groups, events
}

func date(y int, m time.Month, d int) model.Date {
	return model.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func validRequest() *model.CreateResidentRequest {
	return &model.CreateResidentRequest{
		FirstName:     "Mary",
		LastName:      "Jones",
		DateOfBirth:   date(1940, 5, 2),
		Gender:        "female",
		RoomNumber:    "12B",
		AdmissionDate: date(2024, 1, 15),
	}
}

func TestCreateResident_GeneratesBarcode(t *testing.T) {
	svc, residents, _, _ := newService()
	residents.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate).Once()
	residents.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	resident, err := svc.CreateResident(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Regexp(t, `^RES-[0-9A-F]{10}$`, resident.Barcode)
	assert.Equal(t, model.ResidentStatusActive, resident.Status)
	residents.AssertNumberOfCalls(t, "Create", 2)
}

func TestCreateResident_SuppliedBarcodeConflict(t *testing.T) {
	svc, residents, _, _ := newService()
	residents.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate).Once()

	req := validRequest()
	req.Barcode = "res-0000000001"
	_, err := svc.CreateResident(context.Background(), req)
	assert.Equal(t, http.StatusConflict, apperrors.StatusCode(err))
	residents.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateResident_Dates(t *testing.T) {
	svc, _, _, _ := newService()

	req := validRequest()
	req.DateOfBirth = model.NewDate(time.Now().AddDate(0, 0, 1))
	_, err := svc.CreateResident(context.Background(), req)
	assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))

	req = validRequest()
	req.AdmissionDate = date(1930, 1, 1)
	_, err = svc.CreateResident(context.Background(), req)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Details, "admission_date cannot be before date_of_birth")

	req = validRequest()
	req.DateOfBirth = model.Date{}
	_, err = svc.CreateResident(context.Background(), req)
	assert.Equal(t, http.StatusUnprocessableEntity, apperrors.StatusCode(err))
}

func TestCreateResident_UnknownGroup(t *testing.T) {
	svc, _, groups, _ := newService()
	groupID := uuid.New()
	groups.On("GetByID", mock.Anything, groupID).Return(nil, repository.ErrNotFound).Once()

	req := validRequest()
	req.GroupID = &groupID
	_, err := svc.CreateResident(context.Background(), req)
	assert.Equal(t, http.StatusNotFound, apperrors.StatusCode(err))
}

func TestUpdateResident_StatusChangeEmitsEvent(t *testing.T) {
	svc, residents, _, events := newService()
	ctx := context.Background()
	actor := uuid.New()
	existing := &model.Resident{
		Base:          model.Base{ID: uuid.New()},
		DateOfBirth:   date(1940, 5, 2),
		AdmissionDate: date(2024, 1, 15),
		Status:        model.ResidentStatusActive,
	}
	residents.On("GetByID", ctx, existing.ID).Return(existing, nil)
	residents.On("Update", ctx, existing).Return(nil)
	events.On("Emit", ctx, model.EventResidentStatusChanged, model.ResidentStatusPayload{
		ResidentID: existing.ID,
		From:       model.ResidentStatusActive,
		To:         model.ResidentStatusHospitalized,
		ActorID:    actor,
	}).Return(nil).Once()

	status := model.ResidentStatusHospitalized
	_, err := svc.UpdateResident(ctx, actor, existing.ID, &model.UpdateResidentRequest{Status: &status})
	require.NoError(t, err)

	room := "14"
	_, err = svc.UpdateResident(ctx, actor, existing.ID, &model.UpdateResidentRequest{RoomNumber: &room})
	require.NoError(t, err)
	events.AssertNumberOfCalls(t, "Emit", 1)
}
