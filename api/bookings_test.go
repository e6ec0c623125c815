package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, tickets []domain.Ticket) (*domain.Booking, error) {
	args := m.Called(ctx, tickets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) BookTicket(ctx context.Context, input booking.BookTicketInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) List(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"flight_id":1,"class":"BUSINESS","passenger":{"first_name":"Иван","last_name":"Иванов","passport_number":"4510 1"}}`
	c.Request = httptest.NewRequest("POST", "/bookings", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	created := &domain.Booking{ID: 5, BookingNumber: "BK1", Status: domain.BookingStatusConfirmed, TotalAmountCents: 1000000}
	mockService.On("BookTicket", c.Request.Context(), mock.MatchedBy(func(in booking.BookTicketInput) bool {
		return in.FlightID == 1 && in.Class == domain.TicketClassBusiness && in.Passenger.PassportNumber == "4510 1"
	})).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got domain.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "BK1", got.BookingNumber)
	assert.Equal(t, int64(1000000), got.TotalAmountCents)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_createRejectsBadBody(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/bookings", strings.NewReader(`{"class":"ECONOMY"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "BookTicket", mock.Anything, mock.Anything)
}

func TestBookingHandler_cancel(t *testing.T) {
	tests := []struct {
		name   string
		result *domain.Booking
		err    error
		status int
	}{
		{"cancelled", &domain.Booking{ID: 3, Status: domain.BookingStatusCancelled}, nil, http.StatusOK},
		{"already cancelled", nil, domain.ErrAlreadyCancelled, http.StatusConflict},
		{"missing", nil, domain.ErrNotFound, http.StatusNotFound},
		{"storage failure", nil, assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: "3"}}
			c.Request = httptest.NewRequest("DELETE", "/bookings/3", nil)

			if tt.result != nil {
				mockService.On("CancelBooking", c.Request.Context(), int64(3)).Return(tt.result, nil)
			} else {
				mockService.On("CancelBooking", c.Request.Context(), int64(3)).Return(nil, tt.err)
			}

			handler.cancel(c)

			assert.Equal(t, tt.status, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestBookingHandler_listByNumber(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings?number=BK1", nil)

	mockService.On("GetByNumber", c.Request.Context(), "BK1").Return(&domain.Booking{ID: 1, BookingNumber: "BK1"}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
	mockService.AssertNotCalled(t, "List", mock.Anything)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrNoSeats))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrEmptyBooking))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrValidation))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrConflict))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
