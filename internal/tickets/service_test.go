package tickets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"movitex/internal/booking"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) CreateAuthenticated(ctx context.Context, userID, tripID string, total float64, passengers []booking.Passenger) (*booking.Result, error) {
	args := m.Called(ctx, userID, tripID, total, passengers)
	return nil, args.Error(1)
}

func (m *mockBackend) CreateAnonymous(ctx context.Context, tripID string, total float64, passengers []booking.Passenger, email, phone string) (*booking.Result, error) {
	args := m.Called(ctx, tripID, total, passengers, email, phone)
	return nil, args.Error(1)
}

func (m *mockBackend) TicketData(ctx context.Context, reservationID string) ([]booking.TicketRow, error) {
	args := m.Called(ctx, reservationID)
	rows, _ := args.Get(0).([]booking.TicketRow)
	return rows, args.Error(1)
}

func sampleRows() []booking.TicketRow {
	return []booking.TicketRow{
		{ServiceTier: "VIP", Date: "2026-03-01", DepartureTime: "08:00", Origin: "Lima", Destination: "Ica",
			SeatNumber: "14", FirstName: "Juan", LastName: "Perez", DocumentNumber: "12345678", Price: 45},
		{ServiceTier: "VIP", Date: "2026-03-01", DepartureTime: "08:00", Origin: "Lima", Destination: "Ica",
			SeatNumber: "15", FirstName: "Rosa", LastName: "Diaz", DocumentNumber: "87654321", Price: 50.5},
	}
}

func TestGetBoletaAggregates(t *testing.T) {
	backend := new(mockBackend)
	backend.On("TicketData", mock.Anything, "R-100").Return(sampleRows(), nil)

	b, err := NewService(backend).GetBoleta(context.Background(), "R-100")
	require.NoError(t, err)

	assert.Equal(t, "VIP", b.Trip.ServiceTier)
	assert.Equal(t, "Lima", b.Trip.Origin)
	assert.Equal(t, "Ica", b.Trip.Destination)
	assert.Equal(t, 2, b.PassengerCount)
	assert.InDelta(t, 95.5, b.TotalPrice, 0.001)
	require.Len(t, b.Passengers, 2)
	assert.Equal(t, "Rosa Diaz", b.Passengers[1].FullName)
}

func TestGetBoletaDistinguishesEmptyFromError(t *testing.T) {
	backend := new(mockBackend)
	backend.On("TicketData", mock.Anything, "R-empty").Return([]booking.TicketRow{}, nil)
	backend.On("TicketData", mock.Anything, "R-down").Return(nil, errors.New("connection refused"))

	svc := NewService(backend)

	_, err := svc.GetBoleta(context.Background(), "R-empty")
	assert.ErrorIs(t, err, ErrNoTicketData)

	_, err = svc.GetBoleta(context.Background(), "R-down")
	assert.ErrorIs(t, err, ErrTicketBackend)
	assert.NotErrorIs(t, err, ErrNoTicketData)

	_, err = svc.GetBoleta(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoTicketData)
}

func TestRenderPDF(t *testing.T) {
	b := aggregate("R-100", sampleRows())

	data, filename, err := RenderPDF(b)
	require.NoError(t, err)
	assert.Equal(t, "boleta-R-100.pdf", filename)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestControllerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	backend := new(mockBackend)
	backend.On("TicketData", mock.Anything, "R-100").Return(sampleRows(), nil)
	backend.On("TicketData", mock.Anything, "R-404").Return(nil, nil)
	backend.On("TicketData", mock.Anything, "R-500").Return(nil, errors.New("boom"))

	r := gin.New()
	SetupTicketRoutes(r.Group("/api/v1"), NewController(NewService(backend)))

	tests := []struct {
		path string
		code int
	}{
		{"/api/v1/tickets/R-100", http.StatusOK},
		{"/api/v1/tickets/R-100/pdf", http.StatusOK},
		{"/api/v1/tickets/R-404", http.StatusNotFound},
		{"/api/v1/tickets/R-500", http.StatusBadGateway},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.code, w.Code, tt.path)
	}
}

func TestBoletaFilename(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"R-100", "boleta-R-100.pdf"},
		{"R-1\"\r\nX-Evil: y/../", "boleta-R-1X-Evily.pdf"},
		{"\"; ../", "boleta.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, boletaFilename(tt.id), tt.id)
	}
}

func TestDownloadBoletaSanitizesFilename(t *testing.T) {
	gin.SetMode(gin.TestMode)

	backend := new(mockBackend)
	backend.On("TicketData", mock.Anything, `R-7"x`).Return(sampleRows(), nil)

	r := gin.New()
	SetupTicketRoutes(r.Group("/api/v1"), NewController(NewService(backend)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/R-7%22x/pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="boleta-R-7x.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}
