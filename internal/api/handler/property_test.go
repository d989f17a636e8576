package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kokitko/bookinline-sub000/internal/application"
	"github.com/kokitko/bookinline-sub000/internal/domain/booking"
	"github.com/kokitko/bookinline-sub000/internal/domain/property"
)

// MockPropertyService は PropertyServiceInterface のモック
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) CreateProperty(ctx context.Context, input application.CreatePropertyInput) (*property.Property, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyService) GetProperty(ctx context.Context, id string) (*property.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyService) ListProperties(ctx context.Context, limit, offset int) ([]*property.Property, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*property.Property), args.Error(1)
}

func (m *MockPropertyService) SetAvailability(ctx context.Context, id, actorID string, available bool) (*property.Property, error) {
	args := m.Called(ctx, id, actorID, available)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyService) SearchAvailable(ctx context.Context, input application.SearchAvailableInput) ([]*property.Property, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*property.Property), args.Error(1)
}

func sampleProperty() *property.Property {
	p := property.NewProperty("host-1", "湖畔のコテージ", "", "Hakone", 24000, 4)
	p.ID = "property-1"
	return p
}

func TestPropertyHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に作成できる", func(t *testing.T) {
		service := new(MockPropertyService)
		service.On("CreateProperty", mock.Anything, mock.Anything).Return(sampleProperty(), nil)
		h := NewPropertyHandler(service, new(MockBookingService))

		body := `{"name":"湖畔のコテージ","city":"Hakone","price_per_night":24000,"max_guests":4}`
		req := httptest.NewRequest(http.MethodPost, "/properties", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "host-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"available":true`)
	})

	t.Run("必須項目なしはバリデーションエラー", func(t *testing.T) {
		h := NewPropertyHandler(new(MockPropertyService), new(MockBookingService))

		body := `{"city":"Hakone"}`
		req := httptest.NewRequest(http.MethodPost, "/properties", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "host-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.Create(c)

		assert.Error(t, err)
	})
}

func TestPropertyHandler_CheckAvailability(t *testing.T) {
	e := NewTestEcho()

	t.Run("空室照会の結果を返す", func(t *testing.T) {
		bs := new(MockBookingService)
		bs.On("IsPropertyAvailable", mock.Anything, "property-1",
			booking.Date(2025, 6, 1), booking.Date(2025, 6, 7)).Return(true, nil)
		h := NewPropertyHandler(new(MockPropertyService), bs)

		req := httptest.NewRequest(http.MethodGet,
			"/properties/property-1/availability?check_in=2025-06-01&check_out=2025-06-07", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("property-1")

		err := h.CheckAvailability(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"available":true`)
	})

	t.Run("日付パラメータなしは400", func(t *testing.T) {
		h := NewPropertyHandler(new(MockPropertyService), new(MockBookingService))

		req := httptest.NewRequest(http.MethodGet, "/properties/property-1/availability", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("property-1")

		err := h.CheckAvailability(c)

		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("無効な日付範囲は400", func(t *testing.T) {
		bs := new(MockBookingService)
		bs.On("IsPropertyAvailable", mock.Anything, "property-1",
			booking.Date(2025, 6, 7), booking.Date(2025, 6, 1)).Return(false, booking.ErrInvalidDateRange)
		h := NewPropertyHandler(new(MockPropertyService), bs)

		req := httptest.NewRequest(http.MethodGet,
			"/properties/property-1/availability?check_in=2025-06-07&check_out=2025-06-01", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("property-1")

		err := h.CheckAvailability(c)

		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestPropertyHandler_Search(t *testing.T) {
	e := NewTestEcho()

	t.Run("検索条件が渡される", func(t *testing.T) {
		service := new(MockPropertyService)
		service.On("SearchAvailable", mock.Anything, mock.MatchedBy(func(in application.SearchAvailableInput) bool {
			return in.City == "Hakone" && in.MaxPrice == 30000 && in.MinGuests == 2
		})).Return([]*property.Property{sampleProperty()}, nil)
		h := NewPropertyHandler(service, new(MockBookingService))

		req := httptest.NewRequest(http.MethodGet,
			"/properties/search?check_in=2025-06-01&check_out=2025-06-07&city=Hakone&max_price=30000&guests=2", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.Search(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("check_inなしは400", func(t *testing.T) {
		h := NewPropertyHandler(new(MockPropertyService), new(MockBookingService))

		req := httptest.NewRequest(http.MethodGet, "/properties/search?check_out=2025-06-07", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.Search(c)

		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestPropertyHandler_SetAvailability(t *testing.T) {
	e := NewTestEcho()

	t.Run("受付フラグを変更できる", func(t *testing.T) {
		service := new(MockPropertyService)
		closed := sampleProperty()
		closed.SetAvailability(false)
		service.On("SetAvailability", mock.Anything, "property-1", "host-1", false).Return(closed, nil)
		h := NewPropertyHandler(service, new(MockBookingService))

		req := httptest.NewRequest(http.MethodPatch, "/properties/property-1/availability",
			strings.NewReader(`{"available":false}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "host-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("property-1")

		err := h.SetAvailability(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"available":false`)
	})

	t.Run("ホストでも管理者でもない場合は403", func(t *testing.T) {
		service := new(MockPropertyService)
		service.On("SetAvailability", mock.Anything, "property-1", "stranger", false).Return(nil, booking.ErrForbidden)
		h := NewPropertyHandler(service, new(MockBookingService))

		req := httptest.NewRequest(http.MethodPatch, "/properties/property-1/availability",
			strings.NewReader(`{"available":false}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("X-User-ID", "stranger")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("property-1")

		err := h.SetAvailability(c)

		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})
}
