package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kokitko/bookinline-sub000/internal/application"
	"github.com/kokitko/bookinline-sub000/internal/domain/property"
)

type PropertyHandler struct {
	service PropertyServiceInterface
	booking BookingServiceInterface
}

func NewPropertyHandler(s PropertyServiceInterface, bs BookingServiceInterface) *PropertyHandler {
	return &PropertyHandler{service: s, booking: bs}
}

type CreatePropertyRequest struct {
	Name          string `json:"name" validate:"required" example:"湖畔のコテージ"`
	Description   string `json:"description" example:"静かな湖畔に建つ2階建てコテージ"`
	City          string `json:"city" example:"Hakone"`
	PricePerNight int    `json:"price_per_night" validate:"gte=0" example:"24000"`
	MaxGuests     int    `json:"max_guests" validate:"required,gte=1" example:"4"`
}

type SetAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type PropertyResponse struct {
	ID            string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	OwnerID       string    `json:"owner_id" example:"host-123"`
	Name          string    `json:"name" example:"湖畔のコテージ"`
	Description   string    `json:"description,omitempty"`
	City          string    `json:"city" example:"Hakone"`
	PricePerNight int       `json:"price_per_night" example:"24000"`
	MaxGuests     int       `json:"max_guests" example:"4"`
	Available     bool      `json:"available" example:"true"`
	CreatedAt     time.Time `json:"created_at"`
}

type AvailabilityResponse struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in" example:"2025-06-01"`
	CheckOut   string `json:"check_out" example:"2025-06-07"`
	Available  bool   `json:"available"`
}

func toPropertyResponse(p *property.Property) PropertyResponse {
	return PropertyResponse{
		ID: p.ID, OwnerID: p.OwnerID, Name: p.Name, Description: p.Description,
		City: p.City, PricePerNight: p.PricePerNight, MaxGuests: p.MaxGuests,
		Available: p.Available, CreatedAt: p.CreatedAt,
	}
}

// Create godoc
// @Summary 物件を登録
// @Tags properties
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ホストID"
// @Param request body CreatePropertyRequest true "物件情報"
// @Success 201 {object} PropertyResponse
// @Failure 400 {object} map[string]string
// @Router /properties [post]
func (h *PropertyHandler) Create(c echo.Context) error {
	ownerID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req CreatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.CreateProperty(c.Request().Context(), application.CreatePropertyInput{
		OwnerID: ownerID, Name: req.Name, Description: req.Description,
		City: req.City, PricePerNight: req.PricePerNight, MaxGuests: req.MaxGuests,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toPropertyResponse(p))
}

// GetByID godoc
// @Summary 物件を取得
// @Tags properties
// @Produce json
// @Param id path string true "物件ID"
// @Success 200 {object} PropertyResponse
// @Failure 404 {object} map[string]string
// @Router /properties/{id} [get]
func (h *PropertyHandler) GetByID(c echo.Context) error {
	p, err := h.service.GetProperty(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(bookingErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, toPropertyResponse(p))
}

// List godoc
// @Summary 物件一覧を取得
// @Tags properties
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} PropertyResponse
// @Router /properties [get]
func (h *PropertyHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	properties, err := h.service.ListProperties(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toPropertyResponses(properties))
}

// Search godoc
// @Summary 空室のある物件を検索
// @Description 指定期間 [check_in, check_out) が空いている物件を条件で絞り込みます
// @Tags properties
// @Produce json
// @Param check_in query string true "チェックイン日（YYYY-MM-DD）"
// @Param check_out query string true "チェックアウト日（YYYY-MM-DD）"
// @Param city query string false "都市"
// @Param max_price query int false "1泊あたり上限料金"
// @Param guests query int false "宿泊人数"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} PropertyResponse
// @Failure 400 {object} map[string]string
// @Router /properties/search [get]
func (h *PropertyHandler) Search(c echo.Context) error {
	checkIn, err := parseDate(c.QueryParam("check_in"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "check_in の形式が不正です（YYYY-MM-DD）")
	}
	checkOut, err := parseDate(c.QueryParam("check_out"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "check_out の形式が不正です（YYYY-MM-DD）")
	}
	maxPrice, _ := strconv.Atoi(c.QueryParam("max_price"))
	guests, _ := strconv.Atoi(c.QueryParam("guests"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	properties, err := h.service.SearchAvailable(c.Request().Context(), application.SearchAvailableInput{
		CheckIn: checkIn, CheckOut: checkOut,
		City: c.QueryParam("city"), MaxPrice: maxPrice, MinGuests: guests,
		Limit: limit, Offset: offset,
	})
	if err != nil {
		return echo.NewHTTPError(bookingErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, toPropertyResponses(properties))
}

// CheckAvailability godoc
// @Summary 物件の空室を照会
// @Description 指定期間 [check_in, check_out) に予約可能かを返します
// @Tags properties
// @Produce json
// @Param id path string true "物件ID"
// @Param check_in query string true "チェックイン日（YYYY-MM-DD）"
// @Param check_out query string true "チェックアウト日（YYYY-MM-DD）"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /properties/{id}/availability [get]
func (h *PropertyHandler) CheckAvailability(c echo.Context) error {
	checkIn, err := parseDate(c.QueryParam("check_in"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "check_in の形式が不正です（YYYY-MM-DD）")
	}
	checkOut, err := parseDate(c.QueryParam("check_out"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "check_out の形式が不正です（YYYY-MM-DD）")
	}
	propertyID := c.Param("id")
	available, err := h.booking.IsPropertyAvailable(c.Request().Context(), propertyID, checkIn, checkOut)
	if err != nil {
		return echo.NewHTTPError(bookingErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{
		PropertyID: propertyID,
		CheckIn:    checkIn.Format(dateLayout),
		CheckOut:   checkOut.Format(dateLayout),
		Available:  available,
	})
}

// SetAvailability godoc
// @Summary 物件の受付フラグを変更
// @Description 受付停止中の物件は日付に関係なく新規予約を拒否します
// @Tags properties
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ホストまたは管理者ID"
// @Param id path string true "物件ID"
// @Param request body SetAvailabilityRequest true "受付フラグ"
// @Success 200 {object} PropertyResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /properties/{id}/availability [patch]
func (h *PropertyHandler) SetAvailability(c echo.Context) error {
	actorID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req SetAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.SetAvailability(c.Request().Context(), c.Param("id"), actorID, *req.Available)
	if err != nil {
		return echo.NewHTTPError(bookingErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, toPropertyResponse(p))
}

func toPropertyResponses(properties []*property.Property) []PropertyResponse {
	resp := make([]PropertyResponse, len(properties))
	for i, p := range properties {
		resp[i] = toPropertyResponse(p)
	}
	return resp
}
