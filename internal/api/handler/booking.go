package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kokitko/bookinline-sub000/internal/application"
	"github.com/kokitko/bookinline-sub000/internal/domain/booking"
	"github.com/kokitko/bookinline-sub000/internal/domain/property"
)

// dateLayout はAPI上の日付表現（時刻なし）
const dateLayout = "2006-01-02"

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	PropertyID string `json:"property_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	CheckIn    string `json:"check_in" validate:"required" example:"2025-06-01"`
	CheckOut   string `json:"check_out" validate:"required" example:"2025-06-07"`
}

type BookingResponse struct {
	ID          string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PropertyID  string     `json:"property_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	GuestID     string     `json:"guest_id" example:"user-123"`
	CheckIn     string     `json:"check_in" example:"2025-06-01"`
	CheckOut    string     `json:"check_out" example:"2025-06-07"`
	Status      string     `json:"status" example:"pending"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, PropertyID: b.PropertyID, GuestID: b.GuestID,
		CheckIn: b.CheckIn.Format(dateLayout), CheckOut: b.CheckOut.Format(dateLayout),
		Status: string(b.Status), ConfirmedAt: b.ConfirmedAt, CreatedAt: b.CreatedAt,
	}
}

// bookingErrorStatus はドメインエラー種別をHTTPステータスへ対応付ける
func bookingErrorStatus(err error) int {
	switch {
	case errors.Is(err, booking.ErrBookingNotFound), errors.Is(err, property.ErrPropertyNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrDateConflict),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, property.ErrPropertyUnavailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func requireUserID(c echo.Context) (string, error) {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	return userID, nil
}

// Create godoc
// @Summary 予約を作成
// @Description 指定期間が空いている場合のみ保留中の予約を作成します
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ゲストID"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string "期間が既に予約済み、または物件が受付停止中"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	guestID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "check_in の形式が不正です（YYYY-MM-DD）")
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "check_out の形式が不正です（YYYY-MM-DD）")
	}
	b, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		PropertyID: req.PropertyID, GuestID: guestID, CheckIn: checkIn, CheckOut: checkOut,
	})
	if err != nil {
		return echo.NewHTTPError(bookingErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(bookingErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetGuestBookings godoc
// @Summary ゲストの予約一覧を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ゲストID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) GetGuestBookings(c echo.Context) error {
	guestID, err := requireUserID(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.GetGuestBookings(c.Request().Context(), guestID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary 予約を確定
// @Description 保留中の予約を物件のホストが確定します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ホストID"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "確定できない状態"
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c echo.Context) error {
	actorID, err := requireUserID(c)
	if err != nil {
		return err
	}
	b, err := h.service.ConfirmBooking(c.Request().Context(), c.Param("id"), actorID)
	if err != nil {
		return echo.NewHTTPError(bookingErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description ゲスト・ホスト・管理者のいずれかが予約をキャンセルします
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "実行者ID"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "キャンセルできない状態"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	actorID, err := requireUserID(c)
	if err != nil {
		return err
	}
	b, err := h.service.CancelBooking(c.Request().Context(), c.Param("id"), actorID)
	if err != nil {
		return echo.NewHTTPError(bookingErrorStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

type SweepResponse struct {
	AsOf  string `json:"as_of" example:"2025-06-08"`
	Count int    `json:"count" example:"3"`
}

// Sweep godoc
// @Summary チェックアウトスイープを実行
// @Description 外部スケジューラー向けの掃き出しエントリポイント（管理者のみ）
// @Tags admin
// @Produce json
// @Param X-User-ID header string true "管理者ID"
// @Param as_of query string false "基準日（省略時は今日）"
// @Success 200 {object} SweepResponse
// @Failure 403 {object} map[string]string
// @Router /admin/sweep [post]
func (h *BookingHandler) Sweep(c echo.Context) error {
	asOf := time.Now()
	if param := c.QueryParam("as_of"); param != "" {
		parsed, err := parseDate(param)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "as_of の形式が不正です（YYYY-MM-DD）")
		}
		asOf = parsed
	}
	count, err := h.service.CompleteElapsedBookings(c.Request().Context(), asOf)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, SweepResponse{AsOf: asOf.Format(dateLayout), Count: count})
}
