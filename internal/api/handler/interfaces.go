package handler

import (
	"context"
	"time"

	"github.com/kokitko/bookinline-sub000/internal/application"
	"github.com/kokitko/bookinline-sub000/internal/domain/booking"
	"github.com/kokitko/bookinline-sub000/internal/domain/property"
)

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetGuestBookings(ctx context.Context, guestID string, limit, offset int) ([]*booking.Booking, error)
	ConfirmBooking(ctx context.Context, id, actorID string) (*booking.Booking, error)
	CancelBooking(ctx context.Context, id, actorID string) (*booking.Booking, error)
	IsPropertyAvailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error)
	CompleteElapsedBookings(ctx context.Context, asOf time.Time) (int, error)
}

// PropertyServiceInterface は物件サービスのインターフェース
type PropertyServiceInterface interface {
	CreateProperty(ctx context.Context, input application.CreatePropertyInput) (*property.Property, error)
	GetProperty(ctx context.Context, id string) (*property.Property, error)
	ListProperties(ctx context.Context, limit, offset int) ([]*property.Property, error)
	SetAvailability(ctx context.Context, id, actorID string, available bool) (*property.Property, error)
	SearchAvailable(ctx context.Context, input application.SearchAvailableInput) ([]*property.Property, error)
}
