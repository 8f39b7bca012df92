package cache

import (
	"context"
	"time"

	"github.com/pointme/resilience/internal/core/domain"
)

// Fixed namespace keys and their default TTLs. These are policy over the
// generic store operations, not a separate mechanism.
const (
	KeyServices = "services"
	KeyProfile  = "profile"
	KeyBookings = "bookings"

	ServicesTTL = 24 * time.Hour
	ProfileTTL  = 7 * 24 * time.Hour
	BookingsTTL = 12 * time.Hour
)

func (s *Store) SetServices(ctx context.Context, services []domain.Service) error {
	return s.Set(ctx, KeyServices, services, ServicesTTL, "")
}

func (s *Store) GetServices(ctx context.Context) ([]domain.Service, bool, error) {
	var services []domain.Service
	ok, err := s.Get(ctx, KeyServices, "", &services)
	return services, ok, err
}

func (s *Store) SetProfile(ctx context.Context, profile *domain.UserProfile) error {
	return s.Set(ctx, KeyProfile, profile, ProfileTTL, "")
}

func (s *Store) GetProfile(ctx context.Context) (*domain.UserProfile, bool, error) {
	var profile domain.UserProfile
	ok, err := s.Get(ctx, KeyProfile, "", &profile)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &profile, true, nil
}

func (s *Store) SetBookings(ctx context.Context, bookings []domain.Booking) error {
	return s.Set(ctx, KeyBookings, bookings, BookingsTTL, "")
}

func (s *Store) GetBookings(ctx context.Context) ([]domain.Booking, bool, error) {
	var bookings []domain.Booking
	ok, err := s.Get(ctx, KeyBookings, "", &bookings)
	return bookings, ok, err
}
