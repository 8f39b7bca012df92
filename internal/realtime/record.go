package realtime

import (
	"encoding/json"

	"github.com/pointme/resilience/internal/core/domain"
)

func unmarshalRecord(raw json.RawMessage, rec *domain.Record) error {
	return json.Unmarshal(raw, rec)
}

// DecodeBookings converts a snapshot into typed bookings. Records that do
// not decode are skipped; the reconciler holds whatever the backend sent.
func DecodeBookings(records []domain.Record) []domain.Booking {
	out := make([]domain.Booking, 0, len(records))
	for _, rec := range records {
		var b domain.Booking
		if decodeRecord(rec, &b) == nil {
			out = append(out, b)
		}
	}
	return out
}

// DecodeServices converts a snapshot into typed services.
func DecodeServices(records []domain.Record) []domain.Service {
	out := make([]domain.Service, 0, len(records))
	for _, rec := range records {
		var s domain.Service
		if decodeRecord(rec, &s) == nil {
			out = append(out, s)
		}
	}
	return out
}

func decodeRecord(rec domain.Record, dest any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
