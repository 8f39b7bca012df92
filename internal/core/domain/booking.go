package domain

// Booking represents a customer booking of a provider service.
type Booking struct {
	ID            string        `json:"id"`
	ServiceID     string        `json:"service_id"`
	CustomerID    string        `json:"customer_id"`
	ProviderID    string        `json:"provider_id"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Datetime      string        `json:"datetime"`
	TotalAmount   float64       `json:"total_amount"`
	Notes         string        `json:"notes,omitempty"`
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)
