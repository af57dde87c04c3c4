package model

import "time"

const BookingTableName = "bookings"

// Booking lifecycle statuses. The messaging core only ever writes
// Negotiating (first offer) and Negotiated (offer accepted); the rest
// belong to the booking service and pass through untouched.
const (
	BookingPending     = "pending"
	BookingNegotiating = "negotiating"
	BookingNegotiated  = "negotiated"
	BookingAssigned    = "assigned"
	BookingAccepted    = "accepted"
	BookingInProgress  = "in-progress"
	BookingCompleted   = "completed"
	BookingCancelled   = "cancelled"
	BookingRejected    = "rejected"
)

// Payment is an opaque snapshot owned by the booking service.
type Payment struct {
	ServiceCharges float64 `bson:"service_charges,omitempty" json:"serviceCharges,omitempty"`
	TaxCharges     float64 `bson:"tax_charges,omitempty" json:"taxCharges,omitempty"`
	TotalCharges   float64 `bson:"total_charges,omitempty" json:"totalCharges,omitempty"`
	Currency       string  `bson:"currency,omitempty" json:"currency,omitempty"`
	PaymentMethod  string  `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	PaymentStatus  string  `bson:"payment_status,omitempty" json:"paymentStatus,omitempty"`
}

type Booking struct {
	ID        string   `bson:"_id" json:"id"`
	BookingID string   `bson:"booking_id,omitempty" json:"bookingId,omitempty"` // human id, e.g. #B00042
	User      string   `bson:"user" json:"user"`                                // owning user (the requesting party)
	Tradesman []string `bson:"tradesman,omitempty" json:"tradesman,omitempty"`
	Service   string   `bson:"service,omitempty" json:"service,omitempty"`
	Status    string   `bson:"status" json:"status"`

	// Negotiation aggregates. OffersCount only counts offers made by a
	// party other than the owning user; Offers is the amount history in
	// submission order. Both are advanced with a single $inc+$push write.
	OffersCount int       `bson:"offers_count" json:"offersCount"`
	Offers      []float64 `bson:"offers,omitempty" json:"offers,omitempty"`

	Payment   *Payment  `bson:"payment,omitempty" json:"payment,omitempty"`
	Address   string    `bson:"address,omitempty" json:"address,omitempty"`
	City      string    `bson:"city,omitempty" json:"city,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

func (*Booking) TableName() string { return BookingTableName }
