package model

import "fmt"

const CounterTableName = "counters"

// BookingCounterKey is the counter document used to mint human booking ids.
const BookingCounterKey = "bookingId"

type Counter struct {
	ID       string `bson:"_id"`
	Sequence int64  `bson:"sequence_value"`
}

func (*Counter) TableName() string { return CounterTableName }

// FormatBookingID renders a sequence value as the platform's human booking
// id, e.g. 42 -> "#B00042".
func FormatBookingID(seq int64) string {
	return fmt.Sprintf("#B%05d", seq)
}
