package models

import "time"

// ReservationStatus tracks the booking lifecycle. The engine only ever moves
// draft -> booked; later states are advanced externally through the payment
// and fulfillment flows.
type ReservationStatus string

const (
	ReservationDraft     ReservationStatus = "draft"
	ReservationBooked    ReservationStatus = "booked"
	ReservationCancelled ReservationStatus = "cancelled"
)

// IntakeAnswer is one answer to a declared intake question.
type IntakeAnswer struct {
	QuestionID string `bson:"questionId" json:"questionId"`
	Value      string `bson:"value" json:"value"`
}

// Reservation is the persisted outcome of a successful booking. Times are
// stored in UTC; Timezone records the client's display zone at booking time.
type Reservation struct {
	ID                string            `bson:"id" json:"id"`
	AppointmentTypeID string            `bson:"appointmentTypeId" json:"appointmentTypeId"`
	Name              string            `bson:"name" json:"name"`
	Start             time.Time         `bson:"start" json:"start"`
	End               time.Time         `bson:"end" json:"end"`
	Timezone          string            `bson:"timezone" json:"timezone"`
	CustomerID        string            `bson:"customerId" json:"customerId"`
	StaffID           string            `bson:"staffId,omitempty" json:"staffId,omitempty"`
	GuestEmails       []string          `bson:"guestEmails,omitempty" json:"guestEmails,omitempty"`
	Answers           []IntakeAnswer    `bson:"answers,omitempty" json:"answers,omitempty"`
	AttendeeCount     int               `bson:"attendeeCount" json:"attendeeCount"`
	Status            ReservationStatus `bson:"status" json:"status"`
	DepositRef        string            `bson:"depositRef,omitempty" json:"depositRef,omitempty"`
	CreatedAt         time.Time         `bson:"createdAt" json:"createdAt"`
}

// Active reports whether the reservation still consumes availability.
func (r Reservation) Active() bool {
	return r.Status != ReservationCancelled
}

// CapacityAllocation records how much of one resource's capacity a
// reservation consumes over its interval. Lines are immutable once created;
// cancellation is expressed on the owning reservation, never by editing the
// line.
type CapacityAllocation struct {
	ID               string    `bson:"id" json:"id"`
	ResourceID       string    `bson:"resourceId" json:"resourceId"`
	ReservationID    string    `bson:"reservationId" json:"reservationId"`
	Start            time.Time `bson:"start" json:"start"`
	End              time.Time `bson:"end" json:"end"`
	CapacityReserved int       `bson:"capacityReserved" json:"capacityReserved"`
	CapacityUsed     int       `bson:"capacityUsed" json:"capacityUsed"`
}
