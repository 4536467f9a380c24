package models

import "time"

// WorkingPeriod is one recurring weekly block of declared working hours,
// expressed in the provider's timezone as minutes from midnight.
type WorkingPeriod struct {
	Weekday     time.Weekday `bson:"weekday" json:"weekday"`
	StartMinute int          `bson:"startMinute" json:"startMinute"`
	EndMinute   int          `bson:"endMinute" json:"endMinute"`
}

// StaffMember is a person with a personal working calendar. Availability is
// exclusive: any overlapping reservation makes the staff member busy.
type StaffMember struct {
	ID           string          `bson:"id" json:"id"`
	Name         string          `bson:"name" json:"name"`
	Email        string          `bson:"email" json:"email"`
	Timezone     string          `bson:"timezone" json:"timezone"`
	WorkingHours []WorkingPeriod `bson:"workingHours" json:"workingHours"`
	Active       bool            `bson:"active" json:"active"`

	// LastBookedAt backs the least-recently-booked assignment policy.
	LastBookedAt time.Time `bson:"lastBookedAt,omitempty" json:"lastBookedAt,omitempty"`
}

// Resource is a bookable asset with a declared concurrent capacity. A
// shareable resource can serve several overlapping reservations up to its
// capacity; a non-shareable one is exclusive-use.
type Resource struct {
	ID           string          `bson:"id" json:"id"`
	Name         string          `bson:"name" json:"name"`
	Capacity     int             `bson:"capacity" json:"capacity"`
	Shareable    bool            `bson:"shareable" json:"shareable"`
	WorkingHours []WorkingPeriod `bson:"workingHours" json:"workingHours"`
	Active       bool            `bson:"active" json:"active"`

	// LinkedResourceIDs declares resources pooled with this one for
	// combined-capacity offering.
	LinkedResourceIDs []string `bson:"linkedResourceIds,omitempty" json:"linkedResourceIds,omitempty"`
}

// Leave is a declared absence (staff leave or resource downtime) that is
// subtracted from working hours regardless of bookings.
type Leave struct {
	ID         string    `bson:"id" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	Start      time.Time `bson:"start" json:"start"`
	End        time.Time `bson:"end" json:"end"`
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
}
