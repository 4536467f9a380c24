package models

import "time"

// Customer is the salon client identity created or matched at commit time.
// Matching is by normalized email plus normalized phone: a mismatch on either
// field forces a new identity rather than mutating the existing one.
type Customer struct {
	ID              string    `bson:"id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Email           string    `bson:"email" json:"email"`
	NormalizedEmail string    `bson:"normalizedEmail" json:"-"`
	Phone           string    `bson:"phone" json:"phone"`
	NormalizedPhone string    `bson:"normalizedPhone" json:"-"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

// CustomerFields is the contact block submitted with a booking.
type CustomerFields struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}
