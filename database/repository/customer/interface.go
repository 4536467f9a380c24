package customerRepo

import (
	"context"

	"salonbook/models"
)

// CustomerRepository looks up salon client identities. Creation happens
// inside the reservation commit transaction, never here.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	// FindByContact matches an existing identity by normalized email AND
	// normalized phone. A mismatch on either field yields no match, which
	// forces the commit to create a fresh identity.
	FindByContact(ctx context.Context, normEmail, normPhone string) (*models.Customer, error)
}
