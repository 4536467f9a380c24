package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salonbook/models"
)

// Commit performs the booking commit as a single MongoDB transaction:
// revalidate against session-visible state, insert the new customer (when
// the contact matched no existing identity), the reservation, and its
// allocation lines.
//
// Snapshot reads plus inserts of distinct documents never conflict on their
// own, so revalidation alone cannot stop two racing commits: each would see
// the pre-race state and both would insert. Every commit therefore bumps a
// version document per touched provider in provider_calendars. Two commits
// consuming the same provider collide on that shared document; the loser's
// transaction aborts with a transient write conflict, the driver retries it,
// and the retried revalidation now reads the winner's committed writes and
// returns the booking conflict.
func (repo *MongoReservationRepo) Commit(ctx context.Context, req CommitRequest) error {
	client := repo.reservationColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) (interface{}, error) {
		lines, err := req.Revalidate(sc, repo)
		if err != nil {
			return nil, err
		}
		for i := range lines {
			lines[i].ReservationID = req.Reservation.ID
		}

		for _, pid := range touchedProviders(req.Reservation, lines) {
			if _, err := repo.calendarColl.UpdateOne(sc,
				bson.M{"id": pid},
				bson.M{"$inc": bson.M{"version": 1}, "$set": bson.M{"updatedAt": time.Now()}},
				options.Update().SetUpsert(true),
			); err != nil {
				return nil, fmt.Errorf("bump calendar version for provider %s failed: %w", pid, err)
			}
		}

		if req.NewCustomer != nil {
			if _, err := repo.customerColl.InsertOne(sc, req.NewCustomer); err != nil {
				return nil, fmt.Errorf("insert customer failed: %w", err)
			}
		}
		if _, err := repo.reservationColl.InsertOne(sc, req.Reservation); err != nil {
			return nil, fmt.Errorf("insert reservation failed: %w", err)
		}
		if len(lines) > 0 {
			docs := make([]interface{}, len(lines))
			for i, l := range lines {
				docs[i] = l
			}
			if _, err := repo.allocationColl.InsertMany(sc, docs); err != nil {
				return nil, fmt.Errorf("insert allocation lines failed: %w", err)
			}
		}
		return nil, nil
	}

	// WithTransaction retries only transient transaction errors; a booking
	// ConflictError from revalidation passes through untouched.
	if _, err := sess.WithTransaction(ctx, txnFn); err != nil {
		return err
	}
	return nil
}

// touchedProviders lists the providers whose availability this commit
// consumes: the assigned staff member, or each resource carrying an
// allocation line, deduplicated in first-seen order.
func touchedProviders(r *models.Reservation, lines []models.CapacityAllocation) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	add(r.StaffID)
	for _, l := range lines {
		add(l.ResourceID)
	}
	return ids
}
