package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"salonbook/database"
	"salonbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoReservationRepo implements ReservationRepository using MongoDB.
type MongoReservationRepo struct {
	reservationColl *mongo.Collection
	allocationColl  *mongo.Collection
	leaveColl       *mongo.Collection
	customerColl    *mongo.Collection
	// calendarColl holds one version document per provider; Commit bumps it
	// so concurrent commits for the same provider conflict (transaction.go).
	calendarColl *mongo.Collection
}

// NewMongoReservationRepo constructs a new instance of MongoReservationRepo.
func NewMongoReservationRepo() ReservationRepository {
	db := database.DB()
	return &MongoReservationRepo{
		reservationColl: db.Collection("reservations"),
		allocationColl:  db.Collection("allocations"),
		leaveColl:       db.Collection("leaves"),
		customerColl:    db.Collection("customers"),
		calendarColl:    db.Collection("provider_calendars"),
	}
}

func (repo *MongoReservationRepo) StaffReservations(ctx context.Context, staffID string, from, to time.Time) ([]models.Reservation, error) {
	filter := bson.M{
		"staffId": staffID,
		"status":  bson.M{"$ne": models.ReservationCancelled},
		"start":   bson.M{"$lt": to},
		"end":     bson.M{"$gt": from},
	}
	cursor, err := repo.reservationColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding overlapping reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("error decoding reservations: %w", err)
	}
	return reservations, nil
}

func (repo *MongoReservationRepo) ResourceAllocations(ctx context.Context, resourceIDs []string, from, to time.Time) ([]models.CapacityAllocation, error) {
	if len(resourceIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"resourceId": bson.M{"$in": resourceIDs},
		"start":      bson.M{"$lt": to},
		"end":        bson.M{"$gt": from},
	}
	cursor, err := repo.allocationColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding overlapping allocations: %w", err)
	}
	defer cursor.Close(ctx)

	var lines []models.CapacityAllocation
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, fmt.Errorf("error decoding allocations: %w", err)
	}
	return repo.dropCancelled(ctx, lines)
}

// dropCancelled filters out lines whose owning reservation was cancelled.
// Lines are immutable, so consumption is decided by reservation status.
func (repo *MongoReservationRepo) dropCancelled(ctx context.Context, lines []models.CapacityAllocation) ([]models.CapacityAllocation, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ReservationID)
	}
	cursor, err := repo.reservationColl.Find(ctx, bson.M{
		"id":     bson.M{"$in": ids},
		"status": bson.M{"$ne": models.ReservationCancelled},
	})
	if err != nil {
		return nil, fmt.Errorf("error checking reservation status: %w", err)
	}
	defer cursor.Close(ctx)

	active := make(map[string]bool)
	for cursor.Next(ctx) {
		var r models.Reservation
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("error decoding reservation: %w", err)
		}
		active[r.ID] = true
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	var kept []models.CapacityAllocation
	for _, l := range lines {
		if active[l.ReservationID] {
			kept = append(kept, l)
		}
	}
	return kept, nil
}

func (repo *MongoReservationRepo) Leaves(ctx context.Context, providerIDs []string, from, to time.Time) ([]models.Leave, error) {
	if len(providerIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"providerId": bson.M{"$in": providerIDs},
		"start":      bson.M{"$lt": to},
		"end":        bson.M{"$gt": from},
	}
	cursor, err := repo.leaveColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding leaves: %w", err)
	}
	defer cursor.Close(ctx)

	var leaves []models.Leave
	if err := cursor.All(ctx, &leaves); err != nil {
		return nil, fmt.Errorf("error decoding leaves: %w", err)
	}
	return leaves, nil
}

func (repo *MongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var r models.Reservation
	if err := repo.reservationColl.FindOne(ctx, bson.M{"id": id}).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching reservation %s: %w", id, err)
	}
	return &r, nil
}

func (repo *MongoReservationRepo) SetDepositRef(ctx context.Context, id, ref string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.reservationColl.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"depositRef": ref}},
	)
	if err != nil {
		return fmt.Errorf("error recording deposit ref on reservation %s: %w", id, err)
	}
	return nil
}

func (repo *MongoReservationRepo) Cancel(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.reservationColl.UpdateOne(ctx,
		bson.M{"id": id, "status": bson.M{"$ne": models.ReservationCancelled}},
		bson.M{"$set": bson.M{"status": models.ReservationCancelled}},
	)
	if err != nil {
		return fmt.Errorf("error cancelling reservation %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reservation %s not found or already cancelled", id)
	}
	return nil
}
