package providerRepo

import (
	"context"
	"fmt"
	"time"

	"salonbook/database"
	"salonbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProviderRepo implements ProviderRepository using MongoDB. Staff and
// resources live in separate collections keyed by the shared provider id
// space.
type MongoProviderRepo struct {
	staffColl    *mongo.Collection
	resourceColl *mongo.Collection
}

// NewMongoProviderRepo constructs a new instance of MongoProviderRepo.
func NewMongoProviderRepo() ProviderRepository {
	db := database.DB()
	return &MongoProviderRepo{
		staffColl:    db.Collection("staff"),
		resourceColl: db.Collection("resources"),
	}
}

func (repo *MongoProviderRepo) GetStaff(ctx context.Context, ids []string) ([]models.StaffMember, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.staffColl.Find(ctx, bson.M{"id": bson.M{"$in": ids}, "active": true})
	if err != nil {
		return nil, fmt.Errorf("error fetching staff members: %w", err)
	}
	defer cursor.Close(ctx)

	var staff []models.StaffMember
	if err := cursor.All(ctx, &staff); err != nil {
		return nil, fmt.Errorf("error decoding staff members: %w", err)
	}
	return staff, nil
}

func (repo *MongoProviderRepo) GetResources(ctx context.Context, ids []string) ([]models.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.resourceColl.Find(ctx, bson.M{"id": bson.M{"$in": ids}, "active": true})
	if err != nil {
		return nil, fmt.Errorf("error fetching resources: %w", err)
	}
	defer cursor.Close(ctx)

	var resources []models.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, fmt.Errorf("error decoding resources: %w", err)
	}
	return resources, nil
}

func (repo *MongoProviderRepo) MarkStaffBooked(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.staffColl.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"lastBookedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("error updating staff lastBookedAt: %w", err)
	}
	return nil
}
