package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"salonbook/database"
	"salonbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAppointmentTypeRepo implements AppointmentTypeRepository using MongoDB.
type MongoAppointmentTypeRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentTypeRepo constructs a new instance of MongoAppointmentTypeRepo.
func NewMongoAppointmentTypeRepo() AppointmentTypeRepository {
	return &MongoAppointmentTypeRepo{
		coll: database.DB().Collection("appointment_types"),
	}
}

func (repo *MongoAppointmentTypeRepo) GetByID(ctx context.Context, id string) (*models.AppointmentType, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var at models.AppointmentType
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&at); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching appointment type %s: %w", id, err)
	}
	return &at, nil
}

func (repo *MongoAppointmentTypeRepo) List(ctx context.Context, f Filter) ([]models.AppointmentType, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	access := bson.A{bson.M{"access": models.AccessPublic}}
	if len(f.InviteTypeIDs) > 0 {
		access = append(access, bson.M{"id": bson.M{"$in": f.InviteTypeIDs}})
	}
	filter := bson.M{"$or": access}
	if f.Location != "" {
		filter["location"] = f.Location
	}
	if f.NameLike != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: f.NameLike, Options: "i"}}
	}

	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing appointment types: %w", err)
	}
	defer cursor.Close(ctx)

	var types []models.AppointmentType
	if err := cursor.All(ctx, &types); err != nil {
		return nil, fmt.Errorf("error decoding appointment types: %w", err)
	}
	return types, nil
}
