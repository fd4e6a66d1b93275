package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pos-service/models"
)

type MongoSaleRepository struct {
	collection *mongo.Collection
}

func NewMongoSaleRepository(db *mongo.Database) *MongoSaleRepository {
	return &MongoSaleRepository{collection: db.Collection("sales")}
}

func (r *MongoSaleRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sale_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
	})
	return err
}

func (r *MongoSaleRepository) Create(ctx context.Context, s *models.Sale) error {
	_, err := r.collection.InsertOne(ctx, s)
	return err
}

func (r *MongoSaleRepository) FindSince(ctx context.Context, since time.Time) ([]models.Sale, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"created_at": bson.M{"$gte": since}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sales []models.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}
