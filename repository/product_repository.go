package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pos-service/models"
)

type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "barcode", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
	})
	return err
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MongoProductRepository) Find(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"barcode": filter.Search},
		}
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *MongoProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"$expr": bson.M{"$lte": bson.A{"$stock_quantity", "$reorder_level"}},
	})
}

func (r *MongoProductRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			categories = append(categories, s)
		}
	}
	return categories, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, p)
	return err
}

// DecrementStock applies a conditional decrement per line: the update only
// matches while stock_quantity >= requested, so a concurrent finalize racing
// for the last unit loses cleanly. On shortage or storage failure, lines
// already applied are compensated back before returning.
func (r *MongoProductRepository) DecrementStock(ctx context.Context, items []models.SaleItemInput) (map[string]int, error) {
	applied := make([]models.SaleItemInput, 0, len(items))
	newQuantities := make(map[string]int, len(items))

	for _, it := range items {
		filter := bson.M{
			"_id":            it.ProductID,
			"stock_quantity": bson.M{"$gte": it.Quantity},
		}
		update := bson.M{
			"$inc": bson.M{"stock_quantity": -it.Quantity},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		var p models.Product
		err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
		if errors.Is(err, mongo.ErrNoDocuments) {
			available := 0
			if current, ferr := r.FindByID(ctx, it.ProductID); ferr == nil {
				available = current.StockQuantity
			}
			if rerr := r.RestoreStock(ctx, applied); rerr != nil {
				return nil, rerr
			}
			return nil, &StockShortageError{
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: available,
			}
		}
		if err != nil {
			if rerr := r.RestoreStock(ctx, applied); rerr != nil {
				return nil, rerr
			}
			return nil, err
		}

		applied = append(applied, it)
		newQuantities[it.ProductID] = p.StockQuantity
	}
	return newQuantities, nil
}

func (r *MongoProductRepository) RestoreStock(ctx context.Context, items []models.SaleItemInput) error {
	for _, it := range items {
		_, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": it.ProductID},
			bson.M{
				"$inc": bson.M{"stock_quantity": it.Quantity},
				"$set": bson.M{"updated_at": time.Now().UTC()},
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *MongoProductRepository) Replenish(ctx context.Context, id string, qty int) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock_quantity": qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		opts,
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
