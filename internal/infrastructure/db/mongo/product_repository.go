package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/commerce-api/internal/core/domain"
)

const collectionProducts = "products"

// ProductRepository is the read side of the catalog plus the upsert used by
// the seed command.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type mongoProduct struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description"`
	PriceCents    int64              `bson:"price_cents"`
	StockQuantity int                `bson:"stock_quantity"`
	ImageURL      string             `bson:"image_url"`
}

func (p mongoProduct) toDomain() *domain.Product {
	return &domain.Product{
		ID:            p.ID.Hex(),
		Name:          p.Name,
		Description:   p.Description,
		Price:         domain.Money(p.PriceCents),
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
	}
}

func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProduct
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return mp.toDomain(), nil
}

// UpsertByName creates or replaces the product with the same name and
// returns it with its id.
func (r *ProductRepository) UpsertByName(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":           p.Name,
		"description":    p.Description,
		"price_cents":    int64(p.Price),
		"stock_quantity": p.StockQuantity,
		"image_url":      p.ImageURL,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var mp mongoProduct
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"name": p.Name}, update, opts).Decode(&mp); err != nil {
		return nil, fmt.Errorf("upsert product: %w", err)
	}
	return mp.toDomain(), nil
}

// EnsureIndexes creates necessary indexes on the products collection.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
