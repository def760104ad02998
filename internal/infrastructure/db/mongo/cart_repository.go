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

const collectionCarts = "carts"

// CartRepository stores one document per user. Writes are conditional on the
// version field so that a stale read can never overwrite a newer cart.
type CartRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		col: db.Collection(collectionCarts),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type mongoCartLine struct {
	ProductID      string    `bson:"product_id"`
	Quantity       int       `bson:"quantity"`
	UnitPriceCents int64     `bson:"unit_price_cents"`
	AddedAt        time.Time `bson:"added_at"`
}

type mongoCart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Items     []mongoCartLine    `bson:"items"`
	Version   int64              `bson:"version"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func toMongoLines(lines []domain.CartLine) []mongoCartLine {
	out := make([]mongoCartLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, mongoCartLine{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPriceCents: int64(l.UnitPrice),
			AddedAt:        l.AddedAt,
		})
	}
	return out
}

func (c mongoCart) toDomain() *domain.Cart {
	lines := make([]domain.CartLine, 0, len(c.Items))
	for _, l := range c.Items {
		lines = append(lines, domain.CartLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: domain.Money(l.UnitPriceCents),
			AddedAt:   l.AddedAt.UTC(),
		})
	}
	return &domain.Cart{
		ID:        c.ID.Hex(),
		UserID:    c.UserID,
		Lines:     lines,
		Version:   c.Version,
		UpdatedAt: c.UpdatedAt.UTC(),
	}
}

func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCart
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return mc.toDomain(), nil
}

// Save inserts the cart when Version is 0 and otherwise updates it only if
// the stored version still matches.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if cart.Version == 0 {
		doc := mongoCart{
			ID:        primitive.NewObjectID(),
			UserID:    cart.UserID,
			Items:     toMongoLines(cart.Lines),
			Version:   1,
			UpdatedAt: cart.UpdatedAt,
		}
		if _, err := r.col.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrCartVersionMismatch
			}
			return fmt.Errorf("insert cart: %w", err)
		}
		cart.ID = doc.ID.Hex()
		cart.Version = 1
		return nil
	}

	filter := bson.M{"user_id": cart.UserID, "version": cart.Version}
	update := bson.M{
		"$set": bson.M{"items": toMongoLines(cart.Lines), "updated_at": cart.UpdatedAt},
		"$inc": bson.M{"version": 1},
	}
	if err := r.update(ctx, filter, update); err != nil {
		return err
	}
	cart.Version++
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID string, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{"items": bson.A{}, "updated_at": r.now()},
		"$inc": bson.M{"version": 1},
	}
	return r.update(ctx, filter, update)
}

func (r *CartRepository) update(ctx context.Context, filter, update bson.M) error {
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCartVersionMismatch
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the carts collection.
func (r *CartRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
