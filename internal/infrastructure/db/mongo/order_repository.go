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

const collectionOrders = "orders"

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

type mongoOrderItem struct {
	ProductID      string `bson:"product_id"`
	Quantity       int    `bson:"quantity"`
	UnitPriceCents int64  `bson:"unit_price_cents"`
}

type mongoOrder struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	UserID           string             `bson:"user_id"`
	Products         []mongoOrderItem   `bson:"products"`
	TotalCents       int64              `bson:"total_amount_cents"`
	Status           string             `bson:"status"`
	PaymentReference string             `bson:"payment_reference"`
	CreatedAt        time.Time          `bson:"created_at"`
}

func (o mongoOrder) toDomain() *domain.Order {
	items := make([]domain.OrderItem, 0, len(o.Products))
	for _, p := range o.Products {
		items = append(items, domain.OrderItem{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			UnitPrice: domain.Money(p.UnitPriceCents),
		})
	}
	return &domain.Order{
		ID:               o.ID.Hex(),
		UserID:           o.UserID,
		Items:            items,
		Total:            domain.Money(o.TotalCents),
		Status:           domain.OrderStatus(o.Status),
		PaymentReference: o.PaymentReference,
		CreatedAt:        o.CreatedAt.UTC(),
	}
}

// Create inserts the order. A second paid order for the same payment
// reference violates the partial unique index and yields
// domain.ErrPaymentAlreadyUsed.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items := make([]mongoOrderItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, mongoOrderItem{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: int64(it.UnitPrice),
		})
	}
	doc := mongoOrder{
		ID:               primitive.NewObjectID(),
		UserID:           order.UserID,
		Products:         items,
		TotalCents:       int64(order.Total),
		Status:           string(order.Status),
		PaymentReference: order.PaymentReference,
		CreatedAt:        order.CreatedAt,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrPaymentAlreadyUsed
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoOrder
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.toDomain())
	}
	return orders, nil
}

func (r *OrderRepository) FindPaidByPaymentReference(ctx context.Context, ref string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mo mongoOrder
	filter := bson.M{"payment_reference": ref, "status": string(domain.OrderPaid)}
	if err := r.col.FindOne(ctx, filter).Decode(&mo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return mo.toDomain(), nil
}

// EnsureIndexes creates necessary indexes on the orders collection.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys: bson.D{{Key: "payment_reference", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.OrderPaid)}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
