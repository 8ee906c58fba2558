package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shaxzod67/Sunnat/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

type orderItemDoc struct {
	ProductID string  `bson:"id"`
	Name      string  `bson:"name"`
	ImageURL  string  `bson:"img"`
	Quantity  int     `bson:"quantity"`
	UnitPrice float64 `bson:"price"`
}

type orderDoc struct {
	ID              string         `bson:"_id"`
	Items           []orderItemDoc `bson:"items"`
	BuyerName       string         `bson:"itemName"`
	BuyerPhone      string         `bson:"tel"`
	ShippingAddress string         `bson:"shippingAddress"`
	TotalPrice      string         `bson:"totalPrice"`
	CreatedAt       time.Time      `bson:"createdAt"`
}

func (d orderDoc) toDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			UnitPrice: decimal.NewFromFloat(item.UnitPrice),
		})
	}
	return domain.Order{
		ID:              d.ID,
		Items:           items,
		BuyerName:       d.BuyerName,
		BuyerPhone:      d.BuyerPhone,
		ShippingAddress: d.ShippingAddress,
		TotalPrice:      d.TotalPrice,
		CreatedAt:       d.CreatedAt,
	}
}

// Repository is the MongoDB binding for submitted orders. Orders are written
// once and never updated; the admin side may list and delete them.
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection("orders")}
}

// CreateOrder persists the order as a single document insert and returns the
// assigned id. The insert either lands whole or not at all.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (string, error) {
	items := make([]orderItemDoc, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemDoc{
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.InexactFloat64(),
		})
	}

	doc := orderDoc{
		ID:              uuid.NewString(),
		Items:           items,
		BuyerName:       order.BuyerName,
		BuyerPhone:      order.BuyerPhone,
		ShippingAddress: order.ShippingAddress,
		TotalPrice:      order.TotalPrice,
		CreatedAt:       order.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert order: %w", err)
	}
	return doc.ID, nil
}

// ListOrders returns all submitted orders, newest first.
func (r *Repository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Order
	for cursor.Next(ctx) {
		var doc orderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}
	return out, nil
}

func (r *Repository) DeleteOrder(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}
