package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shaxzod67/Sunnat/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// The product collection keeps its historical name "blogs"; renaming it would
// strand every existing deployment's data.
const collectionName = "blogs"

// productDoc is the stored shape of a product. Prices are numeric in the
// collection and carried as decimals in the domain.
type productDoc struct {
	ID          string  `bson:"_id"`
	Category    string  `bson:"category"`
	Description string  `bson:"description"`
	ImageURL    string  `bson:"img"`
	Price       float64 `bson:"price"`
}

func (d productDoc) toDomain() domain.Product {
	return domain.Product{
		ID:          d.ID,
		Category:    d.Category,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Price:       decimal.NewFromFloat(d.Price),
	}
}

func docFromDomain(p domain.Product) productDoc {
	return productDoc{
		ID:          p.ID,
		Category:    p.Category,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price.InexactFloat64(),
	}
}

// Repository is the MongoDB binding for the product catalog. The feed reads
// snapshots through it; the admin editor endpoints use the write methods.
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection(collectionName)}
}

// ListProducts returns the complete current catalog in a stable order.
func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	for cursor.Next(ctx) {
		var doc productDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}
	return products, nil
}

// InsertProduct creates a new catalog record and returns its assigned id.
func (r *Repository) InsertProduct(ctx context.Context, p domain.Product) (string, error) {
	doc := docFromDomain(p)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert product: %w", err)
	}
	return doc.ID, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p domain.Product) error {
	filter := bson.M{"_id": p.ID}
	update := bson.M{"$set": bson.M{
		"category":    p.Category,
		"description": p.Description,
		"img":         p.ImageURL,
		"price":       p.Price.InexactFloat64(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Watch opens a change stream over the product collection. Any insert, update
// or delete produces an event; the feed re-reads the full collection per
// event rather than applying diffs.
func (r *Repository) Watch(ctx context.Context) (Changes, error) {
	stream, err := r.collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}
	return stream, nil
}
