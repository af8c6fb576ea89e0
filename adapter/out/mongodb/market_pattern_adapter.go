// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"market_server/core/domain"
	"market_server/core/port/out"
	"market_server/pkg/apperr"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Pattern Adapter
// =============================================================================

const collectionPurchasePatterns = "purchase_patterns"

// PatternAdapter implements out.PatternRepository using MongoDB.
type PatternAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewPatternAdapter creates a new MongoDB pattern adapter.
func NewPatternAdapter(db *mongo.Database) *PatternAdapter {
	collection := db.Collection(collectionPurchasePatterns)
	return &PatternAdapter{
		db:         db,
		collection: collection,
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *PatternAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "order_date", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "season", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

// patternDocument represents the MongoDB document structure.
type patternDocument struct {
	ID      string `bson:"id"`
	UserID  string `bson:"user_id"`
	OrderID string `bson:"order_id"`

	Products   []patternProductDoc `bson:"products"`
	OrderValue float64             `bson:"order_value"`
	OrderDate  time.Time           `bson:"order_date"`

	Season    string `bson:"season"`
	Festival  string `bson:"festival,omitempty"`
	DayOfWeek string `bson:"day_of_week"`
	TimeOfDay string `bson:"time_of_day"`
}

type patternProductDoc struct {
	ProductID string  `bson:"product_id"`
	Quantity  int     `bson:"quantity"`
	Price     float64 `bson:"price"`
	Category  string  `bson:"category"`
	Brand     string  `bson:"brand,omitempty"`
}

// =============================================================================
// Operations
// =============================================================================

// Save writes one pattern. Re-saving an already recorded order is a
// conflict via the unique order_id index.
func (a *PatternAdapter) Save(ctx context.Context, pattern *domain.PurchasePattern) error {
	doc := a.toDocument(pattern)

	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.AlreadyExists("purchase pattern")
		}
		return fmt.Errorf("failed to save purchase pattern: %w", err)
	}
	return nil
}

// RecentByUser returns the user's most recent patterns, newest first.
func (a *PatternAdapter) RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PurchasePattern, error) {
	filter := bson.M{"user_id": userID.String()}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "order_date", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase patterns: %w", err)
	}
	defer cursor.Close(ctx)

	var patterns []*domain.PurchasePattern
	for cursor.Next(ctx) {
		var doc patternDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode purchase pattern: %w", err)
		}

		pattern, err := a.toEntity(&doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert purchase pattern: %w", err)
		}
		patterns = append(patterns, pattern)
	}

	return patterns, cursor.Err()
}

// =============================================================================
// Conversion Helpers
// =============================================================================

func (a *PatternAdapter) toDocument(pattern *domain.PurchasePattern) *patternDocument {
	products := make([]patternProductDoc, len(pattern.Products))
	for i, p := range pattern.Products {
		products[i] = patternProductDoc{
			ProductID: p.ProductID.String(),
			Quantity:  p.Quantity,
			Price:     p.Price,
			Category:  p.Category,
			Brand:     p.Brand,
		}
	}

	return &patternDocument{
		ID:         pattern.ID.String(),
		UserID:     pattern.UserID.String(),
		OrderID:    pattern.OrderID,
		Products:   products,
		OrderValue: pattern.OrderValue,
		OrderDate:  pattern.OrderDate,
		Season:     string(pattern.Season),
		Festival:   pattern.Festival,
		DayOfWeek:  pattern.DayOfWeek,
		TimeOfDay:  pattern.TimeOfDay,
	}
}

func (a *PatternAdapter) toEntity(doc *patternDocument) (*domain.PurchasePattern, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern ID: %w", err)
	}
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	products := make([]domain.PatternProduct, len(doc.Products))
	for i, p := range doc.Products {
		product := domain.PatternProduct{
			Quantity: p.Quantity,
			Price:    p.Price,
			Category: p.Category,
			Brand:    p.Brand,
		}
		if pid, err := uuid.Parse(p.ProductID); err == nil {
			product.ProductID = pid
		}
		products[i] = product
	}

	return &domain.PurchasePattern{
		ID:         id,
		UserID:     userID,
		OrderID:    doc.OrderID,
		Products:   products,
		OrderValue: doc.OrderValue,
		OrderDate:  doc.OrderDate,
		Season:     domain.Season(doc.Season),
		Festival:   doc.Festival,
		DayOfWeek:  doc.DayOfWeek,
		TimeOfDay:  doc.TimeOfDay,
	}, nil
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.PatternRepository = (*PatternAdapter)(nil)
