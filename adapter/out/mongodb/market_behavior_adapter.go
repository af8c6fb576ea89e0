// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"market_server/core/domain"
	"market_server/core/port/out"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Behavior Adapter
// =============================================================================

const collectionBehaviorEvents = "behavior_events"

// BehaviorAdapter implements out.BehaviorRepository using MongoDB. The
// collection is append-only; aggregations run over it for co-purchase and
// trending stats.
type BehaviorAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewBehaviorAdapter creates a new MongoDB behavior adapter.
func NewBehaviorAdapter(db *mongo.Database) *BehaviorAdapter {
	collection := db.Collection(collectionBehaviorEvents)
	return &BehaviorAdapter{
		db:         db,
		collection: collection,
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *BehaviorAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "product_id", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

// behaviorDocument represents the MongoDB document structure.
type behaviorDocument struct {
	ID        string `bson:"id"`
	UserID    string `bson:"user_id"`
	SessionID string `bson:"session_id,omitempty"`
	Type      string `bson:"type"`

	ProductID     string            `bson:"product_id,omitempty"`
	Category      string            `bson:"category,omitempty"`
	Brand         string            `bson:"brand,omitempty"`
	Price         float64           `bson:"price,omitempty"`
	Rating        float64           `bson:"rating,omitempty"`
	SearchQuery   string            `bson:"search_query,omitempty"`
	SearchFilters map[string]string `bson:"search_filters,omitempty"`

	Timestamp time.Time `bson:"timestamp"`
}

// =============================================================================
// Write Operations
// =============================================================================

// Append writes one behavior event.
func (a *BehaviorAdapter) Append(ctx context.Context, event *domain.BehaviorEvent) error {
	doc := a.toDocument(event)

	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to append behavior event: %w", err)
	}
	return nil
}

// =============================================================================
// Aggregations
// =============================================================================

// CoPurchaseStats aggregates purchase events of the given users grouped by
// product, ordered by purchase count descending.
func (a *BehaviorAdapter) CoPurchaseStats(ctx context.Context, userIDs []uuid.UUID, limit int) ([]out.CoPurchaseStat, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	pipeline := []bson.M{
		{
			"$match": bson.M{
				"user_id":    bson.M{"$in": ids},
				"type":       string(domain.BehaviorPurchase),
				"product_id": bson.M{"$ne": ""},
			},
		},
		{
			"$group": bson.M{
				"_id":            "$product_id",
				"purchase_count": bson.M{"$sum": 1},
				"avg_rating":     bson.M{"$avg": "$rating"},
			},
		},
		{
			"$sort": bson.D{
				{Key: "purchase_count", Value: -1},
				{Key: "_id", Value: 1},
			},
		},
		{"$limit": limit},
	}

	cursor, err := a.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate co-purchases: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []out.CoPurchaseStat
	for cursor.Next(ctx) {
		var row struct {
			ProductID     string  `bson:"_id"`
			PurchaseCount int     `bson:"purchase_count"`
			AvgRating     float64 `bson:"avg_rating"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode co-purchase row: %w", err)
		}

		productID, err := uuid.Parse(row.ProductID)
		if err != nil {
			// Skip rows with malformed product IDs rather than fail the
			// whole aggregation.
			continue
		}
		stats = append(stats, out.CoPurchaseStat{
			ProductID:     productID,
			PurchaseCount: row.PurchaseCount,
			AvgRating:     row.AvgRating,
		})
	}

	return stats, cursor.Err()
}

// TrendingStats aggregates view_product events since the given time, grouped
// by product with total views and unique viewer counts.
func (a *BehaviorAdapter) TrendingStats(ctx context.Context, since time.Time, limit int) ([]out.ProductViewStat, error) {
	pipeline := []bson.M{
		{
			"$match": bson.M{
				"type":       string(domain.BehaviorViewProduct),
				"timestamp":  bson.M{"$gte": since},
				"product_id": bson.M{"$ne": ""},
			},
		},
		{
			"$group": bson.M{
				"_id":        "$product_id",
				"view_count": bson.M{"$sum": 1},
				"viewers":    bson.M{"$addToSet": "$user_id"},
			},
		},
		{
			"$project": bson.M{
				"view_count":     1,
				"unique_viewers": bson.M{"$size": "$viewers"},
			},
		},
		{
			"$sort": bson.D{
				{Key: "view_count", Value: -1},
				{Key: "_id", Value: 1},
			},
		},
		{"$limit": limit},
	}

	cursor, err := a.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trending views: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []out.ProductViewStat
	for cursor.Next(ctx) {
		var row struct {
			ProductID     string `bson:"_id"`
			ViewCount     int    `bson:"view_count"`
			UniqueViewers int    `bson:"unique_viewers"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode trending row: %w", err)
		}

		productID, err := uuid.Parse(row.ProductID)
		if err != nil {
			continue
		}
		stats = append(stats, out.ProductViewStat{
			ProductID:     productID,
			ViewCount:     row.ViewCount,
			UniqueViewers: row.UniqueViewers,
		})
	}

	return stats, cursor.Err()
}

// CountByUser returns the number of events logged for a user.
func (a *BehaviorAdapter) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := a.collection.CountDocuments(ctx, bson.M{"user_id": userID.String()})
	if err != nil {
		return 0, fmt.Errorf("failed to count behavior events: %w", err)
	}
	return count, nil
}

// =============================================================================
// Conversion Helpers
// =============================================================================

func (a *BehaviorAdapter) toDocument(event *domain.BehaviorEvent) *behaviorDocument {
	doc := &behaviorDocument{
		ID:            event.ID.String(),
		UserID:        event.UserID.String(),
		SessionID:     event.SessionID,
		Type:          string(event.Type),
		Category:      event.Category,
		Brand:         event.Brand,
		Price:         event.Price,
		Rating:        event.Rating,
		SearchQuery:   event.SearchQuery,
		SearchFilters: event.SearchFilters,
		Timestamp:     event.Timestamp,
	}
	if event.ProductID != nil {
		doc.ProductID = event.ProductID.String()
	}
	return doc
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.BehaviorRepository = (*BehaviorAdapter)(nil)
