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
// MongoDB Profile Adapter
// =============================================================================

const collectionUserProfiles = "user_profiles"

// ProfileAdapter implements out.ProfileRepository using MongoDB.
type ProfileAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewProfileAdapter creates a new MongoDB profile adapter.
func NewProfileAdapter(db *mongo.Database) *ProfileAdapter {
	collection := db.Collection(collectionUserProfiles)
	return &ProfileAdapter{
		db:         db,
		collection: collection,
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *ProfileAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "similar_users_updated_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: -1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

// profileDocument represents the MongoDB document structure.
type profileDocument struct {
	UserID string `bson:"user_id"`

	Preferences preferencesDoc `bson:"preferences"`
	PriceRange  priceRangeDoc  `bson:"price_range"`

	SearchHistory   []searchEntryDoc   `bson:"search_history,omitempty"`
	PurchaseHistory []purchaseEntryDoc `bson:"purchase_history,omitempty"`

	Recommendations map[string][]domain.Candidate `bson:"recommendations,omitempty"`

	SimilarUsers          []similarUserDoc `bson:"similar_users,omitempty"`
	SimilarUsersUpdatedAt *time.Time       `bson:"similar_users_updated_at,omitempty"`
	RecommendationsAt     *time.Time       `bson:"recommendations_at,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type preferencesDoc struct {
	Categories []preferenceScoreDoc `bson:"categories,omitempty"`
	Brands     []preferenceScoreDoc `bson:"brands,omitempty"`
}

type preferenceScoreDoc struct {
	Name        string    `bson:"name"`
	Score       float64   `bson:"score"`
	LastUpdated time.Time `bson:"last_updated"`
}

type priceRangeDoc struct {
	Min       float64 `bson:"min"`
	Max       float64 `bson:"max"`
	Preferred float64 `bson:"preferred"`
}

type searchEntryDoc struct {
	Query     string            `bson:"query"`
	Filters   map[string]string `bson:"filters,omitempty"`
	Timestamp time.Time         `bson:"timestamp"`
}

type purchaseEntryDoc struct {
	ProductID string    `bson:"product_id"`
	Category  string    `bson:"category,omitempty"`
	Brand     string    `bson:"brand,omitempty"`
	Price     float64   `bson:"price"`
	Timestamp time.Time `bson:"timestamp"`
}

type similarUserDoc struct {
	UserID string  `bson:"user_id"`
	Score  float64 `bson:"score"`
}

// =============================================================================
// Single Operations
// =============================================================================

// GetByUserID retrieves a profile, or nil when none exists yet.
func (a *ProfileAdapter) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	var doc profileDocument
	filter := bson.M{"user_id": userID.String()}

	err := a.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return a.toEntity(&doc)
}

// Upsert creates or replaces a profile. Last writer wins.
func (a *ProfileAdapter) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	doc := a.toDocument(profile)

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"user_id": profile.UserID.String()}

	if _, err := a.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// =============================================================================
// Partial Updates
// =============================================================================

// SetSimilarUsers replaces the cached similar-user list.
func (a *ProfileAdapter) SetSimilarUsers(ctx context.Context, userID uuid.UUID, similar []domain.SimilarUser) error {
	docs := make([]similarUserDoc, len(similar))
	for i, s := range similar {
		docs[i] = similarUserDoc{UserID: s.UserID.String(), Score: s.Score}
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"similar_users":            docs,
			"similar_users_updated_at": now,
			"updated_at":               now,
		},
	}

	_, err := a.collection.UpdateOne(ctx, bson.M{"user_id": userID.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to set similar users: %w", err)
	}
	return nil
}

// CacheRecommendations stores a candidate list under the given kind.
func (a *ProfileAdapter) CacheRecommendations(ctx context.Context, userID uuid.UUID, kind domain.CandidateSource, candidates []domain.Candidate) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"recommendations." + string(kind): candidates,
			"recommendations_at":              now,
			"updated_at":                      now,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := a.collection.UpdateOne(ctx, bson.M{"user_id": userID.String()}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to cache recommendations: %w", err)
	}
	return nil
}

// =============================================================================
// Query Operations
// =============================================================================

// ListOthers returns up to limit profiles excluding the given user.
func (a *ProfileAdapter) ListOthers(ctx context.Context, excludeUserID uuid.UUID, limit int) ([]*domain.UserProfile, error) {
	filter := bson.M{"user_id": bson.M{"$ne": excludeUserID.String()}}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*domain.UserProfile
	for cursor.Next(ctx) {
		var doc profileDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}

		profile, err := a.toEntity(&doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	return profiles, cursor.Err()
}

// StaleSimilarUserIDs returns user IDs whose similar-user cache is older than
// the cutoff or missing entirely.
func (a *ProfileAdapter) StaleSimilarUserIDs(ctx context.Context, olderThanSec int64, limit int) ([]uuid.UUID, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(olderThanSec) * time.Second)
	filter := bson.M{
		"$or": []bson.M{
			{"similar_users_updated_at": bson.M{"$lt": cutoff}},
			{"similar_users_updated_at": bson.M{"$exists": false}},
		},
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "similar_users_updated_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"user_id": 1})

	cursor, err := a.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []uuid.UUID
	for cursor.Next(ctx) {
		var row struct {
			UserID string `bson:"user_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode stale profile row: %w", err)
		}
		id, err := uuid.Parse(row.UserID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, cursor.Err()
}

// =============================================================================
// Conversion Helpers
// =============================================================================

func (a *ProfileAdapter) toDocument(profile *domain.UserProfile) *profileDocument {
	doc := &profileDocument{
		UserID: profile.UserID.String(),
		Preferences: preferencesDoc{
			Categories: toScoreDocs(profile.Preferences.Categories),
			Brands:     toScoreDocs(profile.Preferences.Brands),
		},
		PriceRange: priceRangeDoc{
			Min:       profile.PriceRange.Min,
			Max:       profile.PriceRange.Max,
			Preferred: profile.PriceRange.Preferred,
		},
		SimilarUsersUpdatedAt: profile.SimilarUsersUpdatedAt,
		RecommendationsAt:     profile.Recommendations.UpdatedAt,
		CreatedAt:             profile.CreatedAt,
		UpdatedAt:             profile.UpdatedAt,
	}

	for _, e := range profile.SearchHistory {
		doc.SearchHistory = append(doc.SearchHistory, searchEntryDoc{
			Query:     e.Query,
			Filters:   e.Filters,
			Timestamp: e.Timestamp,
		})
	}
	for _, e := range profile.PurchaseHistory {
		doc.PurchaseHistory = append(doc.PurchaseHistory, purchaseEntryDoc{
			ProductID: e.ProductID.String(),
			Category:  e.Category,
			Brand:     e.Brand,
			Price:     e.Price,
			Timestamp: e.Timestamp,
		})
	}
	for _, s := range profile.SimilarUsers {
		doc.SimilarUsers = append(doc.SimilarUsers, similarUserDoc{
			UserID: s.UserID.String(),
			Score:  s.Score,
		})
	}

	doc.Recommendations = map[string][]domain.Candidate{}
	for kind, list := range map[domain.CandidateSource][]domain.Candidate{
		domain.SourceCollaborative: profile.Recommendations.Collaborative,
		domain.SourceContentBased:  profile.Recommendations.ContentBased,
		domain.SourceSeasonal:      profile.Recommendations.Seasonal,
		domain.SourceBundle:        profile.Recommendations.Bundles,
		domain.KindHybrid:          profile.Recommendations.Hybrid,
	} {
		if len(list) > 0 {
			doc.Recommendations[string(kind)] = list
		}
	}

	return doc
}

func (a *ProfileAdapter) toEntity(doc *profileDocument) (*domain.UserProfile, error) {
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	profile := &domain.UserProfile{
		UserID: userID,
		Preferences: domain.Preferences{
			Categories: toScores(doc.Preferences.Categories),
			Brands:     toScores(doc.Preferences.Brands),
		},
		PriceRange: domain.PriceRange{
			Min:       doc.PriceRange.Min,
			Max:       doc.PriceRange.Max,
			Preferred: doc.PriceRange.Preferred,
		},
		Recommendations: domain.CachedRecommendations{
			Collaborative: doc.Recommendations[string(domain.SourceCollaborative)],
			ContentBased:  doc.Recommendations[string(domain.SourceContentBased)],
			Seasonal:      doc.Recommendations[string(domain.SourceSeasonal)],
			Bundles:       doc.Recommendations[string(domain.SourceBundle)],
			Hybrid:        doc.Recommendations[string(domain.KindHybrid)],
			UpdatedAt:     doc.RecommendationsAt,
		},
		SimilarUsersUpdatedAt: doc.SimilarUsersUpdatedAt,
		CreatedAt:             doc.CreatedAt,
		UpdatedAt:             doc.UpdatedAt,
	}

	for _, e := range doc.SearchHistory {
		profile.SearchHistory = append(profile.SearchHistory, domain.SearchEntry{
			Query:     e.Query,
			Filters:   e.Filters,
			Timestamp: e.Timestamp,
		})
	}
	for _, e := range doc.PurchaseHistory {
		entry := domain.PurchaseEntry{
			Category:  e.Category,
			Brand:     e.Brand,
			Price:     e.Price,
			Timestamp: e.Timestamp,
		}
		if id, err := uuid.Parse(e.ProductID); err == nil {
			entry.ProductID = id
		}
		profile.PurchaseHistory = append(profile.PurchaseHistory, entry)
	}
	for _, s := range doc.SimilarUsers {
		id, err := uuid.Parse(s.UserID)
		if err != nil {
			continue
		}
		profile.SimilarUsers = append(profile.SimilarUsers, domain.SimilarUser{
			UserID: id,
			Score:  s.Score,
		})
	}

	return profile, nil
}

func toScoreDocs(scores []domain.PreferenceScore) []preferenceScoreDoc {
	docs := make([]preferenceScoreDoc, len(scores))
	for i, s := range scores {
		docs[i] = preferenceScoreDoc{Name: s.Name, Score: s.Score, LastUpdated: s.LastUpdated}
	}
	return docs
}

func toScores(docs []preferenceScoreDoc) []domain.PreferenceScore {
	scores := make([]domain.PreferenceScore, len(docs))
	for i, d := range docs {
		scores[i] = domain.PreferenceScore{Name: d.Name, Score: d.Score, LastUpdated: d.LastUpdated}
	}
	return scores
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.ProfileRepository = (*ProfileAdapter)(nil)
