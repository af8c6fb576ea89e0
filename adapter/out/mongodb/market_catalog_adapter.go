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
// MongoDB Catalog Adapter
// =============================================================================

const collectionProducts = "products"

// CatalogAdapter implements out.CatalogRepository using MongoDB.
type CatalogAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewCatalogAdapter creates a new MongoDB catalog adapter.
func NewCatalogAdapter(db *mongo.Database) *CatalogAdapter {
	collection := db.Collection(collectionProducts)
	return &CatalogAdapter{
		db:         db,
		collection: collection,
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *CatalogAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "is_active", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "rating.average", Value: -1},
				{Key: "rating.count", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "seasonal_months", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

// productDocument represents the MongoDB document structure.
type productDocument struct {
	ID          string `bson:"id"`
	SKU         string `bson:"sku"`
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`

	Category    string `bson:"category"`
	Subcategory string `bson:"subcategory,omitempty"`
	Brand       string `bson:"brand,omitempty"`

	Price              float64 `bson:"price"`
	DiscountPercentage float64 `bson:"discount_percentage"`

	Stock    int  `bson:"stock"`
	IsActive bool `bson:"is_active"`

	IsFeatured     bool      `bson:"is_featured"`
	Rating         ratingDoc `bson:"rating"`
	SeasonalMonths []int     `bson:"seasonal_months,omitempty"`

	Embedding []float32 `bson:"embedding,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type ratingDoc struct {
	Average float64 `bson:"average"`
	Count   int     `bson:"count"`
}

// =============================================================================
// Write Operations
// =============================================================================

// Create inserts a new product. A duplicate SKU is a conflict.
func (a *CatalogAdapter) Create(ctx context.Context, product *domain.Product) error {
	doc := a.toDocument(product)

	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.AlreadyExists("product")
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update replaces an existing product document.
func (a *CatalogAdapter) Update(ctx context.Context, product *domain.Product) error {
	doc := a.toDocument(product)
	filter := bson.M{"id": product.ID.String()}

	result, err := a.collection.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

// Delete removes a product.
func (a *CatalogAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := a.collection.DeleteOne(ctx, bson.M{"id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

// =============================================================================
// Read Operations
// =============================================================================

// GetByID retrieves a product, or nil when absent.
func (a *CatalogAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var doc productDocument
	err := a.collection.FindOne(ctx, bson.M{"id": id.String()}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return a.toEntity(&doc)
}

// GetByIDs retrieves products by ID. Missing IDs are silently skipped.
func (a *CatalogAdapter) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	cursor, err := a.collection.Find(ctx, bson.M{"id": bson.M{"$in": strIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to get products by ids: %w", err)
	}
	defer cursor.Close(ctx)

	return a.drain(ctx, cursor)
}

// Find returns products matching the filter.
func (a *CatalogAdapter) Find(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error) {
	query := a.buildFilter(filter, false)
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	applyPaging(findOpts, filter)

	cursor, err := a.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	return a.drain(ctx, cursor)
}

// FindActiveInStock returns active products with stock, sorted by rating
// average, rating count, then recency, all descending.
func (a *CatalogAdapter) FindActiveInStock(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error) {
	query := a.buildFilter(filter, true)
	findOpts := options.Find().SetSort(bson.D{
		{Key: "rating.average", Value: -1},
		{Key: "rating.count", Value: -1},
		{Key: "created_at", Value: -1},
	})
	applyPaging(findOpts, filter)

	cursor, err := a.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active products: %w", err)
	}
	defer cursor.Close(ctx)

	return a.drain(ctx, cursor)
}

// FindSeasonal returns active in-stock products flagged seasonal for the
// month, optionally restricted to categories.
func (a *CatalogAdapter) FindSeasonal(ctx context.Context, month time.Month, categories []string, limit int) ([]*domain.Product, error) {
	query := bson.M{
		"is_active":       true,
		"stock":           bson.M{"$gt": 0},
		"seasonal_months": int(month),
	}
	if len(categories) > 0 {
		query["category"] = bson.M{"$in": categories}
	}

	findOpts := options.Find().
		SetSort(bson.D{
			{Key: "rating.average", Value: -1},
			{Key: "rating.count", Value: -1},
		}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find seasonal products: %w", err)
	}
	defer cursor.Close(ctx)

	return a.drain(ctx, cursor)
}

// FindWithEmbeddings returns filtered products carrying an embedding vector.
func (a *CatalogAdapter) FindWithEmbeddings(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error) {
	query := a.buildFilter(filter, true)
	query["embedding.0"] = bson.M{"$exists": true}

	findOpts := options.Find()
	applyPaging(findOpts, filter)

	cursor, err := a.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find indexed products: %w", err)
	}
	defer cursor.Close(ctx)

	return a.drain(ctx, cursor)
}

// =============================================================================
// Query Building
// =============================================================================

func (a *CatalogAdapter) buildFilter(filter *domain.ProductFilter, activeOnly bool) bson.M {
	query := bson.M{}
	if activeOnly {
		query["is_active"] = true
		query["stock"] = bson.M{"$gt": 0}
	}
	if filter == nil {
		return query
	}

	if filter.Category != "" {
		query["category"] = filter.Category
	} else if len(filter.Categories) > 0 {
		query["category"] = bson.M{"$in": filter.Categories}
	}
	if filter.Subcategory != "" {
		query["subcategory"] = filter.Subcategory
	}
	if len(filter.Brands) > 0 {
		query["brand"] = bson.M{"$in": filter.Brands}
	}

	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query["price"] = price
	}
	if filter.MinRating != nil {
		query["rating.average"] = bson.M{"$gte": *filter.MinRating}
	}
	if filter.Month != nil {
		query["seasonal_months"] = int(*filter.Month)
	}

	return query
}

func applyPaging(opts *options.FindOptions, filter *domain.ProductFilter) {
	if filter == nil {
		return
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
}

// =============================================================================
// Conversion Helpers
// =============================================================================

func (a *CatalogAdapter) drain(ctx context.Context, cursor *mongo.Cursor) ([]*domain.Product, error) {
	var products []*domain.Product
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		product, err := a.toEntity(&doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert product: %w", err)
		}
		products = append(products, product)
	}
	return products, cursor.Err()
}

func (a *CatalogAdapter) toDocument(product *domain.Product) *productDocument {
	months := make([]int, len(product.SeasonalMonths))
	for i, m := range product.SeasonalMonths {
		months[i] = int(m)
	}

	return &productDocument{
		ID:                 product.ID.String(),
		SKU:                product.SKU,
		Name:               product.Name,
		Description:        product.Description,
		Category:           product.Category,
		Subcategory:        product.Subcategory,
		Brand:              product.Brand,
		Price:              product.Price,
		DiscountPercentage: product.DiscountPercentage,
		Stock:              product.Stock,
		IsActive:           product.IsActive,
		IsFeatured:         product.IsFeatured,
		Rating: ratingDoc{
			Average: product.Rating.Average,
			Count:   product.Rating.Count,
		},
		SeasonalMonths: months,
		Embedding:      product.Embedding,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

func (a *CatalogAdapter) toEntity(doc *productDocument) (*domain.Product, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product ID: %w", err)
	}

	months := make([]time.Month, len(doc.SeasonalMonths))
	for i, m := range doc.SeasonalMonths {
		months[i] = time.Month(m)
	}

	return &domain.Product{
		ID:                 id,
		SKU:                doc.SKU,
		Name:               doc.Name,
		Description:        doc.Description,
		Category:           doc.Category,
		Subcategory:        doc.Subcategory,
		Brand:              doc.Brand,
		Price:              doc.Price,
		DiscountPercentage: doc.DiscountPercentage,
		Stock:              doc.Stock,
		IsActive:           doc.IsActive,
		IsFeatured:         doc.IsFeatured,
		Rating: domain.Rating{
			Average: doc.Rating.Average,
			Count:   doc.Rating.Count,
		},
		SeasonalMonths: months,
		Embedding:      doc.Embedding,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.CatalogRepository = (*CatalogAdapter)(nil)
