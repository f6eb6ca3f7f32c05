package product

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ecofinds-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// mongoProduct mirrors listing documents written by the marketplace's
// product service. Price is stored in currency units.
type mongoProduct struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Category    string             `bson:"category,omitempty"`
	Condition   string             `bson:"condition,omitempty"`
	Price       float64            `bson:"price"`
	CO2Saved    float64            `bson:"co2Saved"`
	Images      []string           `bson:"images"`
	Seller      primitive.ObjectID `bson:"seller"`
	IsActive    bool               `bson:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty"`
}

func (d mongoProduct) toDomain() *domain.Product {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Product{
		ID:          d.ID.Hex(),
		SellerID:    d.Seller.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Condition:   d.Condition,
		PriceCents:  int64(math.Round(d.Price * 100)),
		CO2Saved:    d.CO2Saved,
		Images:      images,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
	}
}

type mongoRepo struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewMongo(db *mongo.Database, collection string, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &mongoRepo{collection: db.Collection(collection), logger: logger.Named("product_repo")}
}

func (r *mongoRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var doc mongoProduct
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug("get: not found", zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get failed", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain(), nil
}
