package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainreview "autorent/internal/domain/review"
	"autorent/internal/domain/shared/meta"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	col := db.Collection("reviews")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "car_id", Value: 1}, {Key: "user_id", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ReviewRepository{col: col}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreview.ID, authorID string) (*domainreview.Review, error) {
	filter := bson.M{"_id": string(id), "deleted": false}
	if authorID != "" {
		filter["user_id"] = authorID
	}
	var doc reviewDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreview.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ReviewRepository) Save(ctx context.Context, item *domainreview.Review) error {
	doc := newReviewDocument(item)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ReviewRepository) List(ctx context.Context, f domainreview.Filter) ([]*domainreview.Review, error) {
	filter := bson.M{"deleted": false}
	if f.CarID != "" {
		filter["car_id"] = f.CarID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Rating > 0 {
		filter["rating"] = f.Rating
	}

	limit := int64(f.Limit)
	if limit <= 0 || limit > defaultPageLimit {
		limit = defaultPageLimit
	}
	page := int64(f.Page)
	if page < 0 {
		page = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "meta.created_at", Value: -1}}).
		SetSkip(page * limit).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainreview.Review
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

type reviewDocument struct {
	ID      string    `bson:"_id"`
	CarID   string    `bson:"car_id"`
	UserID  string    `bson:"user_id"`
	Rating  int       `bson:"rating"`
	Comment string    `bson:"comment"`
	Deleted bool      `bson:"deleted"`
	Meta    meta.Meta `bson:"meta"`
}

func newReviewDocument(item *domainreview.Review) reviewDocument {
	return reviewDocument{
		ID:      string(item.ID),
		CarID:   item.CarID,
		UserID:  item.UserID,
		Rating:  item.Rating,
		Comment: item.Comment,
		Deleted: item.Deleted,
		Meta:    item.Meta,
	}
}

func (d reviewDocument) toEntity() *domainreview.Review {
	return &domainreview.Review{
		ID:      domainreview.ID(d.ID),
		CarID:   d.CarID,
		UserID:  d.UserID,
		Rating:  d.Rating,
		Comment: d.Comment,
		Deleted: d.Deleted,
		Meta:    d.Meta,
	}
}
