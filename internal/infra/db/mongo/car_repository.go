package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincar "autorent/internal/domain/car"
	"autorent/internal/domain/shared/meta"
	"autorent/internal/domain/shared/money"
)

type CarRepository struct {
	col *mongo.Collection
}

func NewCarRepository(db *mongo.Database) *CarRepository {
	return &CarRepository{col: db.Collection("cars")}
}

func (r *CarRepository) ByID(ctx context.Context, id domaincar.ID) (*domaincar.Car, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *CarRepository) ActiveByID(ctx context.Context, id domaincar.ID) (*domaincar.Car, error) {
	return r.findOne(ctx, bson.M{"_id": string(id), "deleted": false})
}

func (r *CarRepository) findOne(ctx context.Context, filter bson.M) (*domaincar.Car, error) {
	var doc carDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincar.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *CarRepository) Save(ctx context.Context, item *domaincar.Car) error {
	doc := newCarDocument(item)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *CarRepository) List(ctx context.Context, f domaincar.Filter) ([]*domaincar.Car, error) {
	filter := bson.M{"deleted": false}
	if f.Type != "" {
		filter["type"] = string(f.Type)
	}
	if f.State != "" {
		filter["state"] = string(f.State)
	}
	if f.MinYear > 0 {
		filter["year"] = bson.M{"$gte": f.MinYear}
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
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(page * limit).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domaincar.Car
	for cursor.Next(ctx) {
		var doc carDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

type carDocument struct {
	ID          string      `bson:"_id"`
	Brand       string      `bson:"brand"`
	Model       string      `bson:"model"`
	Year        int         `bson:"year"`
	Type        string      `bson:"type"`
	PricePerDay money.Money `bson:"price_per_day"`
	State       string      `bson:"state"`
	PhotoURL    string      `bson:"photo_url,omitempty"`
	Deleted     bool        `bson:"deleted"`
	Meta        meta.Meta   `bson:"meta"`
}

func newCarDocument(item *domaincar.Car) carDocument {
	return carDocument{
		ID:          string(item.ID),
		Brand:       item.Brand,
		Model:       item.Model,
		Year:        item.Year,
		Type:        string(item.Type),
		PricePerDay: item.PricePerDay,
		State:       string(item.State),
		PhotoURL:    item.PhotoURL,
		Deleted:     item.Deleted,
		Meta:        item.Meta,
	}
}

func (d carDocument) toEntity() *domaincar.Car {
	return &domaincar.Car{
		ID:          domaincar.ID(d.ID),
		Brand:       d.Brand,
		Model:       d.Model,
		Year:        d.Year,
		Type:        domaincar.Type(d.Type),
		PricePerDay: d.PricePerDay,
		State:       domaincar.State(d.State),
		PhotoURL:    d.PhotoURL,
		Deleted:     d.Deleted,
		Meta:        d.Meta,
	}
}
