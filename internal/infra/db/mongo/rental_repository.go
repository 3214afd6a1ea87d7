package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrental "autorent/internal/domain/rental"
	"autorent/internal/domain/shared/dates"
	"autorent/internal/domain/shared/meta"
	"autorent/internal/domain/shared/money"
)

const defaultPageLimit = 100

type RentalRepository struct {
	col *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	col := db.Collection("rentals")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "car_id", Value: 1}, {Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &RentalRepository{col: col}
}

func (r *RentalRepository) ByID(ctx context.Context, id domainrental.ID, ownerID string) (*domainrental.Rental, error) {
	filter := bson.M{"_id": string(id), "deleted": false}
	if ownerID != "" {
		filter["user_id"] = ownerID
	}
	var doc rentalDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrental.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *RentalRepository) Save(ctx context.Context, item *domainrental.Rental) error {
	doc := newRentalDocument(item)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

// OverlappingForCar matches closed intervals: an existing rental overlaps
// the requested period iff its start is not after the period end and its
// end is not before the period start.
func (r *RentalRepository) OverlappingForCar(ctx context.Context, carID string, p dates.Period) ([]*domainrental.Rental, error) {
	filter := bson.M{
		"car_id":     carID,
		"deleted":    false,
		"start_date": bson.M{"$lte": p.End.UnixMilli()},
		"end_date":   bson.M{"$gte": p.Start.UnixMilli()},
	}
	return r.find(ctx, filter, nil)
}

func (r *RentalRepository) List(ctx context.Context, f domainrental.Filter) ([]*domainrental.Rental, error) {
	filter := bson.M{"deleted": false}
	if f.CarID != "" {
		filter["car_id"] = f.CarID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Period != nil {
		filter["start_date"] = bson.M{"$lte": f.Period.End.UnixMilli()}
		filter["end_date"] = bson.M{"$gte": f.Period.Start.UnixMilli()}
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
	return r.find(ctx, filter, opts)
}

func (r *RentalRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainrental.Rental, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.col.Find(ctx, filter, opts)
	} else {
		cursor, err = r.col.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainrental.Rental
	for cursor.Next(ctx) {
		var doc rentalDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

type rentalDocument struct {
	ID        string      `bson:"_id"`
	UserID    string      `bson:"user_id"`
	CarID     string      `bson:"car_id"`
	StartDate int64       `bson:"start_date"`
	EndDate   int64       `bson:"end_date"`
	TotalCost money.Money `bson:"total_cost"`
	Status    string      `bson:"status"`
	Deleted   bool        `bson:"deleted"`
	Meta      meta.Meta   `bson:"meta"`
}

func newRentalDocument(item *domainrental.Rental) rentalDocument {
	return rentalDocument{
		ID:        string(item.ID),
		UserID:    item.UserID,
		CarID:     item.CarID,
		StartDate: item.Period.Start.UnixMilli(),
		EndDate:   item.Period.End.UnixMilli(),
		TotalCost: item.TotalCost,
		Status:    string(item.Status),
		Deleted:   item.Deleted,
		Meta:      item.Meta,
	}
}

func (d rentalDocument) toEntity() *domainrental.Rental {
	return &domainrental.Rental{
		ID:        domainrental.ID(d.ID),
		UserID:    d.UserID,
		CarID:     d.CarID,
		Period:    dates.Period{Start: millisToTime(d.StartDate), End: millisToTime(d.EndDate)},
		TotalCost: d.TotalCost,
		Status:    domainrental.Status(d.Status),
		Deleted:   d.Deleted,
		Meta:      d.Meta,
	}
}

func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
