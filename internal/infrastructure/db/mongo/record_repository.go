package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mindtrack/cbt-api/internal/core/domain"
	"github.com/mindtrack/cbt-api/internal/core/ports"
)

// RecordRepository stores one record kind in its own collection. Documents
// are the domain structs themselves, keyed by a hex ObjectID string.
type RecordRepository[T any, PT domain.RecordPtr[T]] struct {
	coll *mongo.Collection
	kind domain.Kind
}

func NewRecordRepository[T any, PT domain.RecordPtr[T]](db *mongo.Database) *RecordRepository[T, PT] {
	var zero T
	kind := PT(&zero).Kind()
	return &RecordRepository[T, PT]{coll: db.Collection(kind.Collection()), kind: kind}
}

func (r *RecordRepository[T, PT]) Insert(ctx context.Context, rec *T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	meta := PT(rec).Meta()
	if meta.ID == "" {
		meta.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert %s: %w", r.kind, err)
	}
	return nil
}

func (r *RecordRepository[T, PT]) FindByID(ctx context.Context, id string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rec := new(T)
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find %s: %w", r.kind, err)
	}
	return rec, nil
}

// List returns matching records, newest first.
func (r *RecordRepository[T, PT]) List(ctx context.Context, f ports.RecordFilter) ([]*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, recordFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind, err)
	}
	defer cur.Close(ctx)

	out := make([]*T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.kind, err)
	}
	return out, nil
}

func (r *RecordRepository[T, PT]) Replace(ctx context.Context, rec *T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": PT(rec).Meta().ID}, rec)
	if err != nil {
		return fmt.Errorf("replace %s: %w", r.kind, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *RecordRepository[T, PT]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}
	return nil
}

func (r *RecordRepository[T, PT]) DeleteMany(ctx context.Context, f ports.RecordFilter) (int64, error) {
	if f.UserID == "" && f.RefField == "" {
		return 0, fmt.Errorf("delete %s: refusing unscoped delete", r.kind)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, recordFilter(f))
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", r.kind, err)
	}
	return res.DeletedCount, nil
}

// PurgeOwner deletes every record owned by userID.
func (r *RecordRepository[T, PT]) PurgeOwner(ctx context.Context, userID string) (int64, error) {
	return r.DeleteMany(ctx, ports.RecordFilter{UserID: userID})
}

// EnsureIndexes indexes the owner listing and any reference fields used by
// cascades.
func (r *RecordRepository[T, PT]) EnsureIndexes(ctx context.Context, refFields ...string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	for _, field := range refFields {
		indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}})
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func recordFilter(f ports.RecordFilter) bson.M {
	filter := bson.M{}
	if f.UserID != "" {
		if f.IncludeGlobal {
			// $in with null also matches documents without the field.
			filter["user_id"] = bson.M{"$in": bson.A{f.UserID, nil}}
		} else {
			filter["user_id"] = f.UserID
		}
	}
	if f.RefField != "" {
		filter[f.RefField] = f.RefID
	}
	return filter
}
