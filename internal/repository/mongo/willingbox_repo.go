package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const willingBoxCollectionName = "willing_boxes"

// mongoWillingBoxRepository implements repository.WillingBoxRepository
type mongoWillingBoxRepository struct {
	collection *mongo.Collection
}

// NewMongoWillingBoxRepository creates a new WillingBox repository backed by MongoDB.
func NewMongoWillingBoxRepository(db *mongo.Database) repository.WillingBoxRepository {
	return &mongoWillingBoxRepository{
		collection: db.Collection(willingBoxCollectionName),
	}
}

// Create inserts a new weekly document.
func (r *mongoWillingBoxRepository) Create(ctx context.Context, box *domain.WillingBox) (primitive.ObjectID, error) {
	if box.InnermostID == primitive.NilObjectID || box.WeekNumber < 1 {
		return primitive.NilObjectID, errors.New("willing box requires innermostId and a positive weekNumber")
	}

	box.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	box.CreatedAt = now
	box.UpdatedAt = now
	if box.Phase == "" {
		box.Phase = domain.PhasePlantingTrees
	}

	result, err := r.collection.InsertOne(ctx, box)
	if err != nil {
		// Unique (innermostId, weekNumber) index: concurrent week creation
		// collapses to a single document.
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, storageErr(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted willing box ID")
	}

	return insertedID, nil
}

// GetByInnermostAndWeek retrieves the document for a specific week.
func (r *mongoWillingBoxRepository) GetByInnermostAndWeek(ctx context.Context, innermostID primitive.ObjectID, weekNumber int) (*domain.WillingBox, error) {
	var box domain.WillingBox
	filter := bson.M{"innermostId": innermostID, "weekNumber": weekNumber}

	err := r.collection.FindOne(ctx, filter).Decode(&box)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, storageErr(err)
	}
	return &box, nil
}

// GetLatestByInnermost retrieves the highest-numbered week's document.
func (r *mongoWillingBoxRepository) GetLatestByInnermost(ctx context.Context, innermostID primitive.ObjectID) (*domain.WillingBox, error) {
	var box domain.WillingBox
	filter := bson.M{"innermostId": innermostID}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "weekNumber", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&box)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, storageErr(err)
	}
	return &box, nil
}

// GetAllByInnermost retrieves all weekly documents for an innermost, oldest first.
func (r *mongoWillingBoxRepository) GetAllByInnermost(ctx context.Context, innermostID primitive.ObjectID) ([]domain.WillingBox, error) {
	var boxes []domain.WillingBox
	filter := bson.M{"innermostId": innermostID}
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, storageErr(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &boxes); err != nil {
		return nil, storageErr(err)
	}
	if err = cursor.Err(); err != nil {
		return nil, storageErr(err)
	}

	return boxes, nil
}

// SaveWishes persists one partner's wish list. Each partner's slot is a
// disjoint document key, so concurrent partner writes never conflict.
func (r *mongoWillingBoxRepository) SaveWishes(ctx context.Context, id primitive.ObjectID, role domain.PartnerRole, wishes []domain.Wish) error {
	return r.setSlot(ctx, id, slotField("wishes", role), wishes)
}

// SaveWilling persists one partner's willingness selection.
func (r *mongoWillingBoxRepository) SaveWilling(ctx context.Context, id primitive.ObjectID, role domain.PartnerRole, wishIDs []string) error {
	return r.setSlot(ctx, id, slotField("willing", role), wishIDs)
}

// SaveGuess persists one partner's guess.
func (r *mongoWillingBoxRepository) SaveGuess(ctx context.Context, id primitive.ObjectID, role domain.PartnerRole, wishIDs []string) error {
	return r.setSlot(ctx, id, slotField("guess", role), wishIDs)
}

// UpdatePhase writes the cached phase. Last-write-wins is safe here: the
// phase is always re-derivable from the sub-records, and redundant
// concurrent evaluations produce the same value.
func (r *mongoWillingBoxRepository) UpdatePhase(ctx context.Context, id primitive.ObjectID, phase domain.Phase) error {
	return r.setSlot(ctx, id, "phase", phase)
}

func slotField(prefix string, role domain.PartnerRole) string {
	return prefix + string(role) // e.g. "wishesA", "guessB"
}

func (r *mongoWillingBoxRepository) setSlot(ctx context.Context, id primitive.ObjectID, field string, value interface{}) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			field:       value,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return storageErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWillingBoxIndexes creates necessary indexes for the willing_boxes collection.
func EnsureWillingBoxIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One document per (innermost, week)
			Keys:    bson.D{{Key: "innermostId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Dashboard queries filter on phase
			Keys:    bson.D{{Key: "phase", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
