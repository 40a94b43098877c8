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

const scoreCollectionName = "weekly_scores"

// mongoScoreRepository implements repository.ScoreRepository
type mongoScoreRepository struct {
	collection *mongo.Collection
}

// NewMongoScoreRepository creates a new WeeklyScore repository backed by MongoDB.
func NewMongoScoreRepository(db *mongo.Database) repository.ScoreRepository {
	return &mongoScoreRepository{
		collection: db.Collection(scoreCollectionName),
	}
}

// Create inserts a finalized score record. Records are insert-only; the
// unique (innermostId, weekNumber) index turns a concurrent double-score
// into ErrDuplicate, which callers resolve by reading the existing record.
func (r *mongoScoreRepository) Create(ctx context.Context, score *domain.WeeklyScore) (primitive.ObjectID, error) {
	if score.InnermostID == primitive.NilObjectID || score.WeekNumber < 1 {
		return primitive.NilObjectID, errors.New("score requires innermostId and a positive weekNumber")
	}
	if score.PartnerAScore < 0 || score.PartnerBScore < 0 {
		return primitive.NilObjectID, errors.New("scores must be non-negative")
	}

	score.ID = primitive.NewObjectID()
	score.ScoredAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, score)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, storageErr(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted score ID")
	}

	return insertedID, nil
}

// GetByInnermostAndWeek retrieves the score record for a specific week.
func (r *mongoScoreRepository) GetByInnermostAndWeek(ctx context.Context, innermostID primitive.ObjectID, weekNumber int) (*domain.WeeklyScore, error) {
	var score domain.WeeklyScore
	filter := bson.M{"innermostId": innermostID, "weekNumber": weekNumber}

	err := r.collection.FindOne(ctx, filter).Decode(&score)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, storageErr(err)
	}
	return &score, nil
}

// GetAllByInnermost retrieves all score records for an innermost, oldest first.
func (r *mongoScoreRepository) GetAllByInnermost(ctx context.Context, innermostID primitive.ObjectID) ([]domain.WeeklyScore, error) {
	var scores []domain.WeeklyScore
	filter := bson.M{"innermostId": innermostID}
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, storageErr(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &scores); err != nil {
		return nil, storageErr(err)
	}
	if err = cursor.Err(); err != nil {
		return nil, storageErr(err)
	}

	return scores, nil
}

// EnsureScoreIndexes creates necessary indexes for the weekly_scores collection.
func EnsureScoreIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One score record per (innermost, week); also the double-score guard
			Keys:    bson.D{{Key: "innermostId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
