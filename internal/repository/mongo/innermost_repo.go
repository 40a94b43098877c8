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

const innermostCollectionName = "innermosts"

// mongoInnermostRepository implements repository.InnermostRepository
type mongoInnermostRepository struct {
	collection *mongo.Collection
}

// NewMongoInnermostRepository creates a new Innermost repository backed by MongoDB.
func NewMongoInnermostRepository(db *mongo.Database) repository.InnermostRepository {
	return &mongoInnermostRepository{
		collection: db.Collection(innermostCollectionName),
	}
}

// Create inserts a new innermost into the database.
func (r *mongoInnermostRepository) Create(ctx context.Context, innermost *domain.Innermost) (primitive.ObjectID, error) {
	if innermost.InviterID == primitive.NilObjectID || innermost.PartnerEmail == "" {
		return primitive.NilObjectID, errors.New("innermost requires inviterId and partnerEmail")
	}

	innermost.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	innermost.CreatedAt = now
	innermost.UpdatedAt = now
	if innermost.Status == "" {
		innermost.Status = domain.InnermostPending
	}

	result, err := r.collection.InsertOne(ctx, innermost)
	if err != nil {
		return primitive.NilObjectID, storageErr(err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted innermost ID")
	}

	return insertedID, nil
}

// GetByID retrieves an innermost by its ID.
func (r *mongoInnermostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Innermost, error) {
	var innermost domain.Innermost
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&innermost)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, storageErr(err)
	}
	return &innermost, nil
}

// GetByUser retrieves every innermost the user participates in, including
// pending invitations addressed to their email.
func (r *mongoInnermostRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, email string) ([]domain.Innermost, error) {
	var innermosts []domain.Innermost
	filter := bson.M{
		"$or": []bson.M{
			{"inviterId": userID},
			{"partnerId": userID},
			{"partnerEmail": email, "status": domain.InnermostPending},
		},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, storageErr(err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &innermosts); err != nil {
		return nil, storageErr(err)
	}
	if err = cursor.Err(); err != nil {
		return nil, storageErr(err)
	}

	return innermosts, nil
}

// CountActiveByUser counts the user's active innermosts, for the
// capability-gate check on the invite path.
func (r *mongoInnermostRepository) CountActiveByUser(ctx context.Context, userID primitive.ObjectID) (int, error) {
	filter := bson.M{
		"status": domain.InnermostActive,
		"$or": []bson.M{
			{"inviterId": userID},
			{"partnerId": userID},
		},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, storageErr(err)
	}
	return int(count), nil
}

// Activate moves a pending innermost to active, recording the accepting
// partner. The status filter makes acceptance a one-shot transition.
func (r *mongoInnermostRepository) Activate(ctx context.Context, id, partnerID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "status": domain.InnermostPending}
	update := bson.M{
		"$set": bson.M{
			"partnerId": partnerID,
			"status":    domain.InnermostActive,
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

// SetStatus updates the lifecycle status of an innermost.
func (r *mongoInnermostRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.InnermostStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
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

// EnsureInnermostIndexes creates necessary indexes for the innermosts collection.
func EnsureInnermostIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Listing a user's innermosts as inviter
			Keys:    bson.D{{Key: "inviterId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Listing a user's innermosts as partner
			Keys:    bson.D{{Key: "partnerId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			// Pending invitations looked up by invitee email
			Keys:    bson.D{{Key: "partnerEmail", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
