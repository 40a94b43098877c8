package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeeklyScore is the finalized outcome of a scored week: one per
// (innermost, week), created only when the guessing phase completes.
// Once IsComplete is true the record is immutable.
type WeeklyScore struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InnermostID   primitive.ObjectID `bson:"innermostId" json:"innermostId"`
	WeekNumber    int                `bson:"weekNumber" json:"weekNumber"`
	PartnerAScore int                `bson:"partnerAScore" json:"partnerAScore"`
	PartnerBScore int                `bson:"partnerBScore" json:"partnerBScore"`
	IsComplete    bool               `bson:"isComplete" json:"isComplete"`
	ScoredAt      time.Time          `bson:"scoredAt" json:"scoredAt"`
}
