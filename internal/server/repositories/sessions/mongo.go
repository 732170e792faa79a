package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const CollectionName = "user_sessions"

type sessionDocument struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	UserID          bson.ObjectID `bson:"userId"`
	LoginAt         time.Time     `bson:"loginAt"`
	LogoutAt        *time.Time    `bson:"logoutAt,omitempty"`
	SessionDuration *int64        `bson:"sessionDuration,omitempty"`
}

// openSessionFilter matches the user's sessions that have no logoutAt, or a
// null one.
func openSessionFilter(uid bson.ObjectID) bson.M {
	return bson.M{"userId": uid, "logoutAt": nil}
}

// latestFirst orders by login time, then by _id so equal login times resolve
// to the most recently inserted session.
func latestFirst() bson.D {
	return bson.D{{Key: "loginAt", Value: -1}, {Key: "_id", Value: -1}}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Open(ctx context.Context, s *models.Session) (*models.Session, error) {
	uid, err := bson.ObjectIDFromHex(s.UserID)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	doc := sessionDocument{ID: bson.NewObjectID(), UserID: uid, LoginAt: s.LoginAt}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, common.StoreError("open session", err)
	}

	s.ID = doc.ID.Hex()
	s.LogoutAt = nil
	s.Duration = nil
	return s, nil
}

func (r *MongoRepository) CloseMostRecentOpen(ctx context.Context, userID string, at time.Time) (*models.Session, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	opts := options.FindOne().SetSort(latestFirst())

	var doc sessionDocument
	err = r.coll.FindOne(ctx, openSessionFilter(uid), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError("find open session", err)
	}

	duration := models.SessionDuration(doc.LoginAt, at)
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "logoutAt": nil},
		bson.M{"$set": bson.M{"logoutAt": at, "sessionDuration": duration}},
	)
	if err != nil {
		return nil, common.StoreError("close session", err)
	}
	if res.MatchedCount == 0 {
		return nil, common.ErrorNotFound
	}

	return &models.Session{
		ID:       doc.ID.Hex(),
		UserID:   userID,
		LoginAt:  doc.LoginAt,
		LogoutAt: &at,
		Duration: &duration,
	}, nil
}

func (r *MongoRepository) CountForUser(ctx context.Context, userID string) (int64, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return 0, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"userId": uid})
	if err != nil {
		return 0, common.StoreError("count sessions", err)
	}
	return n, nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, common.StoreError("count sessions", err)
	}
	return n, nil
}
