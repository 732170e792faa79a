package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const CollectionName = "user_tokens"

type tokenDocument struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	UserID     bson.ObjectID `bson:"userId"`
	Token      string        `bson:"token"`
	TokenType  string        `bson:"tokenType"`
	CreatedAt  time.Time     `bson:"createdAt"`
	ExpiresAt  time.Time     `bson:"expiresAt"`
	IsActive   bool          `bson:"isActive"`
	DeviceInfo string        `bson:"deviceInfo,omitempty"`
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, t *models.Token) (*models.Token, error) {
	uid, err := bson.ObjectIDFromHex(t.UserID)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	doc := tokenDocument{
		ID:         bson.NewObjectID(),
		UserID:     uid,
		Token:      t.Token,
		TokenType:  string(t.Kind),
		CreatedAt:  t.CreatedAt,
		ExpiresAt:  t.ExpiresAt,
		IsActive:   t.IsActive,
		DeviceInfo: t.DeviceInfo,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, common.StoreError("insert token", err)
	}

	t.ID = doc.ID.Hex()
	return t, nil
}

func (r *MongoRepository) FindActive(ctx context.Context, userID, token string, kind models.TokenKind, now time.Time) (*models.Token, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	var doc tokenDocument
	if err := r.coll.FindOne(ctx, activeTokenFilter(uid, token, kind, now)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError("find token", err)
	}

	return &models.Token{
		ID:         doc.ID.Hex(),
		UserID:     userID,
		Token:      doc.Token,
		Kind:       models.TokenKind(doc.TokenType),
		CreatedAt:  doc.CreatedAt,
		ExpiresAt:  doc.ExpiresAt,
		IsActive:   doc.IsActive,
		DeviceInfo: doc.DeviceInfo,
	}, nil
}

// activeTokenFilter matches an active record of the token that expires
// strictly after now.
func activeTokenFilter(uid bson.ObjectID, token string, kind models.TokenKind, now time.Time) bson.M {
	return bson.M{
		"userId":    uid,
		"token":     token,
		"tokenType": string(kind),
		"isActive":  true,
		"expiresAt": bson.M{"$gt": now},
	}
}

func (r *MongoRepository) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	uid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return 0, nil
	}

	res, err := r.coll.DeleteMany(ctx, bson.M{"userId": uid})
	if err != nil {
		return 0, common.StoreError("delete tokens", err)
	}
	return res.DeletedCount, nil
}
