package users

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

// CollectionName is the MongoDB collection holding user documents.
const CollectionName = "users"

type userDocument struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	UserName       string        `bson:"username"`
	Password       string        `bson:"password"`
	Role           string        `bson:"role"`
	IsActive       bool          `bson:"isActive"`
	CreatedAt      time.Time     `bson:"createdAt"`
	LastLoginAt    *time.Time    `bson:"lastLoginAt"`
	TotalUsageTime int64         `bson:"totalUsageTime"`
	LoginCount     int64         `bson:"loginCount"`
}

func (d *userDocument) model() *models.User {
	return &models.User{
		ID:             d.ID.Hex(),
		UserName:       d.UserName,
		PasswordHash:   d.Password,
		Role:           models.Role(d.Role),
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
		LastLoginAt:    d.LastLoginAt,
		TotalUsageTime: d.TotalUsageTime,
		LoginCount:     d.LoginCount,
	}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	doc := userDocument{
		ID:             bson.NewObjectID(),
		UserName:       user.UserName,
		Password:       user.PasswordHash,
		Role:           string(user.Role),
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt,
		LastLoginAt:    user.LastLoginAt,
		TotalUsageTime: user.TotalUsageTime,
		LoginCount:     user.LoginCount,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrUsernameTaken
		}
		return nil, common.StoreError("insert user", err)
	}

	user.ID = doc.ID.Hex()
	return user, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, common.StoreError("find user", err)
	}
	return doc.model(), nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func updateDocument(upd Update) bson.M {
	set := bson.M{}
	if upd.UserName != nil {
		set["username"] = *upd.UserName
	}
	if upd.Role != nil {
		set["role"] = string(*upd.Role)
	}
	if upd.IsActive != nil {
		set["isActive"] = *upd.IsActive
	}
	if upd.PasswordHash != nil {
		set["password"] = *upd.PasswordHash
	}
	if upd.LastLoginAt != nil {
		set["lastLoginAt"] = *upd.LastLoginAt
	}

	inc := bson.M{}
	if upd.LoginCountDelta != 0 {
		inc["loginCount"] = upd.LoginCountDelta
	}
	if upd.UsageTimeDelta != 0 {
		inc["totalUsageTime"] = upd.UsageTimeDelta
	}

	doc := bson.M{}
	if len(set) > 0 {
		doc["$set"] = set
	}
	if len(inc) > 0 {
		doc["$inc"] = inc
	}
	return doc
}

func (r *MongoRepository) Update(ctx context.Context, id string, upd Update) error {
	if upd.IsEmpty() {
		return common.ErrNoFieldsToUpdate
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, updateDocument(upd))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrUsernameTaken
		}
		return common.StoreError("update user", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return common.StoreError("delete user", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) Count(ctx context.Context, f Filter) (int64, error) {
	filter := bson.M{}
	if f.IsActive != nil {
		filter["isActive"] = *f.IsActive
	}

	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, common.StoreError("count users", err)
	}
	return n, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, common.StoreError("list users", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, common.StoreError("decode users", err)
	}

	out := make([]*models.User, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].model())
	}
	return out, nil
}

func (r *MongoRepository) SetLoginCount(ctx context.Context, id string, n int64) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"loginCount": n}})
	if err != nil {
		return common.StoreError("set login count", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}
