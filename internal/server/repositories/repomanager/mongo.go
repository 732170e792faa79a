package repomanager

import (
	"context"
	"fmt"

	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/sessions"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/tokens"
	"github.com/chengshang-tools/launcher-auth/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoRepositoryManager vends MongoDB-backed repositories over the
// users, user_sessions and user_tokens collections.
type MongoRepositoryManager struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri, checks the primary is reachable and selects
// database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoRepositoryManager{client: client, db: client.Database(database)}, nil
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return users.NewMongoRepository(m.db)
}

func (m *MongoRepositoryManager) Sessions() sessions.Repository {
	return sessions.NewMongoRepository(m.db)
}

func (m *MongoRepositoryManager) Tokens() tokens.Repository {
	return tokens.NewMongoRepository(m.db)
}

// WithinTx runs fn directly; the repositories issue single-document writes.
func (m *MongoRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	return fn(ctx, m)
}

// indexes lists the secondary indexes per collection.
var indexes = map[string][]mongo.IndexModel{
	users.CollectionName: {
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	sessions.CollectionName: {
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "loginAt", Value: -1}}},
	},
	tokens.CollectionName: {
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "tokenType", Value: 1}}},
	},
}

// RunMigrations creates the indexes the repositories rely on. Creating an
// index that already exists is a no-op.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	for coll, idx := range indexes {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
