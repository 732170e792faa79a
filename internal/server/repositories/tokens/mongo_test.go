package tokens

import (
	"testing"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestActiveTokenFilter(t *testing.T) {
	uid := bson.NewObjectID()
	now := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	f := activeTokenFilter(uid, "tok", models.TokenAutoLogin, now)

	assert.Equal(t, bson.M{
		"userId":    uid,
		"token":     "tok",
		"tokenType": "auto_login",
		"isActive":  true,
		"expiresAt": bson.M{"$gt": now},
	}, f)
}
