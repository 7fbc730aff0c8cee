// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Index creation is idempotent; errors
// are aggregated so every problem is visible and startup can fail fast.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	for coll, models := range desired() {
		if err := ensure(ctx, db.Collection(coll), models, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func desired() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		"users": {
			named("uniq_users_email", bson.D{{Key: "email", Value: 1}}, true),
			named("idx_users_telegram_id", bson.D{{Key: "telegramId", Value: 1}}, false),
			named("idx_users_org", bson.D{{Key: "organization.id", Value: 1}}, false),
			named("idx_users_vk", bson.D{{Key: "services.vk", Value: 1}}, false),
		},
		"organizations": {
			named("uniq_orgs_title", bson.D{{Key: "title", Value: 1}}, true),
		},
		"tasks": {
			named("text_tasks_title", bson.D{{Key: "title", Value: "text"}}, false),
			named("geo_tasks_location", bson.D{{Key: "location", Value: "2dsphere"}}, false),
			named("idx_tasks_status_created", bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}, false),
			named("idx_tasks_owner", bson.D{{Key: "ownerId", Value: 1}}, false),
		},
		"properties": {
			named("uniq_properties_name", bson.D{{Key: "name", Value: 1}}, true),
		},
		"invitations": {
			named("uniq_invitations_token", bson.D{{Key: "token", Value: 1}}, true),
			named("uniq_invitations_email", bson.D{{Key: "email", Value: 1}}, true),
		},
		"refresh_tokens": {
			named("uniq_refresh_tokens_token", bson.D{{Key: "token", Value: 1}}, true),
			named("idx_refresh_tokens_user", bson.D{{Key: "userId", Value: 1}}, false),
		},
		"door_logs": {
			named("idx_door_logs_created", bson.D{{Key: "createdAt", Value: -1}}, false),
			named("idx_door_logs_state_created", bson.D{{Key: "state", Value: 1}, {Key: "createdAt", Value: -1}}, false),
		},
	}
}

func named(name string, keys bson.D, unique bool) mongo.IndexModel {
	opts := options.Index().SetName(name)
	if unique {
		opts = opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: keys, Options: opts}
}

// ensure creates each desired index. CreateOne is a no-op when an
// identical index exists; an IndexOptionsConflict means an index with
// the same keys exists under different options and needs a manual drop,
// so it is reported rather than papered over.
func ensure(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	var errs []string
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			logger.Error("index creation failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.Error(err))
			errs = append(errs, name+": "+err.Error())
			continue
		}
		logger.Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
