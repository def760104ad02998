package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/commerce-api/internal/core/domain"
)

const collectionSessions = "sessions"

// newestFirst orders sessions by login time; _id breaks ties within the
// same millisecond.
var newestFirst = bson.D{{Key: "login_at", Value: -1}, {Key: "_id", Value: -1}}

type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection(collectionSessions)}
}

type mongoSession struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"user_id"`
	LoginAt       time.Time          `bson:"login_at"`
	LastActivity  time.Time          `bson:"last_activity"`
	LogoutAt      *time.Time         `bson:"logout_at"`
	SourceAddress string             `bson:"source_address"`
}

func (s mongoSession) toDomain() *domain.Session {
	out := &domain.Session{
		ID:            s.ID.Hex(),
		UserID:        s.UserID,
		LoginAt:       s.LoginAt.UTC(),
		LastActivity:  s.LastActivity.UTC(),
		SourceAddress: s.SourceAddress,
	}
	if s.LogoutAt != nil {
		t := s.LogoutAt.UTC()
		out.LogoutAt = &t
	}
	return out
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoSession{
		ID:            primitive.NewObjectID(),
		UserID:        s.UserID,
		LoginAt:       s.LoginAt,
		LastActivity:  s.LastActivity,
		LogoutAt:      s.LogoutAt,
		SourceAddress: s.SourceAddress,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return doc.toDomain(), nil
}

// FindLatestActive matches logout_at null or missing.
func (r *SessionRepository) FindLatestActive(ctx context.Context, userID string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(newestFirst)
	var ms mongoSession
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "logout_at": nil}, opts).Decode(&ms)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoActiveSession
		}
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return ms.toDomain(), nil
}

func (r *SessionRepository) SetLastActivity(ctx context.Context, sessionID string, at time.Time) error {
	return r.set(ctx, sessionID, bson.M{"last_activity": at})
}

func (r *SessionRepository) SetLogout(ctx context.Context, sessionID string, at time.Time) error {
	return r.set(ctx, sessionID, bson.M{"logout_at": at})
}

func (r *SessionRepository) set(ctx context.Context, sessionID string, fields bson.M) error {
	oid, ok := objectID(sessionID)
	if !ok {
		return domain.ErrNoActiveSession
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNoActiveSession
	}
	return nil
}

func (r *SessionRepository) EndActive(ctx context.Context, userID, keepID string, at time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "logout_at": nil}
	if oid, ok := objectID(keepID); ok {
		filter["_id"] = bson.M{"$ne": oid}
	}
	res, err := r.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"logout_at": at}})
	if err != nil {
		return 0, fmt.Errorf("end active sessions: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *SessionRepository) ListAll(ctx context.Context) ([]*domain.Session, error) {
	return r.list(ctx, bson.M{})
}

func (r *SessionRepository) list(ctx context.Context, filter bson.M) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoSession
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(docs))
	for _, d := range docs {
		sessions = append(sessions, d.toDomain())
	}
	return sessions, nil
}

// EnsureIndexes creates necessary indexes on the sessions collection.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "logout_at", Value: 1}, {Key: "login_at", Value: -1}}},
		{Keys: bson.D{{Key: "login_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
