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
	"github.com/storefront/commerce-api/internal/infrastructure/identity"
)

const collectionCredentials = "credentials"

// CredentialRepository is the identity provider's account store.
type CredentialRepository struct {
	col *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{col: db.Collection(collectionCredentials)}
}

type mongoCredential struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	SubjectID    string             `bson:"subject_id"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    int64              `bson:"created_at"`
}

func (r *CredentialRepository) Create(ctx context.Context, c identity.Credential) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoCredential{
		SubjectID:    c.SubjectID,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt.Unix(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*identity.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCredential
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, identity.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &identity.Credential{
		SubjectID:    mc.SubjectID,
		Email:        mc.Email,
		PasswordHash: mc.PasswordHash,
		CreatedAt:    unixToTime(mc.CreatedAt),
	}, nil
}

// EnsureIndexes creates necessary indexes on the credentials collection.
func (r *CredentialRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "subject_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
