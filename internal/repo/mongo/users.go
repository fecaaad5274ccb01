package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/invoicehub/internal/domain/user"
	"github.com/geocoder89/invoicehub/internal/observability"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection = "users"
	emailIndexName  = "users_email_key"
)

type quickBooksDocument struct {
	Connected   bool       `bson:"connected"`
	RealmID     string     `bson:"realmId,omitempty"`
	ConnectedAt *time.Time `bson:"connectedAt,omitempty"`
}

// userDocument keeps the field names of the existing users collection.
type userDocument struct {
	ID           bson.ObjectID      `bson:"_id"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Name         string             `bson:"name"`
	FirstName    string             `bson:"firstName,omitempty"`
	LastName     string             `bson:"lastName,omitempty"`
	QuickBooks   quickBooksDocument `bson:"quickbooks"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDocument) toUser() user.User {
	return user.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		QuickBooks: user.QuickBooksLink{
			Connected:   d.QuickBooks.Connected,
			RealmID:     d.QuickBooks.RealmID,
			ConnectedAt: d.QuickBooks.ConnectedAt,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Connect opens a client and checks the primary is reachable. The caller
// owns the client and must Disconnect it.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))

	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, nil
}

type UsersRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
	prom   *observability.Prom
}

func NewUsersRepo(client *mongo.Client, database string, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		client: client,
		coll:   client.Database(database).Collection(usersCollection),
		prom:   prom,
	}
}

// EnsureIndexes creates the unique email index. It is idempotent.
func (r *UsersRepo) EnsureIndexes(ctx context.Context) error {
	return r.prom.ObserveDB("users.ensure_indexes", func() error {
		_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(emailIndexName),
		})
		return err
	})
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, "users.find_by_email", bson.D{{Key: "email", Value: email}})
}

func (r *UsersRepo) FindByID(ctx context.Context, id string) (user.User, error) {
	oid, err := bson.ObjectIDFromHex(id)

	if err != nil {
		return user.User{}, user.ErrNotFound
	}

	return r.findOne(ctx, "users.find_by_id", bson.D{{Key: "_id", Value: oid}})
}

func (r *UsersRepo) findOne(ctx context.Context, op string, filter bson.D) (user.User, error) {
	var (
		doc     userDocument
		missing bool
	)

	err := r.prom.ObserveDB(op, func() error {
		err := r.coll.FindOne(ctx, filter).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			missing = true
			return nil
		}
		return err
	})

	if err != nil {
		return user.User{}, err
	}

	if missing {
		return user.User{}, user.ErrNotFound
	}

	return doc.toUser(), nil
}

// Create rejects known emails up front; the unique index catches the rest.
func (r *UsersRepo) Create(ctx context.Context, params user.CreateParams) (user.User, error) {
	var count int64

	err := r.prom.ObserveDB("users.create.duplicate_check", func() error {
		var err error
		count, err = r.coll.CountDocuments(ctx, bson.D{{Key: "email", Value: params.Email}}, options.Count().SetLimit(1))
		return err
	})

	if err != nil {
		return user.User{}, err
	}

	if count > 0 {
		return user.User{}, user.ErrEmailTaken
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:           bson.NewObjectID(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Name:         strings.TrimSpace(params.Name),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = r.prom.ObserveDB("users.create.insert", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return doc.toUser(), nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
