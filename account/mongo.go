package account

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adreporthq/adconnect/platform"
)

var _ Store = &MongoStore{}

// MongoStore is a MongoDB-backed implementation of Store.
type MongoStore struct {
	coll   *mongo.Collection
	cipher *Cipher
}

// NewMongoStore creates a store over db. A non-nil cipher encrypts the
// credential blob at rest.
func NewMongoStore(db *mongo.Database, cipher *Cipher) *MongoStore {
	return &MongoStore{
		coll:   db.Collection("ad_accounts"),
		cipher: cipher,
	}
}

// EnsureIndexes creates the unique (platform, account_id) index so
// concurrent upserts cannot produce two records for the same account.
// Call once at startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "platform", Value: 1}, {Key: "account_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

type credDoc struct {
	AccessToken  string    `bson:"access_token,omitempty"`
	RefreshToken string    `bson:"refresh_token,omitempty"`
	TokenType    string    `bson:"token_type,omitempty"`
	Expiry       time.Time `bson:"expiry,omitempty"`
}

type connDoc struct {
	ID          string    `bson:"_id"`
	Platform    string    `bson:"platform"`
	AccountID   string    `bson:"account_id"`
	ClientRef   string    `bson:"client_ref,omitempty"`
	Name        string    `bson:"name,omitempty"`
	Credentials *credDoc  `bson:"credentials,omitempty"`
	Sealed      []byte    `bson:"credentials_sealed,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (s *MongoStore) encodeCredentials(creds CredentialSet) (interface{}, []byte, error) {
	if s.cipher == nil {
		return &credDoc{
			AccessToken:  creds.AccessToken,
			RefreshToken: creds.RefreshToken,
			TokenType:    creds.TokenType,
			Expiry:       creds.Expiry,
		}, nil, nil
	}
	plain, err := json.Marshal(creds)
	if err != nil {
		return nil, nil, err
	}
	sealed, err := s.cipher.Seal(plain)
	if err != nil {
		return nil, nil, err
	}
	return nil, sealed, nil
}

func (s *MongoStore) decode(doc connDoc) (*Connection, error) {
	conn := &Connection{
		ID:        doc.ID,
		Platform:  platform.Platform(doc.Platform),
		AccountID: doc.AccountID,
		ClientRef: doc.ClientRef,
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	switch {
	case len(doc.Sealed) > 0:
		if s.cipher == nil {
			return nil, errors.New("stored credentials are encrypted but no cipher is configured")
		}
		plain, err := s.cipher.Open(doc.Sealed)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(plain, &conn.Credentials); err != nil {
			return nil, err
		}
	case doc.Credentials != nil:
		conn.Credentials = CredentialSet{
			AccessToken:  doc.Credentials.AccessToken,
			RefreshToken: doc.Credentials.RefreshToken,
			TokenType:    doc.Credentials.TokenType,
			Expiry:       doc.Credentials.Expiry,
		}
	}
	return conn, nil
}

// Put creates or overwrites the connection for (p, accountID).
func (s *MongoStore) Put(ctx context.Context, p platform.Platform, accountID, clientRef string, creds CredentialSet, name string) (*Connection, error) {
	if p == "" || accountID == "" {
		return nil, errors.New("platform and account id are required")
	}
	credField, sealed, err := s.encodeCredentials(creds)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	set := bson.M{
		"client_ref": clientRef,
		"name":       name,
		"updated_at": now,
	}
	unset := bson.M{}
	if sealed != nil {
		set["credentials_sealed"] = sealed
		unset["credentials"] = ""
	} else {
		set["credentials"] = credField
		unset["credentials_sealed"] = ""
	}
	filter := bson.M{"platform": string(p), "account_id": accountID}
	update := bson.M{
		"$set":         set,
		"$unset":       unset,
		"$setOnInsert": bson.M{"_id": uuid.New().String(), "created_at": now},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return nil, err
	}
	return s.Get(ctx, p, accountID)
}

// Get returns the connection for (p, accountID).
func (s *MongoStore) Get(ctx context.Context, p platform.Platform, accountID string) (*Connection, error) {
	var doc connDoc
	err := s.coll.FindOne(ctx, bson.M{"platform": string(p), "account_id": accountID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, platform.E(platform.KindAccountNotFound, "no "+string(p)+" connection for account "+accountID)
		}
		return nil, err
	}
	return s.decode(doc)
}

// FindAny returns an arbitrary connection for the platform.
func (s *MongoStore) FindAny(ctx context.Context, p platform.Platform) (*Connection, error) {
	var doc connDoc
	err := s.coll.FindOne(ctx, bson.M{"platform": string(p)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, platform.E(platform.KindAccountNotFound, "no "+string(p)+" connections")
		}
		return nil, err
	}
	return s.decode(doc)
}

// ListByPlatform returns all connections for the platform.
func (s *MongoStore) ListByPlatform(ctx context.Context, p platform.Platform) ([]*Connection, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"platform": string(p)})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var out []*Connection
	for cursor.Next(ctx) {
		var doc connDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		conn, err := s.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, cursor.Err()
}

// Rename rewrites account id and display name in place. A record already
// holding the target id is dropped first so (platform, account_id) stays
// unique. Last writer wins under concurrency; acceptable because the
// migration target is deterministic.
func (s *MongoStore) Rename(ctx context.Context, p platform.Platform, oldAccountID, newAccountID, newName string) error {
	if newAccountID == "" {
		return errors.New("new account id is required")
	}
	if oldAccountID == newAccountID {
		return nil
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"platform": string(p), "account_id": newAccountID}); err != nil {
		return err
	}
	filter := bson.M{"platform": string(p), "account_id": oldAccountID}
	update := bson.M{"$set": bson.M{
		"account_id": newAccountID,
		"name":       newName,
		"updated_at": time.Now().UTC(),
	}}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return platform.E(platform.KindAccountNotFound, "no "+string(p)+" connection for account "+oldAccountID)
	}
	return nil
}

// Remove deletes a connection record by id. Deleting an absent record is
// not an error.
func (s *MongoStore) Remove(ctx context.Context, connectionID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": connectionID})
	return err
}
