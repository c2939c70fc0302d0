package conversationrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	domain "chefgpt-server/internal/domain/conversation"
)

const conversationsCollection = "chats"

// MongoStore keeps each conversation as a single document, turns embedded.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ domain.Store = (*MongoStore)(nil)

type messageDoc struct {
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
}

type metadataDoc struct {
	StartTime    time.Time  `bson:"startTime"`
	EndTime      *time.Time `bson:"endTime,omitempty"`
	MessageCount int        `bson:"messageCount"`
	DurationMS   int64      `bson:"durationMs"`
}

type chatDoc struct {
	ID         string       `bson:"_id"`
	UserID     *string      `bson:"userId"`
	Title      string       `bson:"title"`
	TitleState string       `bson:"titleState"`
	Messages   []messageDoc `bson:"messages"`
	Metadata   metadataDoc  `bson:"metadata"`
	Version    int64        `bson:"version"`
	CreatedAt  time.Time    `bson:"createdAt"`
	UpdatedAt  time.Time    `bson:"updatedAt"`
}

// NewMongoStore connects, pings and ensures the list index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := &MongoStore{client: client, coll: client.Database(database).Collection(conversationsCollection)}
	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "metadata.startTime", Value: -1}},
			Options: options.Index().SetName("owner_started"),
		},
	})
	if err != nil {
		return fmt.Errorf("create mongo indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var doc chatDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *MongoStore) FindByOwner(ctx context.Context, owner domain.OwnerID, limit int) ([]*domain.Conversation, error) {
	if owner.IsAnonymous() {
		return []*domain.Conversation{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "metadata.startTime", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.M{"userId": string(owner)}, opts)
	if err != nil {
		return nil, err
	}
	var docs []chatDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]*domain.Conversation, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].toDomain())
	}
	return result, nil
}

func (s *MongoStore) Insert(ctx context.Context, conv *domain.Conversation) error {
	_, err := s.coll.InsertOne(ctx, newChatDoc(conv))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateID
	}
	return err
}

func (s *MongoStore) Replace(ctx context.Context, conv *domain.Conversation) error {
	doc := newChatDoc(conv)
	doc.Version = conv.Version + 1
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": conv.ID, "version": conv.Version}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := s.coll.CountDocuments(ctx, bson.M{"_id": conv.ID})
		if err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	conv.Version++
	return nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func newChatDoc(conv *domain.Conversation) chatDoc {
	doc := chatDoc{
		ID:         conv.ID,
		Title:      conv.Title,
		TitleState: string(conv.TitleState),
		Messages:   make([]messageDoc, 0, len(conv.Turns)),
		Metadata: metadataDoc{
			StartTime:    conv.Stats.StartedAt.UTC(),
			EndTime:      conv.Stats.LastTurnAt,
			MessageCount: conv.Stats.Count,
			DurationMS:   conv.Stats.Duration.Milliseconds(),
		},
		Version:   conv.Version,
		CreatedAt: conv.CreatedAt.UTC(),
		UpdatedAt: conv.UpdatedAt.UTC(),
	}
	if !conv.Owner.IsAnonymous() {
		owner := string(conv.Owner)
		doc.UserID = &owner
	}
	for _, turn := range conv.Turns {
		doc.Messages = append(doc.Messages, messageDoc{Role: string(turn.Speaker), Content: turn.Text, Timestamp: turn.CreatedAt.UTC()})
	}
	return doc
}

func (d *chatDoc) toDomain() *domain.Conversation {
	conv := &domain.Conversation{
		ID:         d.ID,
		Title:      d.Title,
		TitleState: domain.TitleState(d.TitleState),
		Turns:      make([]domain.Turn, 0, len(d.Messages)),
		Version:    d.Version,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
	if d.UserID != nil {
		conv.Owner = domain.OwnerID(*d.UserID)
	}
	if conv.TitleState == "" {
		conv.TitleState = domain.TitleFinal
		if conv.Title == domain.DefaultTitle {
			conv.TitleState = domain.TitleDefault
		}
	}
	for _, m := range d.Messages {
		conv.Turns = append(conv.Turns, domain.Turn{Speaker: domain.Speaker(m.Role), Text: m.Content, CreatedAt: m.Timestamp.UTC()})
	}
	conv.RefreshStats()
	return conv
}
