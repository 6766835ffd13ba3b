package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"landing/internal/project/models"
	"landing/pkg/platform/sentinel"
)

// projectDocument is the stored shape. Field names match documents written
// by the earlier Node service (title, location, price, currency, images,
// createdAt, updatedAt) so existing collections load unchanged.
type projectDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Title     string        `bson:"title"`
	Location  string        `bson:"location"`
	Price     float64       `bson:"price"`
	Currency  string        `bson:"currency,omitempty"`
	Images    []string      `bson:"images"`
	PDFURL    string        `bson:"pdfUrl,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

// MongoStore reads and writes projects in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongo(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the createdAt index used by List.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create projects index: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, p *models.Project) error {
	doc := toDocument(p)
	doc.ID = bson.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]*models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	var docs []projectDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	out := make([]*models.Project, 0, len(docs))
	for i := range docs {
		out = append(out, fromDocument(&docs[i]))
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*models.Project, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		// not a valid ObjectID, so it cannot exist
		return nil, sentinel.ErrNotFound
	}
	var doc projectDocument
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	return fromDocument(&doc), nil
}

func toDocument(p *models.Project) projectDocument {
	return projectDocument{
		Title:     p.Title,
		Location:  p.Location,
		Price:     float64(p.Price),
		Currency:  p.Currency,
		Images:    p.Images,
		PDFURL:    p.PDFURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromDocument(d *projectDocument) *models.Project {
	p := &models.Project{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Location:  d.Location,
		Price:     int64(d.Price),
		Currency:  d.Currency,
		Images:    d.Images,
		PDFURL:    d.PDFURL,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if p.Currency == "" {
		p.Currency = models.DefaultCurrency
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if len(p.Images) > 0 {
		p.ImageURL = p.Images[0]
	}
	return p
}
