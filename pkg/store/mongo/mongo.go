// Package mongo implements store.Store on MongoDB, one document per family.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
	"github.com/matzehuels/kinship/pkg/store"
)

// Collection is the collection families are kept in.
const Collection = "families"

// Store is a MongoDB-backed store.Store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to uri and pings the server.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeNetwork, err, "mongo: connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, kerrors.Wrap(kerrors.ErrCodeNetwork, err, "mongo: ping")
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(Collection),
	}, nil
}

// Person names are free text and may contain '.' or start with '$', which
// MongoDB rejects as field names, so people are stored as an array rather
// than keyed by name.
type personDoc struct {
	Name    string   `bson:"name"`
	Gender  string   `bson:"gender"`
	Parents []string `bson:"parents,omitempty"`
}

type familyDoc struct {
	Name      string      `bson:"_id"`
	People    []personDoc `bson:"people"`
	Couples   [][]string  `bson:"couples,omitempty"`
	Count     int         `bson:"count"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

func toDoc(name string, d family.Data) familyDoc {
	doc := familyDoc{Name: name, Count: len(d.Individuals), UpdatedAt: time.Now().UTC()}
	for _, n := range slices.Sorted(maps.Keys(d.Individuals)) {
		doc.People = append(doc.People, personDoc{
			Name:    n,
			Gender:  string(d.Individuals[n]),
			Parents: d.Parents[n],
		})
	}
	for _, c := range d.Couples {
		doc.Couples = append(doc.Couples, []string{c[0], c[1]})
	}
	return doc
}

func (doc familyDoc) data() (family.Data, error) {
	d := family.Data{
		Individuals: make(map[string]family.Gender, len(doc.People)),
		Parents:     make(map[string][]string),
	}
	for _, p := range doc.People {
		g, err := family.ParseGender(p.Gender)
		if err != nil {
			return family.Data{}, kerrors.Wrap(kerrors.ErrCodeInvalidGender, err, "family %q: individual %q", doc.Name, p.Name)
		}
		d.Individuals[p.Name] = g
		if len(p.Parents) > 0 {
			d.Parents[p.Name] = p.Parents
		}
	}
	for i, c := range doc.Couples {
		if len(c) != 2 {
			return family.Data{}, kerrors.New(kerrors.ErrCodeInvalidFormat, "family %q: couple %d has %d names", doc.Name, i, len(c))
		}
		d.Couples = append(d.Couples, [2]string{c[0], c[1]})
	}
	return d, nil
}

func (s *Store) Save(ctx context.Context, name string, data family.Data) error {
	if err := kerrors.ValidateFamilyName(name); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, toDoc(name, data), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: save %q: %w", name, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, name string) (family.Data, error) {
	var doc familyDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return family.Data{}, store.NotFound(name)
	}
	if err != nil {
		return family.Data{}, fmt.Errorf("mongo: load %q: %w", name, err)
	}
	return doc.data()
}

func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"people": 0, "couples": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list: %w", err)
	}
	var docs []familyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: list: %w", err)
	}

	out := make([]store.Summary, len(docs))
	for i, d := range docs {
		out[i] = store.Summary{Name: d.Name, People: d.Count, UpdatedAt: d.UpdatedAt}
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return fmt.Errorf("mongo: delete %q: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound(name)
	}
	return nil
}

// Close disconnects the client, waiting at most five seconds.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
