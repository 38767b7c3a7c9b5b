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

	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

const collectionCandidates = "candidates"

var _ ports.CandidateRepository = (*CandidateRepository)(nil)

type CandidateRepository struct {
	col *mongo.Collection
}

func NewCandidateRepository(db *mongo.Database) *CandidateRepository {
	return &CandidateRepository{col: db.Collection(collectionCandidates)}
}

type mongoVote struct {
	User    primitive.ObjectID `bson:"user"`
	VotedAt time.Time          `bson:"votedAt"`
}

type mongoCandidate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Party     string             `bson:"party"`
	Image     string             `bson:"image"`
	Votes     []mongoVote        `bson:"votes"`
	VoteCount int                `bson:"voteCount"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (mc *mongoCandidate) toDomain() *domain.Candidate {
	votes := make([]domain.VoteRecord, 0, len(mc.Votes))
	for _, v := range mc.Votes {
		votes = append(votes, domain.VoteRecord{UserID: v.User.Hex(), VotedAt: v.VotedAt.UTC()})
	}
	return &domain.Candidate{
		ID:        mc.ID.Hex(),
		Name:      mc.Name,
		Party:     mc.Party,
		Image:     mc.Image,
		Votes:     votes,
		VoteCount: mc.VoteCount,
		CreatedAt: mc.CreatedAt.UTC(),
		UpdatedAt: mc.UpdatedAt.UTC(),
	}
}

// EnsureIndexes creates the index used by the vote tally sort.
func (r *CandidateRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "voteCount", Value: -1}},
	})
	return err
}

func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) (*domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoCandidate{
		Name:      c.Name,
		Party:     c.Party,
		Image:     c.Image,
		Votes:     []mongoVote{},
		VoteCount: c.VoteCount,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert candidate: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *CandidateRepository) FindByID(ctx context.Context, id string) (*domain.Candidate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCandidateNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCandidate
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	return mc.toDomain(), nil
}

// List returns every candidate in insertion order.
func (r *CandidateRepository) List(ctx context.Context) ([]*domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoCandidate
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}

	out := make([]*domain.Candidate, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *CandidateRepository) Update(ctx context.Context, id string, upd ports.CandidateUpdate) (*domain.Candidate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCandidateNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Name != "" {
		set["name"] = upd.Name
	}
	if upd.Party != "" {
		set["party"] = upd.Party
	}
	if upd.Image != "" {
		set["image"] = upd.Image
	}

	var mc mongoCandidate
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("update candidate: %w", err)
	}
	return mc.toDomain(), nil
}

// Delete removes the candidate and returns the removed document.
func (r *CandidateRepository) Delete(ctx context.Context, id string) (*domain.Candidate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCandidateNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCandidate
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("delete candidate: %w", err)
	}
	return mc.toDomain(), nil
}

// AddVote appends to the vote log and bumps the counter in one update, so
// voteCount always equals len(votes).
func (r *CandidateRepository) AddVote(ctx context.Context, candidateID, userID string, at time.Time) error {
	cid, err := primitive.ObjectIDFromHex(candidateID)
	if err != nil {
		return domain.ErrCandidateNotFound
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": cid},
		bson.M{
			"$inc":  bson.M{"voteCount": 1},
			"$push": bson.M{"votes": mongoVote{User: uid, VotedAt: at}},
			"$set":  bson.M{"updatedAt": at},
		},
	)
	if err != nil {
		return fmt.Errorf("add vote: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCandidateNotFound
	}
	return nil
}

func (r *CandidateRepository) Tally(ctx context.Context) ([]domain.Tally, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "voteCount", Value: -1}}).
		SetProjection(bson.M{"party": 1, "voteCount": 1})

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	defer cur.Close(ctx)

	out := []domain.Tally{}
	for cur.Next(ctx) {
		var row struct {
			Party     string `bson:"party"`
			VoteCount int    `bson:"voteCount"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode tally: %w", err)
		}
		out = append(out, domain.Tally{Party: row.Party, Count: row.VoteCount})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	return out, nil
}
