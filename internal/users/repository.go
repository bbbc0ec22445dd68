package users

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/classfeed/classfeed/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned by UpdateRole when no profile exists for the id.
var ErrNotFound = errors.New("profile not found")

// ProfileRepository defines persistence operations for user profiles.
// Lookups return (nil, nil) when no profile exists for the id.
type ProfileRepository interface {
	Create(ctx context.Context, p *models.UserProfile) error
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
	UpdateRole(ctx context.Context, id, name string, role models.Role) error
	FindByEmail(ctx context.Context, email string) ([]*models.UserProfile, error)
	FindByRole(ctx context.Context, role models.Role) ([]*models.UserProfile, error)
	List(ctx context.Context) ([]*models.UserProfile, error)
}

// MongoProfileRepository implements ProfileRepository using MongoDB.
// Profiles are keyed by the owning identity's id (document _id), which keeps
// the one-profile-per-identity invariant in the store itself.
type MongoProfileRepository struct {
	col *mongo.Collection
}

func NewMongoProfileRepository(col *mongo.Collection) *MongoProfileRepository {
	return &MongoProfileRepository{col: col}
}

func (r *MongoProfileRepository) Create(ctx context.Context, p *models.UserProfile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, p)
	return err
}

func (r *MongoProfileRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoProfileRepository) UpdateRole(ctx context.Context, id, name string, role models.Role) error {
	set := bson.M{"role": role}
	if name != "" {
		set["name"] = name
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProfileRepository) FindByEmail(ctx context.Context, email string) ([]*models.UserProfile, error) {
	return r.find(ctx, bson.M{"email": email})
}

func (r *MongoProfileRepository) FindByRole(ctx context.Context, role models.Role) ([]*models.UserProfile, error) {
	return r.find(ctx, bson.M{"role": role})
}

func (r *MongoProfileRepository) List(ctx context.Context) ([]*models.UserProfile, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoProfileRepository) find(ctx context.Context, filter bson.M) ([]*models.UserProfile, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.UserProfile{}
	for cur.Next(ctx) {
		var p models.UserProfile
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}

// MemoryProfileRepository is an in-memory ProfileRepository for development
// and unit tests.
type MemoryProfileRepository struct {
	mu    sync.RWMutex
	store map[string]*models.UserProfile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{store: map[string]*models.UserProfile{}}
}

func (r *MemoryProfileRepository) Create(ctx context.Context, p *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	cp := *p
	r.store[p.ID] = &cp
	return nil
}

func (r *MemoryProfileRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryProfileRepository) UpdateRole(ctx context.Context, id, name string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.store[id]
	if !ok {
		return ErrNotFound
	}
	if name != "" {
		p.Name = name
	}
	p.Role = role
	return nil
}

func (r *MemoryProfileRepository) FindByEmail(ctx context.Context, email string) ([]*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.UserProfile{}
	for _, p := range r.store {
		if p.Email == email {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryProfileRepository) FindByRole(ctx context.Context, role models.Role) ([]*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.UserProfile{}
	for _, p := range r.store {
		if p.Role == role {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryProfileRepository) List(ctx context.Context) ([]*models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.UserProfile{}
	for _, p := range r.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}
