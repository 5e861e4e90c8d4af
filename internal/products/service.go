package products

import (
	"context"
	"fmt"
	"strconv"

	"github.com/palengke-app/palengke/internal/audit"
)

// Service coordinates product catalog operations.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
}

// NewService returns a product service.
func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new active product.
func (s *Service) Create(ctx context.Context, req CreateProductRequest, actorID int64) (*Product, error) {
	id, err := s.repo.Create(ctx, Product{
		SKU:      req.SKU,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
		ImageURL: req.ImageURL,
		IsActive: true,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "product.create", id)
	return s.repo.Get(ctx, id)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest, actorID int64) (*Product, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.record(ctx, actorID, "product.update", id)
	return s.repo.Get(ctx, id)
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, "product.delete", id)
	return nil
}

// SetActive flips availability for the given products.
func (s *Service) SetActive(ctx context.Context, ids []int64, active bool, actorID int64) error {
	for _, id := range ids {
		if err := s.repo.Update(ctx, id, map[string]any{"is_active": active}); err != nil {
			return fmt.Errorf("set product %d active=%t: %w", id, active, err)
		}
		s.record(ctx, actorID, "product.set_active", id)
	}
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "product",
		EntityID: strconv.FormatInt(id, 10),
	})
}
