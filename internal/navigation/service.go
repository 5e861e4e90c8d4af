package navigation

import (
	"context"
	"strconv"

	"github.com/palengke-app/palengke/internal/audit"
	"github.com/palengke-app/palengke/internal/table"
)

// Service manages the sidebar registry.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
}

// NewService returns a navigation service.
func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

// List returns all items in section/position order.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

// Sections returns active items grouped for sidebar rendering, preserving the
// repository's section/position order.
func (s *Service) Sections(ctx context.Context) ([]Section, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []Section
	index := map[string]int{}
	for _, it := range items {
		if !it.IsActive {
			continue
		}
		i, ok := index[it.Section]
		if !ok {
			i = len(out)
			index[it.Section] = i
			out = append(out, Section{Name: it.Section})
		}
		out[i].Items = append(out[i].Items, it)
	}
	return out, nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	return s.repo.Get(ctx, id)
}

// Create registers an item. Unknown icon names are accepted but logged by the
// table layer when the item is rendered.
func (s *Service) Create(ctx context.Context, req CreateItemRequest, actorID int64) (*Item, error) {
	icon := req.Icon
	if icon != "" && !table.KnownIcon(icon) {
		icon = ""
	}
	id, err := s.repo.Create(ctx, Item{
		Label:    req.Label,
		Icon:     icon,
		Path:     req.Path,
		Section:  req.Section,
		Position: req.Position,
		IsActive: true,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "navigation.create", id)
	return s.repo.Get(ctx, id)
}

// Update applies a partial item update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateItemRequest, actorID int64) (*Item, error) {
	updates := map[string]any{}
	if req.Label != nil {
		updates["label"] = *req.Label
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.Path != nil {
		updates["path"] = *req.Path
	}
	if req.Section != nil {
		updates["section"] = *req.Section
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "navigation.update", id)
	return s.repo.Get(ctx, id)
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, "navigation.delete", id)
	return nil
}

// SetActive toggles visibility for the given ids.
func (s *Service) SetActive(ctx context.Context, ids []int64, active bool, actorID int64) error {
	for _, id := range ids {
		if err := s.repo.Update(ctx, id, map[string]any{"is_active": active}); err != nil {
			return err
		}
		s.record(ctx, actorID, "navigation.set_active", id)
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
		Entity:   "navigation_item",
		EntityID: strconv.FormatInt(id, 10),
	})
}
