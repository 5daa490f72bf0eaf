package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/timeclock/internal/domain"
	"github.com/alexanderramin/timeclock/internal/repository"
)

// ErrInvalidWorksite is returned when a worksite fails validation.
var ErrInvalidWorksite = errors.New("invalid worksite")

type worksiteService struct {
	sites    repository.WorksiteRepo
	observer UseCaseObserver
	now      func() time.Time
	newID    func() string
}

// NewWorksiteService creates the worksite registry service.
func NewWorksiteService(sites repository.WorksiteRepo, observers ...UseCaseObserver) WorksiteService {
	return &worksiteService{
		sites:    sites,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (s *worksiteService) Create(ctx context.Context, w *domain.Worksite) (err error) {
	start := s.now()
	defer func() { observe(ctx, s.observer, "site.create", start, err, map[string]any{"name": w.Name}) }()

	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidWorksite)
	}
	if w.Latitude < -90 || w.Latitude > 90 || w.Longitude < -180 || w.Longitude > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidWorksite)
	}
	if w.RadiusMeters < 0 {
		return fmt.Errorf("%w: radius must not be negative", ErrInvalidWorksite)
	}

	if _, err := s.sites.GetByName(ctx, w.Name); err == nil {
		return fmt.Errorf("%w: a worksite named %q already exists", ErrInvalidWorksite, w.Name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if w.ID == "" {
		w.ID = s.newID()
	}
	now := s.now()
	w.CreatedAt = now
	w.UpdatedAt = now
	return s.sites.Create(ctx, w)
}

func (s *worksiteService) GetByID(ctx context.Context, id string) (*domain.Worksite, error) {
	return s.sites.GetByID(ctx, id)
}

// Resolve looks a worksite up by ID first, then by name.
func (s *worksiteService) Resolve(ctx context.Context, idOrName string) (*domain.Worksite, error) {
	site, err := s.sites.GetByID(ctx, idOrName)
	if err == nil {
		return site, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	site, err = s.sites.GetByName(ctx, idOrName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("worksite %q: %w", idOrName, repository.ErrNotFound)
		}
		return nil, err
	}
	return site, nil
}

func (s *worksiteService) List(ctx context.Context) ([]*domain.Worksite, error) {
	return s.sites.List(ctx)
}

func (s *worksiteService) Delete(ctx context.Context, id string) (err error) {
	start := s.now()
	defer func() { observe(ctx, s.observer, "site.delete", start, err, map[string]any{"id": id}) }()

	site, err := s.Resolve(ctx, id)
	if err != nil {
		return err
	}
	return s.sites.Delete(ctx, site.ID)
}
