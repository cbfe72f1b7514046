package service

import (
	"context"
	"fmt"

	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
)

// CatalogStore is the read-only reference data: genres and MPA ratings.
type CatalogStore interface {
	repository.GenreRepository
	repository.MpaRepository
}

// CatalogService serves the seeded genres and MPA ratings.
type CatalogService struct {
	store CatalogStore
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) Genres(ctx context.Context) ([]model.Genre, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing genres: %w", err)
	}
	return genres, nil
}

func (s *CatalogService) Genre(ctx context.Context, id int64) (*model.Genre, error) {
	return s.store.GetGenre(ctx, id)
}

func (s *CatalogService) MpaRatings(ctx context.Context) ([]model.Mpa, error) {
	ratings, err := s.store.ListMpa(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing mpa ratings: %w", err)
	}
	return ratings, nil
}

func (s *CatalogService) Mpa(ctx context.Context, id int64) (*model.Mpa, error) {
	return s.store.GetMpa(ctx, id)
}
