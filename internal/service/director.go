package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/filmorate/internal/apperror"
	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/repository"
	"github.com/sakif/filmorate/internal/validation"
)

type DirectorService struct {
	directors repository.DirectorRepository
	logger    *slog.Logger
}

func NewDirectorService(directors repository.DirectorRepository, logger *slog.Logger) *DirectorService {
	return &DirectorService{directors: directors, logger: logger}
}

func validateDirector(director *model.Director) error {
	if err := validation.Struct(director); err != nil {
		return err
	}
	director.Name = strings.TrimSpace(director.Name)
	if director.Name == "" {
		return apperror.ValidationFailed("name", "name must not be blank")
	}
	return nil
}

func (s *DirectorService) Create(ctx context.Context, director *model.Director) (*model.Director, error) {
	if err := validateDirector(director); err != nil {
		return nil, err
	}
	director.ID = 0
	if err := s.directors.CreateDirector(ctx, director); err != nil {
		s.logger.Error("failed to create director", slog.String("name", director.Name), errAttr(err))
		return nil, fmt.Errorf("creating director: %w", err)
	}
	s.logger.Info("director created", slog.Int64("director_id", director.ID), slog.String("name", director.Name))
	return director, nil
}

func (s *DirectorService) Update(ctx context.Context, director *model.Director) (*model.Director, error) {
	if err := validateDirector(director); err != nil {
		return nil, err
	}
	if err := s.directors.UpdateDirector(ctx, director); err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("failed to update director", slog.Int64("director_id", director.ID), errAttr(err))
		return nil, fmt.Errorf("updating director: %w", err)
	}
	s.logger.Info("director updated", slog.Int64("director_id", director.ID))
	return director, nil
}

func (s *DirectorService) Get(ctx context.Context, id int64) (*model.Director, error) {
	return s.directors.GetDirector(ctx, id)
}

func (s *DirectorService) List(ctx context.Context) ([]model.Director, error) {
	directors, err := s.directors.ListDirectors(ctx)
	if err != nil {
		s.logger.Error("failed to list directors", errAttr(err))
		return nil, fmt.Errorf("listing directors: %w", err)
	}
	return directors, nil
}

// Delete removes the director. Its films stay in the catalog without it.
func (s *DirectorService) Delete(ctx context.Context, id int64) error {
	if err := s.directors.DeleteDirector(ctx, id); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		s.logger.Error("failed to delete director", slog.Int64("director_id", id), errAttr(err))
		return fmt.Errorf("deleting director: %w", err)
	}
	s.logger.Info("director deleted", slog.Int64("director_id", id))
	return nil
}
