package web

import (
	"context"

	"github.com/vanlist/van-builder-scraper/storage"
	"github.com/vanlist/van-builder-scraper/vanscrape"
)

type Service struct {
	repo storage.Repository
}

func NewService(repo storage.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) All(ctx context.Context) ([]vanscrape.BuilderRecord, error) {
	return s.repo.Select(ctx, storage.SelectParams{})
}

func (s *Service) ByState(ctx context.Context, state string) ([]vanscrape.BuilderRecord, error) {
	return s.repo.Select(ctx, storage.SelectParams{State: state})
}

func (s *Service) Search(ctx context.Context, query string) ([]vanscrape.BuilderRecord, error) {
	return s.repo.Select(ctx, storage.SelectParams{Query: query})
}
