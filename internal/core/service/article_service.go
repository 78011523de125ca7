package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/core/availability"
	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/core/mirror"
	"github.com/rl1809/warehouse/internal/port"
)

// ArticleService owns the articles mirror. It is the only writer of article
// stock on the client side, and every value it writes comes from the server.
type ArticleService struct {
	client   port.InventoryClient
	articles *mirror.Mirror[domain.Article]
	notifier port.Notifier
	logger   *zap.Logger
}

func NewArticleService(client port.InventoryClient, notifier port.Notifier, logger *zap.Logger) *ArticleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArticleService{
		client:   client,
		articles: mirror.New[domain.Article](),
		notifier: notifier,
		logger:   logger,
	}
}

func (s *ArticleService) LoadArticles(ctx context.Context) error {
	if err := s.articles.Load(ctx, s.client.ListArticles); err != nil {
		s.logger.Error("error fetching articles", zap.Error(err))
		return fmt.Errorf("fetch articles: %w", err)
	}
	s.logger.Info("articles loaded", zap.Int("count", s.articles.Len()))
	return nil
}

func (s *ArticleService) CreateArticle(ctx context.Context, fields domain.ArticleFields) (domain.Article, error) {
	article, err := s.client.CreateArticle(ctx, fields)
	if err != nil {
		s.logger.Error("error creating article", zap.Error(err))
		return domain.Article{}, fmt.Errorf("create article: %w", err)
	}
	s.articles.ApplyCreated(article)
	return article, nil
}

func (s *ArticleService) UpdateArticle(ctx context.Context, id string, fields domain.ArticleFields) (domain.Article, error) {
	article, err := s.client.UpdateArticle(ctx, id, fields)
	if err != nil {
		s.logger.Error("error updating article", zap.String("article_id", id), zap.Error(err))
		return domain.Article{}, fmt.Errorf("update article %s: %w", id, err)
	}
	if !s.articles.ApplyUpdated(id, article) {
		s.logger.Warn("updated article is not mirrored", zap.String("article_id", id))
	}
	return article, nil
}

// DeductStock submits a bulk stock decrement and mirrors the articles the
// server reports as changed. A failure is surfaced to the user since the
// warehouse may now disagree with recorded sales.
func (s *ArticleService) DeductStock(ctx context.Context, deductions []domain.StockDeduction) ([]domain.Article, error) {
	changed, err := s.client.BulkUpdateArticles(ctx, deductions)
	if err != nil {
		alert(ctx, s.notifier, domain.NotificationWarehouseNotUpdated, domain.MessageWarehouseNotUpdated)
		s.logger.Error("error updating articles", zap.Any("deductions", deductions), zap.Error(err))
		return nil, fmt.Errorf("deduct stock: %w", err)
	}
	s.articles.ApplyUpdatedMany(changed)
	return changed, nil
}

func (s *ArticleService) DeleteArticle(ctx context.Context, id string) error {
	if err := s.client.DeleteArticle(ctx, id); err != nil {
		s.logger.Error("error deleting article", zap.String("article_id", id), zap.Error(err))
		return fmt.Errorf("delete article %s: %w", id, err)
	}
	s.articles.ApplyDeleted(id)
	return nil
}

func (s *ArticleService) Articles() []domain.Article {
	return s.articles.Items()
}

// ArticlesByID indexes the current mirror. It is rebuilt on every call.
func (s *ArticleService) ArticlesByID() map[string]domain.Article {
	return availability.IndexArticles(s.articles.Items())
}

func (s *ArticleService) Article(id string) (domain.Article, error) {
	a, ok := s.articles.Get(id)
	if !ok {
		return domain.Article{}, fmt.Errorf("%w: %s", domain.ErrArticleNotFound, id)
	}
	return a, nil
}

func (s *ArticleService) IsArticlesDataFetching() bool {
	return s.articles.IsLoading()
}

func (s *ArticleService) loaded() bool {
	return s.articles.Loaded()
}
