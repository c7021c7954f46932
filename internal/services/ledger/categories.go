package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/store"
	"github.com/google/uuid"
)

func (s *Service) ListCategories(ctx context.Context, userID uuid.UUID, typ models.TransactionType) ([]models.Category, error) {
	return s.db.ListCategories(ctx, userID, typ)
}

// CreateCategory adds a personal category unless a shared or personal one
// with the same name and type already exists.
func (s *Service) CreateCategory(ctx context.Context, userID uuid.UUID, name string, typ models.TransactionType, icon string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, ErrNameRequired
	}
	if !typ.Valid() {
		return models.Category{}, ErrInvalidType
	}

	var created models.Category
	err := s.db.WithTx(ctx, func(q store.Querier) error {
		_, err := q.FindCategory(ctx, userID, name, typ)
		if err == nil {
			return ErrCategoryExists
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		created = models.Category{
			UserID: uuid.NullUUID{UUID: userID, Valid: true},
			Name:   name,
			Type:   typ,
			Icon:   strings.TrimSpace(icon),
		}
		return q.CreateCategory(ctx, &created)
	})
	return created, err
}

// DeleteCategory removes one of the user's own, unused categories.
func (s *Service) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(q store.Querier) error {
		c, err := q.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		if c.IsShared() || c.UserID.UUID != userID {
			return ErrNotFound
		}
		n, err := q.CountCategoryTransactions(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrInUse
		}
		return q.DeleteCategory(ctx, userID, id)
	})
}

func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, error) {
	return s.db.ListTransactions(ctx, userID, filter)
}

func (s *Service) GetTransaction(ctx context.Context, userID, id uuid.UUID) (models.Transaction, error) {
	return s.db.GetTransaction(ctx, userID, id)
}
