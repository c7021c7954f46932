package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed seeds/categories.yaml
var defaultCategories []byte

type seedEntry struct {
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type seedFile struct {
	Expense []seedEntry `yaml:"expense"`
	Income  []seedEntry `yaml:"income"`
}

// DefaultCategories returns the shared categories shipped with the binary.
func DefaultCategories() ([]models.Category, error) {
	var file seedFile
	if err := yaml.Unmarshal(defaultCategories, &file); err != nil {
		return nil, fmt.Errorf("parse category seeds: %w", err)
	}

	var out []models.Category
	for _, e := range file.Expense {
		out = append(out, models.Category{Name: e.Name, Type: models.Expense, Icon: e.Icon})
	}
	for _, e := range file.Income {
		out = append(out, models.Category{Name: e.Name, Type: models.Income, Icon: e.Icon})
	}
	return out, nil
}

// SeedCategories inserts any default shared category that does not exist
// yet and reports how many were added.
func (s *Store) SeedCategories(ctx context.Context) (int, error) {
	defaults, err := DefaultCategories()
	if err != nil {
		return 0, err
	}

	added := 0
	err = s.WithTx(ctx, func(q Querier) error {
		for _, c := range defaults {
			// uuid.Nil never owns categories, so only shared rows can match.
			existing, err := q.FindCategory(ctx, uuid.Nil, c.Name, c.Type)
			if err == nil && existing.IsShared() {
				continue
			}
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			c := c
			if err := q.CreateCategory(ctx, &c); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	return added, nil
}
