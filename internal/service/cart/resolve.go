package cart

import (
	"context"
	"errors"
	"fmt"

	"ecofinds-api/internal/domain"
	"golang.org/x/sync/errgroup"
)

// resolve joins items with their current catalog records. Products that no
// longer exist leave the line's Product nil.
func (s *Service) resolve(ctx context.Context, items []domain.CartItem) ([]domain.CartLine, error) {
	lines := make([]domain.CartLine, len(items))
	if len(items) == 0 {
		return lines, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookupLimit)

	for i, item := range items {
		i, item := i, item
		lines[i].Item = item
		g.Go(func() error {
			p, err := s.catalog.GetByID(gctx, item.ProductID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil
				}
				return fmt.Errorf("resolve product %s: %w", item.ProductID, err)
			}
			lines[i].Product = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}
