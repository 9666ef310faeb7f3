package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/feed_shop/internal/events"
	"github.com/Skotchmaster/feed_shop/internal/models"
	"github.com/Skotchmaster/feed_shop/internal/repo"
	"github.com/Skotchmaster/feed_shop/internal/transport"
	"github.com/Skotchmaster/feed_shop/internal/util"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

// ProductIndex is the optional full-text index kept in sync with the catalog.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  ProductIndex
}

type SearchResult struct {
	Total int64
	Page  int
	Size  int
	Items []models.Product
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "Name is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return invalid("description", "Description is required")
	}
	if p.Price.IsNegative() {
		return invalid("price", "Price cannot be negative")
	}
	if p.Price.Overflows() {
		return invalid("price", "Price must not exceed "+models.MaxMoney.String())
	}
	if p.Discount < 0 || p.Discount > 100 {
		return invalid("discount", "Discount must be between 0 and 100")
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Price == nil {
		return nil, invalid("price", "price is required")
	}
	prod := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       models.NewMoney(*req.Price),
		ImageURL:    req.ImageURL,
		Category:    req.Category,
	}
	if req.Discount != nil {
		prod.Discount = *req.Discount
	}
	if err := validateProduct(prod); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.indexProduct(ctx, prod)
	s.publish(ctx, "product_created", prod.ID, map[string]any{"productID": prod.ID, "name": prod.Name})
	return prod, nil
}

// Update merges the supplied fields into the stored product and validates the result.
func (s *CatalogService) Update(ctx context.Context, id uint, req transport.UpdateProductRequest) (*models.Product, error) {
	prod, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		prod.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		prod.Price = models.NewMoney(*req.Price)
	}
	if req.Discount != nil {
		prod.Discount = *req.Discount
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}
	if req.Category != nil {
		prod.Category = req.Category
	}
	if err := validateProduct(prod); err != nil {
		return nil, err
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.indexProduct(ctx, prod)
	s.publish(ctx, "product_updated", prod.ID, map[string]any{"productID": prod.ID, "name": prod.Name})
	return prod, nil
}

// Delete removes the product. Order items that reference it keep their own snapshot.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_delete_error", "product_id", id, "error", err)
		}
	}
	s.publish(ctx, "product_deleted", id, map[string]any{"productID": id})
	return nil
}

func (s *CatalogService) Search(ctx context.Context, q string, page, size int) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	offset, limit := util.Calculate(page, size)
	res := &SearchResult{Page: offset/limit + 1, Size: limit, Items: []models.Product{}}
	if q == "" {
		return res, nil
	}

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.productsInOrder(ctx, ids)
			if err != nil {
				return nil, err
			}
			res.Total, res.Items = total, items
			return res, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	res.Total, res.Items = total, items
	return res, nil
}

func (s *CatalogService) productsInOrder(ctx context.Context, ids []uint) ([]models.Product, error) {
	found, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SeedDefaults fills an empty catalog with the starter products.
func (s *CatalogService) SeedDefaults(ctx context.Context) error {
	n, err := s.Repo.CountProducts(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	feed, supplements := "Feed", "Supplements"
	defaults := []models.Product{
		{
			Name:        "Premium Cattle Pellets",
			Description: "High quality pellets for maximum nutrition",
			Price:       models.MustMoney("500.00"),
			ImageURL:    "/images/products.png",
			Category:    &feed,
		},
		{
			Name:        "Mineral Lick Block",
			Description: "Essential minerals for cattle health",
			Price:       models.MustMoney("250.00"),
			ImageURL:    "/images/products.png",
			Category:    &supplements,
		},
	}
	for i := range defaults {
		if err := s.Repo.CreateProduct(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("seed product %q: %w", defaults[i].Name, err)
		}
		s.indexProduct(ctx, &defaults[i])
	}
	logging.FromContext(ctx).Info("catalog_seeded", "count", len(defaults))
	return nil
}

func (s *CatalogService) indexProduct(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) publish(ctx context.Context, typ string, id uint, payload map[string]any) {
	events.Emit(ctx, s.Events, events.TopicProduct, strconv.FormatUint(uint64(id), 10), typ, payload)
}
