package service

import (
	"context"
	"strings"

	"github.com/pulse-crm/crm-api/internal/analytics"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ProductService struct {
	productRepo *repository.ProductRepository
	dealRepo    *repository.DealRepository
	scope       *repository.ScopeResolver
	logger      *zap.Logger
}

func NewProductService(
	productRepo *repository.ProductRepository,
	dealRepo *repository.DealRepository,
	scope *repository.ScopeResolver,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		dealRepo:    dealRepo,
		scope:       scope,
		logger:      logger,
	}
}

func (s *ProductService) load(ctx context.Context, id int64) (*domain.Product, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get product")
	}
	if err := ownedByCompany(ctx, s.scope, user.CompanyID, product.CreatedBy); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.ProductDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	product := &domain.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		CreatedBy:   user.ProfileID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, wrap(err, "create product")
	}
	s.logger.Info("product created", zap.Int64("product_id", product.ID))
	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) List(ctx context.Context) ([]domain.ProductDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list products")
	}
	return mapper.ToProductDTOs(products), nil
}

func (s *ProductService) Update(ctx context.Context, id int64, req *domain.UpdateProductRequest) (*domain.ProductDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.UnitPrice != nil {
		fields["unit_price"] = *req.UnitPrice
	}
	if len(fields) > 0 {
		if err := s.productRepo.Update(ctx, id, fields); err != nil {
			return nil, wrap(err, "update product")
		}
		s.logger.Info("product updated", zap.Int64("product_id", id))
	}
	return s.GetByID(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return wrap(err, "delete product")
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// Analytics reports product totals and the best sellers by closed_won revenue
func (s *ProductService) Analytics(ctx context.Context) (*domain.ProductAnalyticsDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	var (
		products []domain.Product
		deals    []domain.Deal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.productRepo.ListByCompany(gctx, user.CompanyID)
		return wrap(err, "list products")
	})
	g.Go(func() error {
		var err error
		deals, err = s.dealRepo.ListByCompany(gctx, user.CompanyID)
		return wrap(err, "list deals")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := analytics.ProductAnalytics(products, deals)
	return &result, nil
}
