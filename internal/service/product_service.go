package service

import (
	"context"
	"time"

	"github.com/paybridge-next/internal/cache"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/models"
	"github.com/paybridge-next/internal/repository"
)

const (
	productListCacheKey = "product:list"
	productListCacheTTL = 30 * time.Second
)

// ProductService 商品查询
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// List 列出全部商品，短缓存降低轮询压力
func (s *ProductService) List() ([]models.Product, error) {
	ctx := context.Background()
	var cached []models.Product
	if hit, err := cache.GetJSON(ctx, productListCacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	products, err := s.productRepo.List()
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, productListCacheKey, products, productListCacheTTL); err != nil {
		logger.Warnw("product_list_cache_set_failed", "error", err)
	}
	return products, nil
}

// GetByID 查询商品
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	return s.productRepo.GetByID(id)
}

// Create 创建商品并清理列表缓存
func (s *ProductService) Create(product *models.Product) error {
	if err := s.productRepo.Create(product); err != nil {
		return err
	}
	if err := cache.Del(context.Background(), productListCacheKey); err != nil {
		logger.Warnw("product_list_cache_del_failed", "error", err)
	}
	return nil
}
