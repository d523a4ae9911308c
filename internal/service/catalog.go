package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/bloombouqet/bloom_shop/internal/logging"
	"github.com/bloombouqet/bloom_shop/internal/models"
	"github.com/bloombouqet/bloom_shop/internal/mykafka"
	"github.com/bloombouqet/bloom_shop/internal/repo"
	"github.com/bloombouqet/bloom_shop/internal/storage"
)

type CatalogService struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
	Images   storage.ObjectStore
	ES       *elasticsearch.Client
	ESIndex  string
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

type ProductInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	Stock       uint         `json:"stock"`
	CategoryID  uint         `json:"category_id"`
	Image       *ImageUpload `json:"-"`
}

type ProductPatch struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Price       *float64     `json:"price"`
	Stock       *uint        `json:"stock"`
	CategoryID  *uint        `json:"category_id"`
	Image       *ImageUpload `json:"-"`
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.Categories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	ve := newValidationError()
	if err := validation.Validate(name, validation.Required, validation.Length(1, 255)); err != nil {
		ve.add("name", err.Error())
	} else {
		taken, err := s.Repo.CategoryNameTaken(ctx, name)
		if err != nil {
			return nil, &PersistenceError{Op: "check category name", Err: err}
		}
		if taken {
			ve.add("name", "the name has already been taken")
		}
	}
	if !ve.empty() {
		return nil, ve
	}

	cat := &models.Category{Name: name}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, &PersistenceError{Op: "create category", Err: err}
	}

	s.publish(ctx, cat.ID, map[string]interface{}{
		"type":       "category_created",
		"categoryID": cat.ID,
		"name":       cat.Name,
	})

	return cat, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, id, map[string]interface{}{
		"type":       "category_deleted",
		"categoryID": id,
	})

	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, offset, limit)
}

func (in ProductInput) validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Price, validation.Min(0.0)),
		validation.Field(&in.CategoryID, validation.Required),
	)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	ve := newValidationError()
	ve.merge(in.validate())
	if in.CategoryID != 0 {
		exists, err := s.Repo.CategoryExists(ctx, in.CategoryID)
		if err != nil {
			return nil, &PersistenceError{Op: "check category", Err: err}
		}
		if !exists {
			ve.add("category_id", "the selected category does not exist")
		}
	}
	if !ve.empty() {
		return nil, ve
	}

	prod := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
	}

	if in.Image != nil {
		url, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		prod.ImageURL = url
	}

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, &PersistenceError{Op: "create product", Err: err}
	}

	s.publish(ctx, prod.ID, map[string]interface{}{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	s.indexProduct(ctx, prod)

	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	ve := newValidationError()
	if patch.Name != nil {
		if err := validation.Validate(*patch.Name, validation.Required, validation.Length(1, 255)); err != nil {
			ve.add("name", err.Error())
		}
	}
	if patch.Price != nil && *patch.Price < 0 {
		ve.add("price", "must be no less than 0")
	}
	if patch.CategoryID != nil {
		exists, err := s.Repo.CategoryExists(ctx, *patch.CategoryID)
		if err != nil {
			return nil, &PersistenceError{Op: "check category", Err: err}
		}
		if !exists {
			ve.add("category_id", "the selected category does not exist")
		}
	}
	if !ve.empty() {
		return nil, ve
	}

	if patch.Name != nil {
		prod.Name = *patch.Name
	}
	if patch.Description != nil {
		prod.Description = *patch.Description
	}
	if patch.Price != nil {
		prod.Price = *patch.Price
	}
	if patch.Stock != nil {
		prod.Stock = *patch.Stock
	}
	if patch.CategoryID != nil {
		prod.CategoryID = *patch.CategoryID
	}
	if patch.Image != nil {
		url, err := s.storeImage(ctx, patch.Image)
		if err != nil {
			return nil, err
		}
		prod.ImageURL = url
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, &PersistenceError{Op: "save product", Err: err}
	}

	s.publish(ctx, prod.ID, map[string]interface{}{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	s.indexProduct(ctx, prod)

	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, id, map[string]interface{}{
		"type":      "product_deleted",
		"productID": id,
	})
	s.removeFromIndex(ctx, id)

	return nil
}

func (s *CatalogService) storeImage(ctx context.Context, img *ImageUpload) (string, error) {
	if s.Images == nil {
		logging.FromContext(ctx).Warn("image upload skipped: no object store configured")
		return "", nil
	}
	url, err := s.Images.Upload(ctx, storage.ObjectKey(img.Filename), img.ContentType, img.Data)
	if err != nil {
		return "", fmt.Errorf("image upload: %w", err)
	}
	return url, nil
}

// indexProduct keeps the search index in sync, best effort. A failed index
// write never fails the request.
func (s *CatalogService) indexProduct(ctx context.Context, prod *models.Product) {
	if s.ES == nil {
		return
	}
	l := logging.FromContext(ctx)

	body, err := json.Marshal(prod)
	if err != nil {
		l.Error("es index error", "error", err)
		return
	}
	res, err := s.ES.Index(
		s.ESIndex,
		bytes.NewReader(body),
		s.ES.Index.WithDocumentID(fmt.Sprint(prod.ID)),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		l.Error("es index error", "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		l.Error("es index error", "status", res.Status())
	}
}

func (s *CatalogService) removeFromIndex(ctx context.Context, id uint) {
	if s.ES == nil {
		return
	}
	l := logging.FromContext(ctx)

	res, err := s.ES.Delete(s.ESIndex, fmt.Sprint(id), s.ES.Delete.WithContext(ctx))
	if err != nil {
		l.Error("es delete error", "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		l.Error("es delete error", "status", res.Status())
	}
}

func (s *CatalogService) publish(ctx context.Context, key uint, event map[string]interface{}) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, "product_events", fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
