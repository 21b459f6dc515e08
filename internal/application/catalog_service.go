package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/davitren/storefront/internal/domain/entity"
	"github.com/davitren/storefront/internal/domain/repository"
	"github.com/davitren/storefront/pkg/apperr"
	"github.com/davitren/storefront/pkg/pagination"
)

// ImageStore persists product images. Upload returns the public URL of the
// stored object; Delete takes that same URL back.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

// CatalogService covers product CRUD (owner-scoped), paginated listing, and
// the Elasticsearch product index kept in step with every write.
type CatalogService struct {
	Repo    repository.ProductRepository
	Images  ImageStore
	ES      *elasticsearch.Client
	ESIndex string
	Logger  *logrus.Logger
}

func NewCatalogService(repo repository.ProductRepository, images ImageStore, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		Repo:    repo,
		Images:  images,
		ES:      es,
		ESIndex: esIndex,
		Logger:  logger,
	}
}

// ProductInput carries the validated form fields for create and edit.
type ProductInput struct {
	Title       string
	Price       decimal.Decimal
	Description string
}

// ImageUpload is an uploaded product image to store alongside the record.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// List returns one public catalog page plus its pagination metadata.
func (s *CatalogService) List(ctx context.Context, page int) ([]entity.Product, pagination.Meta, error) {
	w := pagination.NewWindow(page, pagination.DefaultPageSize)
	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, pagination.Meta{}, apperr.Internal(err)
	}
	products, err := s.Repo.List(ctx, w.Offset, w.Limit)
	if err != nil {
		return nil, pagination.Meta{}, apperr.Internal(err)
	}
	return products, w.Meta(total), nil
}

// ListByOwner returns one page of the requesting account's own products.
func (s *CatalogService) ListByOwner(ctx context.Context, ownerID string, page int) ([]entity.Product, pagination.Meta, error) {
	w := pagination.NewWindow(page, pagination.DefaultPageSize)
	total, err := s.Repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, pagination.Meta{}, apperr.Internal(err)
	}
	products, err := s.Repo.ListByOwner(ctx, ownerID, w.Offset, w.Limit)
	if err != nil {
		return nil, pagination.Meta{}, apperr.Internal(err)
	}
	return products, w.Meta(total), nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// Create stores a new product owned by ownerID. The image is uploaded
// first so a failed upload never leaves a record without its image.
func (s *CatalogService) Create(ctx context.Context, ownerID string, in ProductInput, img *ImageUpload) (*entity.Product, error) {
	if img == nil || img.Reader == nil {
		return nil, apperr.Validation("attached file is not an image", map[string]string{"image": "is required"})
	}
	imageURL, err := s.uploadImage(ctx, ownerID, img)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	p := &entity.Product{
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		ImageURL:    imageURL,
		OwnerID:     ownerID,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, apperr.Internal(err)
	}
	s.indexProduct(ctx, p)
	return p, nil
}

// Update edits a product. Only the owner may edit; replacing the image
// deletes the previous stored object.
func (s *CatalogService) Update(ctx context.Context, ownerID, id string, in ProductInput, img *ImageUpload) (*entity.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, apperr.Forbidden("not the owner of this product")
	}

	p.Title = in.Title
	p.Price = in.Price
	p.Description = in.Description

	oldImageURL := ""
	if img != nil && img.Reader != nil {
		imageURL, err := s.uploadImage(ctx, ownerID, img)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		oldImageURL = p.ImageURL
		p.ImageURL = imageURL
	}

	if err := s.Repo.Update(ctx, p); err != nil {
		// The record keeps pointing at the old image, so the fresh
		// upload is the orphan and has to go.
		if oldImageURL != "" {
			s.deleteImage(ctx, p.ImageURL)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Internal(err)
	}
	if oldImageURL != "" {
		s.deleteImage(ctx, oldImageURL)
	}
	s.indexProduct(ctx, p)
	return p, nil
}

// Delete removes an owned product along with its stored image and search
// document.
func (s *CatalogService) Delete(ctx context.Context, ownerID, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != ownerID {
		return apperr.Forbidden("not the owner of this product")
	}
	if err := s.Repo.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("product not found")
		}
		return apperr.Internal(err)
	}
	s.deleteImage(ctx, p.ImageURL)
	s.removeFromIndex(ctx, id)
	return nil
}

func (s *CatalogService) uploadImage(ctx context.Context, ownerID string, img *ImageUpload) (string, error) {
	if s.Images == nil {
		return "", errors.New("image store not configured")
	}
	ext := strings.ToLower(filepath.Ext(img.Filename))
	objectPath := filepath.ToSlash(filepath.Join("products", ownerID, uuid.NewString()+ext))
	return s.Images.Upload(ctx, objectPath, img.ContentType, img.Reader)
}

func (s *CatalogService) deleteImage(ctx context.Context, imageURL string) {
	if s.Images == nil || imageURL == "" {
		return
	}
	if err := s.Images.Delete(ctx, imageURL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("image_url", imageURL).Warn("image delete failed")
	}
}

func (s *CatalogService) indexProduct(ctx context.Context, p *entity.Product) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          p.ID,
		"title":       p.Title,
		"price":       p.Price.String(),
		"description": p.Description,
		"image_url":   p.ImageURL,
		"owner_id":    p.OwnerID,
		"updated_at":  p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
}

func (s *CatalogService) removeFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search runs a multi_match query over title and description.
func (s *CatalogService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
