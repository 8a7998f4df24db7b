package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"real-estate-service/internal/domain"
	"real-estate-service/internal/observability"
)

var ErrPropertyNotFound = errors.New("property not found")

// PropertyContent is the mutable listing content. Moderation never goes
// through it; status changes are a separate operation.
type PropertyContent struct {
	Title       string
	Description string
	Price       int
	Address     string
	ImageURLs   domain.ImageURLList
}

// PropertyListQuery drives the public search and the admin listing. An empty
// Status means all statuses; a MinPrice or MaxPrice of zero or less means
// unbounded on that side.
type PropertyListQuery struct {
	PageRequest
	Status   domain.Status
	OwnerID  string
	Query    string
	MinPrice int
	MaxPrice int
}

type PropertyRepository interface {
	Create(property *domain.Property) error
	FindByID(id uint) (*domain.Property, error)
	UpdateContent(id uint, content PropertyContent, status domain.Status) error
	UpdateStatus(id uint, status domain.Status) error
	Delete(id uint) error
	ListByOwner(ownerID string) ([]domain.Property, error)
	ListPaged(q PropertyListQuery) (PageResult[domain.Property], error)
}

type GormPropertyRepository struct{ db *gorm.DB }

func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &GormPropertyRepository{db: db}
}

func (r *GormPropertyRepository) Create(property *domain.Property) error {
	if err := r.db.Create(property).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "property", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "property", "create", "success")
	return nil
}

func (r *GormPropertyRepository) FindByID(id uint) (*domain.Property, error) {
	var property domain.Property
	err := r.db.First(&property, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "property", "find_by_id", "not_found")
			return nil, ErrPropertyNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "property", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "property", "find_by_id", "success")
	return &property, nil
}

func (r *GormPropertyRepository) UpdateContent(id uint, content PropertyContent, status domain.Status) error {
	res := r.db.Model(&domain.Property{}).Where("id = ?", id).Updates(map[string]any{
		"title":       strings.TrimSpace(content.Title),
		"description": content.Description,
		"price":       content.Price,
		"address":     strings.TrimSpace(content.Address),
		"image_urls":  content.ImageURLs,
		"status":      status,
		"updated_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "property", "update_content", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "property", "update_content", "not_found")
		return ErrPropertyNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "property", "update_content", "success")
	return nil
}

// UpdateStatus is the moderation path: it touches status and updated_at only.
func (r *GormPropertyRepository) UpdateStatus(id uint, status domain.Status) error {
	res := r.db.Model(&domain.Property{}).Where("id = ?", id).Updates(map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "property", "update_status", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "property", "update_status", "not_found")
		return ErrPropertyNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "property", "update_status", "success")
	return nil
}

func (r *GormPropertyRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.Property{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "property", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "property", "delete", "not_found")
		return ErrPropertyNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "property", "delete", "success")
	return nil
}

func (r *GormPropertyRepository) ListByOwner(ownerID string) ([]domain.Property, error) {
	var properties []domain.Property
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at desc").Find(&properties).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "property", "list_by_owner", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "property", "list_by_owner", "success")
	return properties, nil
}

func (r *GormPropertyRepository) ListPaged(q PropertyListQuery) (PageResult[domain.Property], error) {
	page := normalizePageRequest(q.PageRequest)
	result := PageResult[domain.Property]{Page: page.Page, PageSize: page.PageSize}

	tx := r.db.Model(&domain.Property{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.OwnerID != "" {
		tx = tx.Where("owner_id = ?", q.OwnerID)
	}
	if term := strings.TrimSpace(q.Query); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(address) LIKE ?", pattern, pattern)
	}
	if q.MinPrice > 0 {
		tx = tx.Where("price >= ?", q.MinPrice)
	}
	if q.MaxPrice > 0 {
		tx = tx.Where("price <= ?", q.MaxPrice)
	}

	if err := tx.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "property", "list_paged", "error")
		return result, err
	}
	err := tx.Order("created_at desc").Order("id desc").
		Offset(page.offset()).Limit(page.PageSize).
		Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "property", "list_paged", "error")
		return result, err
	}
	result.TotalPages = calcTotalPages(result.Total, page.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "property", "list_paged", "success")
	return result, nil
}
