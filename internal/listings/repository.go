package listings

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gearshare-backend/pkg/db"
	"github.com/angelmondragon/gearshare-backend/pkg/db/models"
	"github.com/angelmondragon/gearshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
)

const notFoundMessage = "service not found"

// Query is the normalized listing filter handed to the repository.
type Query struct {
	Category enums.ServiceCategory
	Search   string
}

// Repository persists services.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, svc *models.Service) error {
	return db.MapError(r.db.WithContext(ctx).Omit("Owner").Create(svc).Error, notFoundMessage)
}

func (r *Repository) Update(ctx context.Context, svc *models.Service) error {
	return db.MapError(r.db.WithContext(ctx).Omit("Owner").Save(svc).Error, notFoundMessage)
}

// Delete removes the service; bookings against it cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Service{}, "id = ?", id)
	if res.Error != nil {
		return db.MapError(res.Error, notFoundMessage)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	if err := r.db.WithContext(ctx).Preload("Owner").First(&svc, "id = ?", id).Error; err != nil {
		return nil, db.MapError(err, notFoundMessage)
	}
	return &svc, nil
}

// List returns every service matching q, newest first.
func (r *Repository) List(ctx context.Context, q Query) ([]models.Service, error) {
	tx := r.db.WithContext(ctx).Model(&models.Service{}).Preload("Owner")
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + escapeLike(models.FoldSearch(search)) + "%"
		tx = tx.Where(`search_text LIKE ? ESCAPE '\'`, pattern)
	}

	var rows []models.Service
	if err := tx.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, db.MapError(err, notFoundMessage)
	}
	return rows, nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Service, error) {
	var rows []models.Service
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, db.MapError(err, notFoundMessage)
	}
	return rows, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
