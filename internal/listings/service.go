package listings

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/gearshare-backend/internal/media"
	pkgAuth "github.com/angelmondragon/gearshare-backend/pkg/auth"
	"github.com/angelmondragon/gearshare-backend/pkg/db/models"
	"github.com/angelmondragon/gearshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
	"github.com/angelmondragon/gearshare-backend/pkg/validate"
)

// Service is the listing registry.
type Service interface {
	Create(ctx context.Context, owner pkgAuth.Identity, input ServiceInput, image *media.Asset) (*ServiceDTO, error)
	Update(ctx context.Context, owner pkgAuth.Identity, id uuid.UUID, input ServiceInput, image *media.Asset) (*ServiceDTO, error)
	Delete(ctx context.Context, owner pkgAuth.Identity, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ServiceDTO, error)
	List(ctx context.Context, filter Filter) ([]ServiceDTO, error)
	ListByOwner(ctx context.Context, caller pkgAuth.Identity, ownerID uuid.UUID) ([]ServiceDTO, error)
}

type repository interface {
	Create(ctx context.Context, svc *models.Service) error
	Update(ctx context.Context, svc *models.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	List(ctx context.Context, q Query) ([]models.Service, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Service, error)
}

type ServiceParams struct {
	Repo   repository
	Media  media.Relay
	Logger *logger.Logger
}

type service struct {
	repo  repository
	media media.Relay
	logg  *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Media == nil {
		return nil, fmt.Errorf("media relay required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: params.Repo, media: params.Media, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, owner pkgAuth.Identity, input ServiceInput, image *media.Asset) (*ServiceDTO, error) {
	if owner.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var v validate.Errors
	f := validateInput(&v, input)
	if image == nil {
		v.Add("image", "image is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	// upload failure aborts before anything is persisted
	url, err := s.media.Accept(ctx, *image)
	if err != nil {
		return nil, err
	}

	row := &models.Service{OwnerID: owner.UserID, ImageURL: url}
	f.apply(row)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "service_id", row.ID.String()), "listings.created")
	return s.reload(ctx, row.ID)
}

func (s *service) Update(ctx context.Context, owner pkgAuth.Identity, id uuid.UUID, input ServiceInput, image *media.Asset) (*ServiceDTO, error) {
	row, err := s.loadOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	var v validate.Errors
	f := validateInput(&v, input)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if image != nil {
		url, err := s.media.Accept(ctx, *image)
		if err != nil {
			return nil, err
		}
		row.ImageURL = url
	}

	f.apply(row)
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "service_id", row.ID.String()), "listings.updated")
	return s.reload(ctx, row.ID)
}

func (s *service) Delete(ctx context.Context, owner pkgAuth.Identity, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "service_id", id.String()), "listings.deleted")
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ServiceDTO, error) {
	return s.reload(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]ServiceDTO, error) {
	q := Query{Search: strings.TrimSpace(filter.Search)}

	category := strings.TrimSpace(filter.Category)
	if category != "" && !strings.EqualFold(category, enums.CategoryFilterAll) {
		parsed, err := enums.ParseServiceCategory(category)
		if err != nil {
			var v validate.Errors
			v.Add("category", "unknown category "+category)
			return nil, v.Err()
		}
		q.Category = parsed
	}

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return fromModels(rows), nil
}

func (s *service) ListByOwner(ctx context.Context, caller pkgAuth.Identity, ownerID uuid.UUID) ([]ServiceDTO, error) {
	if caller.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if caller.UserID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "services can only be listed by their owner")
	}
	rows, err := s.repo.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return fromModels(rows), nil
}

func (s *service) loadOwned(ctx context.Context, owner pkgAuth.Identity, id uuid.UUID) (*models.Service, error) {
	if owner.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.OwnerID != owner.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can modify this service")
	}
	return row, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*ServiceDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(row)
	return &dto, nil
}

func validateInput(v *validate.Errors, in ServiceInput) fields {
	var f fields
	f.name = v.Required("name", in.Name)
	f.description = v.Required("description", in.Description)

	if category := v.Required("category", in.Category); category != "" {
		parsed, err := enums.ParseServiceCategory(category)
		if err != nil {
			v.Add("category", "category must be one of "+categoryList())
		}
		f.category = parsed
	}

	f.pricePerDay = v.PositiveDecimal("pricePerDay", in.PricePerDay)
	f.discountPrice = v.OptionalPositiveDecimal("discountPrice", in.DiscountPrice)
	f.quantity = v.MinInt("quantity", in.Quantity, 1)

	from, okFrom := v.Date("availableFrom", in.AvailableFrom)
	to, okTo := v.Date("availableTo", in.AvailableTo)
	if okFrom && okTo && from.After(to) {
		v.Add("availableTo", "availableTo must not be before availableFrom")
	}
	f.availableFrom = from
	f.availableTo = to
	return f
}

func categoryList() string {
	all := enums.ServiceCategories()
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}
