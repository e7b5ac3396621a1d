package controllers

import (
	"net/http"

	"github.com/angelmondragon/gearshare-backend/api/responses"
	"github.com/angelmondragon/gearshare-backend/api/validators"
	"github.com/angelmondragon/gearshare-backend/internal/listings"
	"github.com/angelmondragon/gearshare-backend/internal/media"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
)

const (
	imageField     = "file"
	maxSearchQuery = 200
)

func ServiceList(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "listing service")
			return
		}
		filter := listings.Filter{
			Category: validators.QueryString(r, "category", 0),
			Search:   validators.QueryString(r, "search", maxSearchQuery),
		}
		items, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func ServiceDetail(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "listing service")
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ServicesByOwner(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "listing service")
			return
		}
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}
		ownerID, err := validators.PathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListByOwner(r.Context(), identity, ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ServiceCreate accepts the multipart listing form; the image is required.
func ServiceCreate(svc listings.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "listing service")
			return
		}
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}
		form, err := validators.ParseMultipart(w, r, imageField, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), identity, serviceInputFromForm(form), assetFromForm(form))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ServiceUpdate accepts the same form as create; without a file the current image is kept.
func ServiceUpdate(svc listings.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "listing service")
			return
		}
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		form, err := validators.ParseMultipart(w, r, imageField, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), identity, id, serviceInputFromForm(form), assetFromForm(form))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ServiceDelete(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "listing service")
			return
		}
		identity, ok := requireIdentity(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), identity, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "service deleted"})
	}
}

func serviceInputFromForm(form *validators.MultipartForm) listings.ServiceInput {
	return listings.ServiceInput{
		Name:          form.Value("name"),
		Description:   form.Value("description"),
		Category:      form.Value("category"),
		PricePerDay:   form.Value("pricePerDay"),
		DiscountPrice: form.Value("discountPrice"),
		Quantity:      form.Value("quantity"),
		AvailableFrom: form.Value("availableFrom"),
		AvailableTo:   form.Value("availableTo"),
	}
}

func assetFromForm(form *validators.MultipartForm) *media.Asset {
	if form.File == nil {
		return nil
	}
	return &media.Asset{
		FileName:    form.File.Name,
		ContentType: form.File.ContentType,
		Data:        form.File.Data,
	}
}
