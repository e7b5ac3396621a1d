package enums

import (
	"fmt"
	"strings"
)

// ServiceCategory classifies a rentable item.
type ServiceCategory string

const (
	ServiceCategoryCamera      ServiceCategory = "camera"
	ServiceCategoryProjector   ServiceCategory = "projector"
	ServiceCategoryCampingGear ServiceCategory = "camping-gear"
	ServiceCategoryAudio       ServiceCategory = "audio"
	ServiceCategoryLighting    ServiceCategory = "lighting"
)

// CategoryFilterAll matches every category when listing services.
const CategoryFilterAll = "all"

var validServiceCategories = []ServiceCategory{
	ServiceCategoryCamera,
	ServiceCategoryProjector,
	ServiceCategoryCampingGear,
	ServiceCategoryAudio,
	ServiceCategoryLighting,
}

// String returns the literal string for the category.
func (c ServiceCategory) String() string {
	return string(c)
}

// IsValid reports whether the category is known.
func (c ServiceCategory) IsValid() bool {
	for _, candidate := range validServiceCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseServiceCategory converts raw input into a ServiceCategory.
func ParseServiceCategory(value string) (ServiceCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validServiceCategories {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service category %q", value)
}

// ServiceCategories returns every known category in display order.
func ServiceCategories() []ServiceCategory {
	out := make([]ServiceCategory, len(validServiceCategories))
	copy(out, validServiceCategories)
	return out
}
