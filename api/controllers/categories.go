package controllers

import (
	"context"
	"net/http"

	"github.com/techhub-commerce/admin-gateway/api/middleware"
	"github.com/techhub-commerce/admin-gateway/api/responses"
	"github.com/techhub-commerce/admin-gateway/pkg/catalog"
	"github.com/techhub-commerce/admin-gateway/pkg/logger"
)

// CategoryLister is the slice of the catalog client the form needs.
type CategoryLister interface {
	ListCategories(ctx context.Context, bearer string) ([]catalog.Category, error)
}

// ListCategories fetches the category options for the product form. A lookup
// failure degrades to an empty list: the form stays usable and the draft can
// still be edited, it just cannot name a category until the platform recovers.
func ListCategories(lister CategoryLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		categories, err := lister.ListCategories(ctx, middleware.BearerFromContext(ctx))
		if err != nil {
			if logg != nil {
				logg.Warn(ctx, "category lookup failed; serving empty list")
			}
			categories = []catalog.Category{}
		}
		if categories == nil {
			categories = []catalog.Category{}
		}
		responses.WriteSuccess(w, categories)
	}
}
