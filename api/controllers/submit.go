package controllers

import (
	"net/http"

	"github.com/techhub-commerce/admin-gateway/api/middleware"
	"github.com/techhub-commerce/admin-gateway/api/responses"
	"github.com/techhub-commerce/admin-gateway/internal/sessions"
	"github.com/techhub-commerce/admin-gateway/pkg/logger"
)

type submitResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Status    string `json:"status,omitempty"`
}

// SubmitDraft runs the full submission attempt for a draft session. Failures
// come back as typed errors: validation details list every violation, upload
// errors carry the failing position, and submission errors surface the
// platform's own message.
func SubmitDraft(registry *sessions.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := resolveSession(registry, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDraftID(ctx, session.ID())
		}

		receipt, err := session.Submit(ctx, middleware.BearerFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(ctx, "product_id", receipt.ProductID), "product submitted")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, submitResponse{
			ProductID: receipt.ProductID,
			Name:      receipt.Name,
			Status:    receipt.Status,
		})
	}
}
