package submission

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/techhub-commerce/admin-gateway/internal/drafts"
	"github.com/techhub-commerce/admin-gateway/internal/staging"
	"github.com/techhub-commerce/admin-gateway/pkg/catalog"
	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
	"github.com/techhub-commerce/admin-gateway/pkg/logger"
	"github.com/techhub-commerce/admin-gateway/pkg/metrics"
)

// State is the orchestrator's position in the current submission attempt.
type State string

const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateUploadingMedia    State = "uploading_media"
	StateAssemblingPayload State = "assembling_payload"
	StateSubmitting        State = "submitting"
)

// Uploader pushes one file's bytes to object storage and returns its public
// URL. The implementation owns key generation; the orchestrator assumes
// nothing beyond uniqueness.
type Uploader interface {
	Upload(ctx context.Context, data []byte, suggestedName, contentType string) (string, error)
}

// ProductCreator persists an assembled product on the remote platform.
type ProductCreator interface {
	CreateProduct(ctx context.Context, payload catalog.CreateProductPayload, bearer string) (*catalog.CreatedProduct, error)
}

// UploadedMediaRecord is the confirmation for one successfully uploaded file.
// Records live only for the duration of a single attempt; a failed attempt
// discards them and a retry re-uploads.
type UploadedMediaRecord struct {
	URL       string
	MediaType string
	AltText   string
	SortOrder int
	IsPrimary bool
}

// Receipt reports a successful submission.
type Receipt struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Orchestrator drives one draft's submission: validate, upload media in
// staged order, assemble the payload, submit, then clear the staged set.
// Attempts are serialized by a re-entrancy guard, not cancellation: starting
// a new attempt while one is in flight fails with a state conflict.
type Orchestrator struct {
	staging  *staging.Manager
	uploader Uploader
	products ProductCreator
	logg     *logger.Logger
	metrics  *metrics.PipelineMetrics

	mu    sync.Mutex
	state State
}

func NewOrchestrator(stagingMgr *staging.Manager, uploader Uploader, products ProductCreator, logg *logger.Logger, pipelineMetrics *metrics.PipelineMetrics) (*Orchestrator, error) {
	if stagingMgr == nil {
		return nil, fmt.Errorf("staging manager required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product creator required")
	}
	return &Orchestrator{
		staging:  stagingMgr,
		uploader: uploader,
		products: products,
		logg:     logg,
		metrics:  pipelineMetrics,
		state:    StateIdle,
	}, nil
}

// State returns the current attempt phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submit runs one submission attempt for the draft using the caller's bearer
// credential. On success the staged set is cleared; on any failure it is left
// untouched so the user can retry without re-selecting images.
func (o *Orchestrator) Submit(ctx context.Context, draft *drafts.Draft, bearer string) (*Receipt, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.finish()

	receipt, err := o.run(ctx, draft, bearer)
	if err != nil {
		o.metrics.IncSubmission(outcomeFor(err))
		return nil, err
	}
	o.metrics.IncSubmission("success")
	return receipt, nil
}

func (o *Orchestrator) run(ctx context.Context, draft *drafts.Draft, bearer string) (*Receipt, error) {
	o.setState(StateValidating)
	if err := draft.Validate(o.staging.Len(), o.staging.MinImages()); err != nil {
		return nil, err
	}

	o.setState(StateUploadingMedia)
	records, err := o.uploadAll(ctx, draft)
	if err != nil {
		return nil, err
	}

	o.setState(StateAssemblingPayload)
	payload, err := buildPayload(draft, records)
	if err != nil {
		return nil, err
	}

	o.setState(StateSubmitting)
	created, err := o.products.CreateProduct(ctx, payload, bearer)
	if err != nil {
		if uploaded := len(records); uploaded > 0 && o.logg != nil {
			logCtx := o.logg.WithField(ctx, "orphaned_uploads", uploaded)
			o.logg.Warn(logCtx, "submission rejected after media upload; objects left in storage")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeSubmission, err, "create product")
	}

	o.staging.Clear()
	return &Receipt{ProductID: created.ID, Name: created.Name, Status: created.Status}, nil
}

// uploadAll walks the staged set strictly in position order and aborts the
// whole attempt on the first failure. Earlier uploads are not rolled back;
// the leak is logged and accepted.
func (o *Orchestrator) uploadAll(ctx context.Context, draft *drafts.Draft) ([]UploadedMediaRecord, error) {
	snapshot := o.staging.Snapshot()
	records := make([]UploadedMediaRecord, 0, len(snapshot))

	for index, image := range snapshot {
		data, err := staging.ReadAll(image.File)
		if err != nil {
			o.warnOrphans(ctx, index)
			return nil, pkgerrors.NewUpload(index, err, "invalid file")
		}

		start := time.Now()
		url, err := o.uploader.Upload(ctx, data, image.File.Name(), image.File.ContentType())
		if err != nil {
			o.metrics.ObserveUpload("failure", time.Since(start))
			o.warnOrphans(ctx, index)
			return nil, pkgerrors.NewUpload(index, err, "upload object")
		}
		o.metrics.ObserveUpload("success", time.Since(start))

		records = append(records, UploadedMediaRecord{
			URL:       url,
			MediaType: mediaTypeFor(image.File.ContentType()),
			AltText:   draft.Name,
			SortOrder: index,
			IsPrimary: index == 0,
		})
	}
	return records, nil
}

func (o *Orchestrator) warnOrphans(ctx context.Context, failedIndex int) {
	if failedIndex == 0 || o.logg == nil {
		return
	}
	logCtx := o.logg.WithFields(ctx, map[string]any{
		"failed_index":     failedIndex,
		"orphaned_uploads": failedIndex,
	})
	o.logg.Warn(logCtx, "upload phase aborted; earlier objects left in storage")
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "submission already in progress").
			WithDetails(map[string]any{"state": string(o.state)})
	}
	o.state = StateValidating
	return nil
}

func (o *Orchestrator) finish() {
	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}

func mediaTypeFor(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	return "image"
}

func outcomeFor(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return "error"
}
