package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"catalog-sync-service/internal/clients"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UploadService moves newly defined products and their variants from
// local-only to remote-confirmed state: existence check, single creation call
// per product group, read-back, and reconciliation of assigned remote
// identifiers. Groups succeed or fail independently; the batch always
// completes with a summary.
type UploadService struct {
	orderRepo  repository.OrderRepositoryInterface
	uploadRepo repository.UploadRepositoryInterface
	attrRepo   repository.AttributeRepositoryInterface
	client     clients.RemoteCatalogClient
	groupDelay time.Duration
	logger     *logrus.Entry
}

// NewUploadService creates a new upload service. groupDelay is the fixed
// pause between consecutive group submissions, respecting remote rate limits.
func NewUploadService(
	orderRepo repository.OrderRepositoryInterface,
	uploadRepo repository.UploadRepositoryInterface,
	attrRepo repository.AttributeRepositoryInterface,
	client clients.RemoteCatalogClient,
	groupDelay time.Duration,
	logger *logrus.Logger,
) *UploadService {
	return &UploadService{
		orderRepo:  orderRepo,
		uploadRepo: uploadRepo,
		attrRepo:   attrRepo,
		client:     client,
		groupDelay: groupDelay,
		logger:     logger.WithField("component", "upload-service"),
	}
}

// ProductGroup is one base product plus the variant line items generated for
// it. All items of a group share the base product code.
type ProductGroup struct {
	BaseProductCode string
	Name            string
	ListPrice       float64
	PurchasePrice   float64
	Images          []string
	AttributeLines  []clients.AttributeLine
	Items           []models.PurchaseOrderItem

	// valueNamesByItem carries each item's own attribute value names for
	// the variant stubs.
	valueNamesByItem map[uuid.UUID][]string
}

// Simple reports whether the group is a plain non-varianted upload
func (g *ProductGroup) Simple() bool {
	return len(g.Items) == 1 && g.Items[0].VariantText == ""
}

// GroupResult is the outcome of one group's submission
type GroupResult struct {
	BaseProductCode string   `json:"baseProductCode"`
	Uploaded        bool     `json:"uploaded"`
	RemoteProductID string   `json:"remoteProductId,omitempty"`
	Matched         int      `json:"matched"`
	Missing         []string `json:"missing,omitempty"`
	Unexpected      []string `json:"unexpected,omitempty"`
	Warning         string   `json:"warning,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// BatchSummary is the aggregate result surfaced after every batch, regardless
// of how many groups failed
type BatchSummary struct {
	JobID          uuid.UUID     `json:"jobId"`
	SucceededCount int           `json:"succeededCount"`
	FailedCount    int           `json:"failedCount"`
	Groups         []GroupResult `json:"groups"`
}

// SubmitBatch uploads every unsynced product group of the order, strictly one
// group at a time with a fixed inter-group delay. Validation failures block
// the submission before any network call; remote failures are recorded per
// group and never abort the remaining groups.
func (s *UploadService) SubmitBatch(ctx context.Context, tenantID string, orderID uuid.UUID, createdBy string) (*BatchSummary, error) {
	order, err := s.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if order.TenantID != tenantID {
		return nil, fmt.Errorf("order does not belong to tenant")
	}

	items := make([]models.PurchaseOrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		if item.SyncStatus != models.SyncStatusSuccess {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return &BatchSummary{Groups: []GroupResult{}}, nil
	}

	if verrs := validateItems(items); len(verrs) > 0 {
		return nil, verrs
	}

	groups, err := s.buildGroups(ctx, items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &models.UploadJob{
		ID:          uuid.New(),
		OrderID:     orderID,
		TenantID:    tenantID,
		Status:      models.UploadStatusRunning,
		TotalGroups: len(groups),
		CreatedBy:   createdBy,
		StartedAt:   &now,
	}
	if err := s.uploadRepo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create upload job: %w", err)
	}

	summary := &BatchSummary{JobID: job.ID, Groups: make([]GroupResult, 0, len(groups))}

	for i, group := range groups {
		s.logEvent(ctx, job.ID, models.LogLevelInfo, "Submitting product group", models.JSONB{
			"baseProductCode": group.BaseProductCode,
			"variants":        len(group.Items),
		})

		s.markItems(ctx, group.Items, models.SyncStatusProcessing)

		result, err := s.submitGroup(ctx, group)
		if err != nil {
			result = &GroupResult{BaseProductCode: group.BaseProductCode, Error: err.Error()}
			summary.FailedCount++
			s.markItems(ctx, group.Items, models.SyncStatusFailed)
			s.logEvent(ctx, job.ID, models.LogLevelError, "Group upload failed", models.JSONB{
				"baseProductCode": group.BaseProductCode,
				"error":           err.Error(),
			})
		} else {
			summary.SucceededCount++
			if result.Warning != "" {
				s.logEvent(ctx, job.ID, models.LogLevelWarn, "Group uploaded with reconciliation warning", models.JSONB{
					"baseProductCode": group.BaseProductCode,
					"warning":         result.Warning,
				})
			}
		}
		summary.Groups = append(summary.Groups, *result)

		job.SucceededCount = summary.SucceededCount
		job.FailedCount = summary.FailedCount
		job.GroupResults = groupResultsToJSONB(summary.Groups)
		if err := s.uploadRepo.UpdateJob(ctx, job); err != nil {
			s.logger.WithError(err).Warn("Failed to persist upload job progress")
		}

		// Fixed pause between groups; the remote platform rate-limits
		// aggressively on bulk creation.
		if i < len(groups)-1 && s.groupDelay > 0 {
			select {
			case <-ctx.Done():
				job.Status = models.UploadStatusFailed
				job.ErrorMessage = ctx.Err().Error()
				_ = s.uploadRepo.UpdateJob(context.Background(), job)
				return summary, ctx.Err()
			case <-time.After(s.groupDelay):
			}
		}
	}

	job.Status = models.UploadStatusCompleted
	if summary.SucceededCount == 0 && summary.FailedCount > 0 {
		job.Status = models.UploadStatusFailed
	}
	if err := s.uploadRepo.UpdateJob(ctx, job); err != nil {
		s.logger.WithError(err).Warn("Failed to finalize upload job")
	}
	s.logEvent(ctx, job.ID, models.LogLevelInfo, "Batch completed", models.JSONB{
		"succeeded": summary.SucceededCount,
		"failed":    summary.FailedCount,
	})

	return summary, nil
}

// submitGroup runs the strictly ordered existence-check -> create ->
// read-back -> reconciliation pipeline for one product group
func (s *UploadService) submitGroup(ctx context.Context, group *ProductGroup) (*GroupResult, error) {
	existing, err := s.client.GetProductByCode(ctx, group.BaseProductCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &clients.RemoteDuplicateError{
			Code:       group.BaseProductCode,
			RemoteID:   existing.ID,
			RemoteName: existing.Name,
		}
	}

	remoteID, err := s.client.CreateProduct(ctx, buildCreateRequest(group))
	if err != nil {
		return nil, err
	}

	result := &GroupResult{
		BaseProductCode: group.BaseProductCode,
		Uploaded:        true,
		RemoteProductID: remoteID,
	}

	if group.Simple() {
		// No variants were declared, so there is no matching phase. The
		// single line simply takes the product's own remote identifier.
		item := group.Items[0]
		if remoteID != "" {
			if err := s.orderRepo.SetItemRemoteProduct(ctx, item.ID, remoteID); err != nil {
				s.logger.WithError(err).Warn("Failed to record remote product id")
			}
			result.Matched = 1
		} else {
			s.markItems(ctx, group.Items, models.SyncStatusPendingNoMatch)
		}
		return result, nil
	}

	readback, err := s.client.GetProductWithVariants(ctx, remoteID)
	if err != nil {
		// The product was created; only the confirmation read failed.
		// Items stay pending for a later matching pass instead of
		// failing a group that the remote side accepted.
		result.Warning = fmt.Sprintf("read-back failed: %v", err)
		s.assignPending(ctx, group.Items)
		return result, nil
	}

	matched, missing, unexpected := reconcileVariants(group.Items, readback.Variants)
	result.Matched = len(matched)
	result.Missing = missing
	result.Unexpected = unexpected

	for _, item := range group.Items {
		if variant, ok := matched[item.ID]; ok {
			if err := s.orderRepo.SetItemRemoteProduct(ctx, item.ID, variant.ID); err != nil {
				s.logger.WithError(err).Warn("Failed to record remote variant id")
			}
			continue
		}
		s.assignPending(ctx, []models.PurchaseOrderItem{item})
	}

	if len(missing) > 0 || len(unexpected) > 0 {
		mismatch := &ReconciliationMismatch{
			BaseProductCode: group.BaseProductCode,
			Missing:         missing,
			Unexpected:      unexpected,
		}
		result.Warning = mismatch.Error()
	}

	return result, nil
}

// reconcileVariants matches local line items against the remote read-back,
// primarily by exact code equality with a positional fallback for remote
// variants reported without a code. Every local item ends up matched or
// listed as missing; every unmatched remote variant is listed as unexpected.
func reconcileVariants(items []models.PurchaseOrderItem, remote []clients.RemoteVariant) (map[uuid.UUID]clients.RemoteVariant, []string, []string) {
	matched := make(map[uuid.UUID]clients.RemoteVariant, len(items))
	claimed := make([]bool, len(remote))

	byCode := make(map[string]int, len(remote))
	for i, v := range remote {
		if v.Code != "" {
			byCode[strings.ToUpper(v.Code)] = i
		}
	}

	var unmatchedItems []int
	for idx, item := range items {
		if i, ok := byCode[strings.ToUpper(item.ProductCode)]; ok && !claimed[i] {
			matched[item.ID] = remote[i]
			claimed[i] = true
			continue
		}
		unmatchedItems = append(unmatchedItems, idx)
	}

	// Positional fallback: pair remaining items with codeless remote
	// variants in the order they were submitted.
	next := 0
	for _, idx := range unmatchedItems {
		for next < len(remote) && (claimed[next] || remote[next].Code != "") {
			next++
		}
		if next >= len(remote) {
			break
		}
		matched[items[idx].ID] = remote[next]
		claimed[next] = true
	}

	var missing []string
	for _, item := range items {
		if _, ok := matched[item.ID]; !ok {
			missing = append(missing, fmt.Sprintf("%s (%s)", item.ProductCode, item.ProductName))
		}
	}

	var unexpected []string
	for i, v := range remote {
		if !claimed[i] {
			unexpected = append(unexpected, fmt.Sprintf("%s (%s)", v.Code, v.Name))
		}
	}

	return matched, missing, unexpected
}

// assignPending sets the post-creation status for items without a remote
// identifier: PENDING when a variant descriptor needs later matching,
// PENDING_NO_MATCH for plain uploads with no matching phase.
func (s *UploadService) assignPending(ctx context.Context, items []models.PurchaseOrderItem) {
	for _, item := range items {
		status := models.SyncStatusPendingNoMatch
		if item.VariantText != "" {
			status = models.SyncStatusPending
		}
		if err := s.orderRepo.UpdateItemSyncStatus(ctx, item.ID, status); err != nil {
			s.logger.WithError(err).Warn("Failed to update item sync status")
		}
	}
}

func (s *UploadService) markItems(ctx context.Context, items []models.PurchaseOrderItem, status models.SyncStatus) {
	for _, item := range items {
		if err := s.orderRepo.UpdateItemSyncStatus(ctx, item.ID, status); err != nil {
			s.logger.WithError(err).WithField("item", item.ID).Warn("Failed to update item sync status")
		}
	}
}

// validateItems checks the fields the remote platform requires before any
// network call is attempted
func validateItems(items []models.PurchaseOrderItem) ValidationErrors {
	var verrs ValidationErrors
	for _, item := range items {
		var missing []string
		if strings.TrimSpace(item.ProductName) == "" {
			missing = append(missing, "name")
		}
		if strings.TrimSpace(item.ProductCode) == "" {
			missing = append(missing, "code")
		}
		if item.SellingPrice <= 0 {
			missing = append(missing, "price")
		}
		if len(item.Images) == 0 {
			missing = append(missing, "images")
		}
		if len(missing) > 0 {
			verrs = append(verrs, &ValidationError{
				Position:      item.Position,
				ProductCode:   item.ProductCode,
				MissingFields: missing,
			})
		}
	}
	return verrs
}

// buildGroups partitions items by base product code, preserving first
// appearance order, and derives each group's attribute lines from the items'
// attribute value identifiers
func (s *UploadService) buildGroups(ctx context.Context, items []models.PurchaseOrderItem) ([]*ProductGroup, error) {
	var valueIDs []uuid.UUID
	seenValue := make(map[uuid.UUID]bool)
	for _, item := range items {
		for _, id := range item.AttributeValueIDs {
			if !seenValue[id] {
				seenValue[id] = true
				valueIDs = append(valueIDs, id)
			}
		}
	}

	values, err := s.attrRepo.GetValuesByIDs(ctx, valueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load attribute values: %w", err)
	}
	valueByID := make(map[uuid.UUID]models.AttributeValue, len(values))
	attrIDs := make([]uuid.UUID, 0)
	seenAttr := make(map[uuid.UUID]bool)
	for _, v := range values {
		valueByID[v.ID] = v
		if !seenAttr[v.AttributeID] {
			seenAttr[v.AttributeID] = true
			attrIDs = append(attrIDs, v.AttributeID)
		}
	}

	attrs, err := s.attrRepo.GetAttributesByIDs(ctx, attrIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load attribute definitions: %w", err)
	}
	attrByID := make(map[uuid.UUID]models.AttributeDefinition, len(attrs))
	for _, a := range attrs {
		attrByID[a.ID] = a
	}

	groupByCode := make(map[string]*ProductGroup)
	var codes []string
	for _, item := range items {
		group, ok := groupByCode[item.BaseProductCode]
		if !ok {
			group = &ProductGroup{
				BaseProductCode:  item.BaseProductCode,
				Name:             item.ProductName,
				ListPrice:        item.SellingPrice,
				PurchasePrice:    item.PurchasePrice,
				valueNamesByItem: make(map[uuid.UUID][]string),
			}
			groupByCode[item.BaseProductCode] = group
			codes = append(codes, item.BaseProductCode)
		}
		group.Items = append(group.Items, item)
		group.Images = appendUnique(group.Images, item.Images...)

		names := make([]string, 0, len(item.AttributeValueIDs))
		for _, id := range item.AttributeValueIDs {
			if v, ok := valueByID[id]; ok {
				names = append(names, v.Name)
			}
		}
		group.valueNamesByItem[item.ID] = names
	}

	groups := make([]*ProductGroup, 0, len(codes))
	for _, code := range codes {
		group := groupByCode[code]
		group.AttributeLines = buildAttributeLines(group.Items, valueByID, attrByID)
		groups = append(groups, group)
	}
	return groups, nil
}

// buildAttributeLines unions the group's selected values per attribute, in
// attribute declaration order
func buildAttributeLines(items []models.PurchaseOrderItem, valueByID map[uuid.UUID]models.AttributeValue, attrByID map[uuid.UUID]models.AttributeDefinition) []clients.AttributeLine {
	type lineAccum struct {
		attr  models.AttributeDefinition
		names []string
		seen  map[string]bool
	}
	accums := make(map[uuid.UUID]*lineAccum)
	var order []uuid.UUID

	for _, item := range items {
		for _, id := range item.AttributeValueIDs {
			v, ok := valueByID[id]
			if !ok {
				continue
			}
			attr, ok := attrByID[v.AttributeID]
			if !ok {
				continue
			}
			accum, ok := accums[attr.ID]
			if !ok {
				accum = &lineAccum{attr: attr, seen: make(map[string]bool)}
				accums[attr.ID] = accum
				order = append(order, attr.ID)
			}
			if !accum.seen[v.Name] {
				accum.seen[v.Name] = true
				accum.names = append(accum.names, v.Name)
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return accums[order[i]].attr.Sequence < accums[order[j]].attr.Sequence
	})

	lines := make([]clients.AttributeLine, 0, len(order))
	for _, id := range order {
		accum := accums[id]
		lines = append(lines, clients.AttributeLine{
			AttributeName: accum.attr.Name,
			ValueNames:    accum.names,
		})
	}
	return lines
}

// buildCreateRequest maps a product group to the remote platform's creation
// payload. One payload covers the base product and every variant stub; the
// call is atomic from the orchestrator's perspective.
func buildCreateRequest(group *ProductGroup) *clients.CreateProductRequest {
	req := &clients.CreateProductRequest{
		Name:           group.Name,
		Code:           group.BaseProductCode,
		ListPrice:      group.ListPrice,
		PurchasePrice:  group.PurchasePrice,
		Images:         group.Images,
		AttributeLines: group.AttributeLines,
	}

	if group.Simple() {
		return req
	}

	req.VariantStubs = make([]clients.VariantStub, 0, len(group.Items))
	for _, item := range group.Items {
		req.VariantStubs = append(req.VariantStubs, clients.VariantStub{
			Code:        item.ProductCode,
			Name:        item.ProductName,
			VariantText: item.VariantText,
			ValueNames:  group.valueNamesByItem[item.ID],
			ListPrice:   item.SellingPrice,
		})
	}
	return req
}

func (s *UploadService) logEvent(ctx context.Context, jobID uuid.UUID, level models.LogLevel, message string, data models.JSONB) {
	log := &models.UploadLog{
		ID:          uuid.New(),
		UploadJobID: jobID,
		Level:       level,
		Message:     message,
		Data:        data,
	}
	if err := s.uploadRepo.CreateLog(ctx, log); err != nil {
		s.logger.WithError(err).Debug("Failed to write upload log")
	}
}

func groupResultsToJSONB(results []GroupResult) models.JSONB {
	out := make(models.JSONB, len(results))
	for _, r := range results {
		out[r.BaseProductCode] = map[string]interface{}{
			"uploaded":        r.Uploaded,
			"remoteProductId": r.RemoteProductID,
			"matched":         r.Matched,
			"missing":         r.Missing,
			"unexpected":      r.Unexpected,
			"warning":         r.Warning,
			"error":           r.Error,
		}
	}
	return out
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range values {
		if v != "" && !seen[v] {
			seen[v] = true
			dst = append(dst, v)
		}
	}
	return dst
}
