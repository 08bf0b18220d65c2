package clients

import (
	"context"
	"fmt"
	"time"
)

// RemoteCatalogClient defines the operations this service needs from the
// external catalog/order platform. All calls block until the remote responds;
// they are the only suspension points of the sync pipeline.
type RemoteCatalogClient interface {
	// TestConnection verifies the connection is working
	TestConnection(ctx context.Context) error

	// GetProductByCode queries the remote catalog by product code and
	// returns nil when no product carries the code.
	GetProductByCode(ctx context.Context, code string) (*RemoteProduct, error)

	// CreateProduct submits one creation payload covering the base product
	// and all of its variant stubs, and returns the assigned remote
	// identifier. A response without an identifier is an error, not a
	// silent no-op.
	CreateProduct(ctx context.Context, req *CreateProductRequest) (string, error)

	// GetProductWithVariants fetches the created product expanded with its
	// variant records.
	GetProductWithVariants(ctx context.Context, remoteID string) (*RemoteProduct, error)
}

// CreateProductRequest is the typed creation payload. It is built by the
// orchestrator's payload builder, keeping the remote schema out of the
// internal domain types.
type CreateProductRequest struct {
	Name          string   `json:"name"`
	Code          string   `json:"code"`
	ListPrice     float64  `json:"listPrice"`
	PurchasePrice float64  `json:"purchasePrice"`
	Images        []string `json:"images,omitempty"`

	AttributeLines []AttributeLine `json:"attributeLines,omitempty"`
	VariantStubs   []VariantStub   `json:"variants,omitempty"`
}

// AttributeLine declares one axis of variation on the remote product
type AttributeLine struct {
	AttributeName string   `json:"attributeName"`
	ValueNames    []string `json:"valueNames"`
}

// VariantStub describes one variant to create under the base product
type VariantStub struct {
	Code        string   `json:"code,omitempty"`
	Name        string   `json:"name"`
	VariantText string   `json:"variantText,omitempty"`
	ValueNames  []string `json:"valueNames,omitempty"`
	ListPrice   float64  `json:"listPrice"`
}

// RemoteProduct represents a product as the remote catalog reports it
type RemoteProduct struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	ListPrice float64         `json:"listPrice"`
	Variants  []RemoteVariant `json:"variants,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// RemoteVariant represents a variant record assigned by the remote catalog
type RemoteVariant struct {
	ID         string   `json:"id"`
	ProductID  string   `json:"productId"`
	Code       string   `json:"code,omitempty"`
	Name       string   `json:"name"`
	ValueNames []string `json:"valueNames,omitempty"`
	Position   int      `json:"position"`
}

// RemoteTransportError wraps network or HTTP failures talking to the remote
// catalog. It is recorded per group and never aborts the batch.
type RemoteTransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteTransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote catalog %s failed with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("remote catalog %s failed: %v", e.Op, e.Err)
}

func (e *RemoteTransportError) Unwrap() error {
	return e.Err
}

// RemoteDuplicateError is returned when the remote catalog already holds a
// product with the submitted code. Not retried; the user must pick a new code.
type RemoteDuplicateError struct {
	Code       string
	RemoteID   string
	RemoteName string
}

func (e *RemoteDuplicateError) Error() string {
	return fmt.Sprintf("product code %s already exists remotely as %q (id %s)", e.Code, e.RemoteName, e.RemoteID)
}
