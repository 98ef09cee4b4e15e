package interfaces

import "market-dashboard/src/models"

// -----------------------------------------------------------------------------
// IRenderRecorder journals completed render cycles. Nothing is read back into a render.
// -----------------------------------------------------------------------------

type IRenderRecorder interface {

	// Initialize sets up the schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// RecordRender appends one journal row.
	RecordRender(rec models.MRenderRecord) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes rows older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
