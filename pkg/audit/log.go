package audit

import "github.com/trussle/collector/pkg/models"

// Log represents an audit log of settlements that have occurred.
type Log interface {

	// Append a transaction to the log
	Append(models.Transaction) error
}
