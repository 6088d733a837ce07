package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// RegisterGORM attaches the otelgorm plugin so every query becomes a child
// span of the request. Query variables are never recorded: ledger rows carry
// member identifiers and amounts.
func (p *Provider) RegisterGORM(db *gorm.DB) error {
	if !p.Enabled() {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}
	p.logger.Info("Database tracing enabled")
	return nil
}
