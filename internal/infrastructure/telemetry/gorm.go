package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// InstrumentGorm traces every statement of db on tp. Query arguments are
// left out of the spans since they carry customer data.
func InstrumentGorm(db *gorm.DB, tp trace.TracerProvider, driver string) error {
	dbName := driver
	if driver == "postgres" {
		dbName = "postgresql"
	}
	plugin := otelgorm.NewPlugin(
		otelgorm.WithTracerProvider(tp),
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return fmt.Errorf("failed to register gorm tracing: %w", err)
	}
	return nil
}
