package tenniscourt

import (
	"context"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"

	"go.viam.com/rdk/resource"
	"go.viam.com/utils/trace"
)

// family is the model namespace every court vision resource registers under.
var family = resource.ModelNamespace("tennis").WithFamily("court-vision")

func init() {
	exporter, err := otlptracegrpc.New(context.Background())
	if err == nil {
		trace.AddExporters(exporter)
	}
}
