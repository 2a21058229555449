package credentials

import "go.opentelemetry.io/otel"

const scopeName = "github.com/parley-ai/parley-core/core/credentials"

var tracer = otel.Tracer(scopeName)
