package core

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("gtrends/scrapers/trends/core")
var meter = otel.Meter("gtrends/scrapers/trends/core")

var downloadCounter, _ = meter.Int64Counter(
	"trends.reports_downloaded",
	metric.WithDescription("The number of raw reports downloaded."),
)
