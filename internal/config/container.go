package config

import (
	"statement-reader/internal/domain"
	"statement-reader/internal/service"
	"statement-reader/pkg/logger"
	"statement-reader/pkg/metrics"
)

// Container holds all application dependencies
type Container struct {
	Config     domain.Config
	Logger     domain.Logger
	Metrics    *metrics.Metrics
	Extractor  domain.StatementExtractor
	Inspector  domain.DocumentInspector
	Summarizer domain.StatementSummarizer
	Exporter   domain.StatementExporter
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return NewContainerWithConfig(NewConfig())
}

// NewContainerWithConfig wires the services around an existing configuration.
func NewContainerWithConfig(config domain.Config) *Container {
	appLogger := logger.NewLogger(config.GetLogLevel(), config.GetLogFormat())

	settings := service.DefaultTableSettings().WithSnapTolerance(config.GetSnapTolerance())
	extractor := service.NewStatementExtractor(
		config.GetTableColumns(),
		settings,
		config.GetPageErrorPolicy(),
		appLogger,
	)

	return &Container{
		Config:     config,
		Logger:     appLogger,
		Metrics:    metrics.New(),
		Extractor:  extractor,
		Inspector:  service.NewPDFInspector(appLogger),
		Summarizer: service.NewStatementSummarizer(config.GetCurrency()),
		Exporter:   service.NewStatementExporter(appLogger),
	}
}
