package sitecmd

import (
	"errors"

	"github.com/pagemill/pagemill/internal/commands"
	"github.com/pagemill/pagemill/internal/generator"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring
// command handlers onto a dispatcher or CLI registry.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the site command handlers produced by RegisterSiteCommands.
type HandlerSet struct {
	Build *BuildSiteHandler
	Diff  *DiffSiteHandler
	Clean *CleanSiteHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	buildHandlerOpts []commands.HandlerOption[BuildSiteCommand]
	diffHandlerOpts  []commands.HandlerOption[DiffSiteCommand]
	cleanHandlerOpts []commands.HandlerOption[CleanSiteCommand]
}

// WithBuildHandlerOptions forwards options to the BuildSiteHandler constructor.
func WithBuildHandlerOptions(opts ...commands.HandlerOption[BuildSiteCommand]) Option {
	return func(cfg *options) {
		cfg.buildHandlerOpts = append(cfg.buildHandlerOpts, opts...)
	}
}

// WithDiffHandlerOptions forwards options to the DiffSiteHandler constructor.
func WithDiffHandlerOptions(opts ...commands.HandlerOption[DiffSiteCommand]) Option {
	return func(cfg *options) {
		cfg.diffHandlerOpts = append(cfg.diffHandlerOpts, opts...)
	}
}

// WithCleanHandlerOptions forwards options to the CleanSiteHandler constructor.
func WithCleanHandlerOptions(opts ...commands.HandlerOption[CleanSiteCommand]) Option {
	return func(cfg *options) {
		cfg.cleanHandlerOpts = append(cfg.cleanHandlerOpts, opts...)
	}
}

// RegisterSiteCommands builds the site command handlers and registers them
// with the provided registry. The constructed HandlerSet is returned so
// callers can wire additional integrations as needed.
func RegisterSiteCommands(reg CommandRegistry, service generator.Service, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("site command registration: generator service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "site")

	buildHandler := NewBuildSiteHandler(service, logger, cfg.buildHandlerOpts...)
	diffHandler := NewDiffSiteHandler(service, logger, cfg.diffHandlerOpts...)
	cleanHandler := NewCleanSiteHandler(service, logger, cfg.cleanHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(buildHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(diffHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(cleanHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Build: buildHandler,
		Diff:  diffHandler,
		Clean: cleanHandler,
	}, nil
}
