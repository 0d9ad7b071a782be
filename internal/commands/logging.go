package commands

import (
	"strings"

	"github.com/pagemill/pagemill/internal/logging"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

const commandModuleRoot = "pagemill.commands"

// CommandLogger returns a module-scoped logger for command handlers, enriched
// with structured fields so command executions stay filterable alongside the
// build pipeline's own entries.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
