package app

import (
	"github.com/vk/stepwave/internal/registry"
	"github.com/vk/stepwave/modules/env_vars"
	"github.com/vk/stepwave/modules/http_request"
	"github.com/vk/stepwave/modules/notify"
	"github.com/vk/stepwave/modules/print"
	"github.com/vk/stepwave/modules/shell"
)

// coreModules is the definitive list of all modules that are compiled into
// the stepwave binary.
var coreModules = []registry.Module{
	&env_vars.Module{},
	&http_request.Module{},
	&notify.Module{},
	&print.Module{},
	&shell.Module{},
}
