package app

import (
	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/modules/actions"
	"github.com/specialistvlad/wdlgo/modules/channels"
	"github.com/specialistvlad/wdlgo/modules/debug"
	"github.com/specialistvlad/wdlgo/modules/env_vars"
	"github.com/specialistvlad/wdlgo/modules/http_client"
	"github.com/specialistvlad/wdlgo/modules/logging"
	"github.com/specialistvlad/wdlgo/modules/order"
	"github.com/specialistvlad/wdlgo/modules/regex"
	"github.com/specialistvlad/wdlgo/modules/timer"
)

// coreModules is the definitive list of all native modules that are compiled
// into the wdl binary.
var coreModules = []registry.Module{
	&actions.Module{},
	&channels.Module{},
	&debug.Module{},
	&env_vars.Module{},
	&http_client.Module{},
	&logging.Module{},
	&order.Module{},
	&regex.Module{},
	&timer.Module{},
}
