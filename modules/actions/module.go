// Package actions provides the `action` natives that hand physical work to
// the router: pickup, drop and drive.
package actions

import (
	"context"
	"reflect"
	"strings"

	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/internal/router"
)

// Name is the native module name used in programs.
const Name = "action"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers pickup, drop and drive.
func (m *Module) Register(r *registry.Registry) {
	for _, action := range []router.Action{router.Pickup, router.Drop, router.Drive} {
		r.Register(Name, strings.ToLower(string(action)), &registry.Handler{
			Params: []registry.Param{
				{Name: "target", Kind: registry.KindStruct, Target: reflect.TypeOf(router.Target{})},
				{Name: "env", Kind: registry.KindEnv},
			},
			Fn: perform(action),
		})
	}
}

// perform returns the native for one router action. It answers with the
// router status as a string, "done" or "no_station_left".
func perform(action router.Action) registry.Func {
	return func(ctx context.Context, args registry.Args) (any, error) {
		target := registry.Decoded[router.Target](args, 0)
		env := args.Env(1)
		logger := ctxlog.FromContext(ctx).With("action", string(action))

		logger.Info("Sending action to router", "target", target.String())
		status, err := router.Do(ctx, env.Router(), action, *target)
		if err != nil {
			logger.Error("Router action failed", "error", err)
			return nil, evalerr.Fatalf("router %s failed: %v", strings.ToLower(string(action)), err)
		}
		logger.Debug("Router action finished.", "status", status.String())
		return status.String(), nil
	}
}
