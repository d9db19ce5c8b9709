package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/wdlgo/internal/config"
	"github.com/specialistvlad/wdlgo/internal/router"
)

// newRouter builds the client behind the `action` natives. The returned
// release function must be called once the order has finished.
func (a *App) newRouter(ctx context.Context) (router.Client, func(), error) {
	rc := a.model.Router
	a.logger.Debug("Selecting router transport.", "transport", rc.Transport)

	switch rc.Transport {
	case config.TransportNone:
		return router.StaticClient{Status: router.Done}, func() {}, nil

	case config.TransportPrompt:
		if a.cfg.Stdin == nil {
			return nil, nil, errors.New("the prompt router needs an input reader")
		}
		out := a.cfg.Prompt
		if out == nil {
			out = a.outW
		}
		return router.NewPromptClient(a.cfg.Stdin, out), func() {}, nil

	case config.TransportSocketIO:
		client, err := router.DialSocketIO(ctx, router.SocketIOOptions{
			URL:                rc.URL,
			Namespace:          rc.Namespace,
			InsecureSkipVerify: rc.InsecureSkipVerify,
			Timeout:            rc.Timeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to router: %w", err)
		}
		return client, client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown router transport %q", rc.Transport)
	}
}
