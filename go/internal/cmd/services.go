package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/retrospekt/go/clients/retro_api_client"
	"github.com/mcdev12/retrospekt/go/internal/config"
	"github.com/mcdev12/retrospekt/go/internal/identity"
	"github.com/mcdev12/retrospekt/go/internal/push"
)

// Services is everything a command needs, built once from the config.
type Services struct {
	Config   config.Config
	API      *retro_api_client.RetroAPIClient
	Identity *identity.Store
}

func setupServices(cfg config.Config) (*Services, error) {
	api := retro_api_client.NewRetroAPIClient(cfg.APIURL)
	api.SetTimeout(cfg.HTTPTimeout)
	api.SetHeader("User-Agent", "retrospekt/"+version)

	store, err := identity.Open(cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	return &Services{
		Config:   cfg,
		API:      api,
		Identity: store,
	}, nil
}

// setupTransport builds the configured push transport. The returned func
// releases any shared connection.
func setupTransport(cfg config.Config) (push.Transport, func(), error) {
	switch cfg.PushTransport {
	case config.TransportSSE, "":
		sseConfig := push.DefaultSSEConfig(cfg.APIURL)
		sseConfig.ReconnectWait = cfg.ReconnectWait
		return push.NewSSETransport(sseConfig), func() {}, nil

	case config.TransportWebSocket:
		wsConfig := push.DefaultWebSocketConfig(cfg.PushBaseURL())
		wsConfig.ReconnectWait = cfg.ReconnectWait
		return push.NewWebSocketTransport(wsConfig), func() {}, nil

	case config.TransportNATS:
		natsConfig := push.DefaultNATSConfig()
		natsConfig.URL = cfg.NATSURL
		natsConfig.ReconnectWait = cfg.ReconnectWait
		natsConfig.StreamName = cfg.NATSStream

		transport, err := push.NewNATSTransport(natsConfig)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("url", cfg.NATSURL).Str("stream", cfg.NATSStream).Msg("connected to NATS")
		return transport, transport.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownTransport, cfg.PushTransport)
	}
}
