package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/retrospekt/go/internal/config"
	"github.com/mcdev12/retrospekt/go/internal/push"
	"github.com/mcdev12/retrospekt/go/internal/relay"
)

var (
	relayListen string
	relayNATS   bool
)

var relayCmd = &cobra.Command{
	Use:   "relay <session-id>...",
	Short: "Republish session snapshots onto NATS and websockets",
	Long: `Relay follows sessions over the server's event stream and republishes
every snapshot. By default snapshots go to retro.sessions.<id> on NATS;
with nats_stream set they go to a JetStream stream that keeps the latest
snapshot per session.

With --listen (or relay_listen) the relay also serves
/api/v1/sessions/<id>/ws, so clients using the websocket transport can
point push_url at it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRelay,
}

func init() {
	relayCmd.Flags().StringVar(&relayListen, "listen", "", "Address to serve websocket subscribers on (default relay_listen)")
	relayCmd.Flags().BoolVar(&relayNATS, "nats", true, "Publish snapshots to NATS")
}

func runRelay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := services.Config
	listen := cfg.RelayListen
	if cmd.Flags().Changed("listen") {
		listen = relayListen
	}
	if !relayNATS && listen == "" {
		return fmt.Errorf("nothing to relay to: enable --nats or set --listen")
	}

	// The relay is the websocket producer, so it always reads the server's SSE stream.
	sourceConfig := cfg
	sourceConfig.PushTransport = config.TransportSSE
	source, closeSource, err := setupTransport(sourceConfig)
	if err != nil {
		return err
	}
	defer closeSource()

	var outputs relay.Fanout

	if relayNATS {
		natsConfig := push.DefaultNATSConfig()
		natsConfig.URL = cfg.NATSURL
		natsConfig.Name = "retrospekt-relay"
		natsConfig.ReconnectWait = cfg.ReconnectWait

		nc, err := push.ConnectNATS(natsConfig)
		if err != nil {
			return err
		}
		defer nc.Close()

		publisher := relay.NewNATSPublisher(nc)
		if cfg.NATSStream != "" {
			if err := publisher.WithStream(ctx, cfg.NATSStream); err != nil {
				return err
			}
		}
		outputs = append(outputs, publisher)
	}

	var hub *relay.Hub
	if listen != "" {
		hub = relay.NewHub(relay.DefaultHubConfig())
		hub.Track(args...)
		defer hub.Close()
		outputs = append(outputs, hub)
	}

	var publisher relay.Publisher = outputs
	if len(outputs) == 1 {
		publisher = outputs[0]
	}
	r := relay.New(source, publisher, relay.DefaultConfig())

	if hub != nil {
		ln, err := net.Listen("tcp", listen)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", listen, err)
		}

		srv := newRelayServer(hub, r)
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("relay server failed")
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("relay server shutdown")
			}
		}()

		log.Info().Str("addr", ln.Addr().String()).Msg("serving websocket subscribers")
	}

	if err := r.Start(ctx, args...); err != nil {
		return err
	}
	defer r.Stop()

	log.Info().Strs("sessions", args).Bool("nats", relayNATS).Str("nats_url", cfg.NATSURL).Msg("relaying snapshots")
	<-ctx.Done()

	stats := r.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "forwarded %d, dropped %d, failed %d\n", stats.Forwarded, stats.Dropped, stats.Failed)
	return nil
}

type relayStatsResponse struct {
	Forwarded   int64 `json:"forwarded"`
	Dropped     int64 `json:"dropped"`
	Failed      int64 `json:"failed"`
	Subscribers int   `json:"subscribers"`
}

// newRelayServer serves the hub behind CORS, with h2c so plain-text HTTP/2
// clients can reach it too.
func newRelayServer(hub *relay.Hub, r *relay.Relay) *http.Server {
	mux := http.NewServeMux()
	hub.RegisterRoutes(mux)
	mux.HandleFunc("GET /relay/stats", func(w http.ResponseWriter, _ *http.Request) {
		s := r.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(relayStatsResponse{
			Forwarded:   s.Forwarded,
			Dropped:     s.Dropped,
			Failed:      s.Failed,
			Subscribers: hub.Subscribers(),
		})
	})

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodHead, http.MethodGet},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	return &http.Server{
		Handler:           h2c.NewHandler(c.Handler(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
