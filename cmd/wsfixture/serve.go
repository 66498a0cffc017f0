package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/balancerbattle/wsfixture/internal/config"
	"github.com/balancerbattle/wsfixture/internal/discovery"
	"github.com/balancerbattle/wsfixture/internal/logging"
	"github.com/balancerbattle/wsfixture/internal/server"
	"github.com/balancerbattle/wsfixture/internal/stats"
	"github.com/balancerbattle/wsfixture/internal/transport"
	"github.com/balancerbattle/wsfixture/internal/ui"
	"github.com/balancerbattle/wsfixture/internal/version"
)

// Serve command flags
var (
	configPath   string
	flavor       string
	host         string
	port         int
	certPath     string
	keyPath      string
	generateCert bool
	logLevel     string
	advertise    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the echo server",
	Long: `Start the WebSocket echo server on a single port.

The flavor selects the transport:
  http   plain HTTP/1.1 (default)
  https  TLS, HTTP/1.1 only
  spdy   TLS with the multiplexed HTTP/2 server enabled

Secure flavors read ssl/server.crt and ssl/server.key unless --cert/--key or
--generate-cert say otherwise. Failing to load them, or to bind the port,
exits with status 1.`,
	Example: `  # Plain server on port 8080
  wsfixture serve

  # TLS server selected through the environment
  FLAVOR=https wsfixture serve

  # Multiplexed TLS with a throwaway certificate
  wsfixture serve --flavor spdy --generate-cert

  # Settings from a file, announced on the LAN
  wsfixture serve --config fixture.yaml --advertise`,
	RunE: runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&flavor, "flavor", "", "Transport flavor: http, https or spdy (overrides $FLAVOR)")
	flags.StringVar(&host, "host", "", "Listen host (empty = all interfaces)")
	flags.IntVar(&port, "port", config.DefaultPort, "Listen port")
	flags.StringVar(&certPath, "cert", transport.DefaultCertPath, "Path to TLS certificate file")
	flags.StringVar(&keyPath, "key", transport.DefaultKeyPath, "Path to TLS private key file")
	flags.BoolVar(&generateCert, "generate-cert", false, "Use an in-memory self-signed certificate instead of files")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&advertise, "advertise", false, "Announce the server over mDNS")
}

// loadConfig merges file, environment and explicitly set flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("flavor") {
		cfg.Flavor = flavor
	}
	if flags.Changed("host") {
		cfg.Host = host
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("cert") {
		cfg.CertPath = certPath
	}
	if flags.Changed("key") {
		cfg.KeyPath = keyPath
	}
	if flags.Changed("generate-cert") {
		cfg.GenerateCert = generateCert
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("advertise") {
		cfg.Advertise = advertise
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logging.Sync()

	agg := stats.New()
	out := ui.NewPrinter(os.Stdout)

	// startup failures still end with the statistics block
	fail := func(err error) error {
		logging.Error("Startup failed", zap.Error(err))
		ui.NewPrinter(os.Stderr).StartupError(err)
		out.Report(agg.Finalize())
		return reportedError{err}
	}

	sel, err := transport.Select(cfg.Flavor, cfg.CredentialProvider())
	if err != nil {
		return fail(err)
	}

	srv := server.New(server.Config{Host: cfg.Host, Port: cfg.Port}, sel, agg)
	if err := srv.Listen(); err != nil {
		return fail(err)
	}

	out.Banner(bannerInfo(cfg, sel, srv))

	if cfg.Advertise {
		adv, err := discovery.Advertise(discovery.Announcement{
			Flavor:  sel.Flavor.String(),
			Secure:  sel.Flavor.Secure(),
			Port:    boundPort(srv),
			Version: version.Version,
		})
		if err != nil {
			logging.Warn("mDNS announcement failed, continuing without it", zap.Error(err))
		} else {
			defer adv.Shutdown()
		}
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = srv.Run(ctx)
	out.Report(agg.Finalize())
	return err
}

func bannerInfo(cfg *config.Config, sel *transport.Selection, srv *server.Server) ui.BannerInfo {
	info := ui.BannerInfo{
		Flavor:  sel.Flavor.String(),
		Port:    boundPort(srv),
		Address: srv.Addr().String(),
		Secure:  sel.Flavor.Secure(),
		Version: version.Version,
	}
	if sel.Flavor.Secure() {
		if cfg.GenerateCert {
			info.Credentials = "generated (in-memory)"
		} else {
			info.Credentials = cfg.CertPath
		}
	}
	return info
}

// boundPort is the port actually bound, which differs from the configured
// one when the configuration asked for port 0
func boundPort(srv *server.Server) int {
	if addr, ok := srv.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}
