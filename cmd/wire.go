package cmd

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/pandalive/panda/internal/api"
	"github.com/pandalive/panda/internal/auth"
	"github.com/pandalive/panda/internal/demo"
	"github.com/pandalive/panda/internal/session"
	"github.com/pandalive/panda/internal/tui"
	"github.com/pandalive/panda/pkg/config"
	"github.com/pandalive/panda/pkg/stt"
)

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	holder   *auth.Holder
	speaker  *session.Speaker
	listener *session.Listener
	google   *auth.GoogleOAuth
	demoMode bool

	demoLn net.Listener
}

// wireApp builds the full client. When no backend is configured it
// starts the in-process demo backend on a loopback port and points the
// client at it, so demo mode runs the exact same code paths.
func wireApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := newLogger(cfg)
	demoMode := cfg.DemoMode()

	baseURL := cfg.API.BaseURL
	var demoLn net.Listener
	if demoMode {
		server := demo.NewServer("panda-demo-secret", logger)
		server.Seed()

		demoLn, err = net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, fmt.Errorf("start demo backend: %w", err)
		}
		go func() { _ = http.Serve(demoLn, server) }()
		baseURL = "http://" + demoLn.Addr().String()
		logger.Info("demo backend started", zap.String("addr", baseURL))
	}

	// The holder is assigned below; the token source resolves it late so
	// the gateway and the provider can share one client.
	var holder *auth.Holder
	client := api.New(baseURL,
		api.WithLogger(logger),
		api.WithToken(func() string {
			if holder == nil {
				return ""
			}
			return holder.Token()
		}),
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
	)

	var google *auth.GoogleOAuth
	if !demoMode && cfg.Identity.ClientID != "" {
		google = auth.NewGoogleOAuth(cfg.Identity.ClientID, cfg.Identity.ClientSecret, cfg.Identity.RedirectURL)
	}
	provider := auth.NewRestProvider(client, google, logger)

	// Demo sessions live only as long as the process; persisting a token
	// across restarts would resume against an empty backend.
	var creds *auth.CredentialStore
	if !demoMode {
		creds, err = auth.NewCredentialStore(cfg.Client.StateDir)
		if err != nil {
			logger.Warn("credential store unavailable", zap.Error(err))
		}
	}
	holder = auth.NewHolder(provider, creds, logger)

	var transcriber stt.Transcriber
	if demoMode {
		transcriber = stt.NewScriptedTranscriber(nil, 3*time.Second)
	} else {
		transcriber = stt.NewRemoteTranscriber("", cfg.Identity.APIKey)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		holder:   holder,
		speaker:  session.NewSpeaker(client, transcriber, holder, logger),
		listener: session.NewListener(client, holder, logger),
		google:   google,
		demoMode: demoMode,
		demoLn:   demoLn,
	}, nil
}

func (a *app) close() {
	if a.demoLn != nil {
		_ = a.demoLn.Close()
	}
	_ = a.logger.Sync()
}

func runTUI(a *app, initialPath string) error {
	model := tui.New(tui.Options{
		Holder:       a.holder,
		Speaker:      a.speaker,
		Listener:     a.listener,
		Google:       a.google,
		Logger:       a.logger,
		Demo:         a.demoMode,
		PollInterval: a.cfg.Client.PollInterval,
		InitialPath:  initialPath,
	})
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// newLogger writes structured logs to a file in the state directory so
// log output never corrupts the terminal UI.
func newLogger(cfg *config.Config) *zap.Logger {
	dir := cfg.Client.StateDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return zap.NewNop()
		}
		dir = filepath.Join(base, "panda")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return zap.NewNop()
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Client.Environment == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.OutputPaths = []string{filepath.Join(dir, "panda.log")}
	zcfg.ErrorOutputPaths = zcfg.OutputPaths

	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
