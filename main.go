package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	godaemon "github.com/sevlyar/go-daemon"
	log "github.com/sirupsen/logrus"
	altsrc "github.com/urfave/cli-altsrc/v3"
	altsrcyaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/vaulthook/vaulthook/internal/config"
	"github.com/vaulthook/vaulthook/internal/daemon"
	"github.com/vaulthook/vaulthook/internal/notice"
	"github.com/vaulthook/vaulthook/internal/router"
	"github.com/vaulthook/vaulthook/internal/utils"
	"github.com/vaulthook/vaulthook/internal/webhook"
)

// Set at build time: go build -ldflags "-X main.version=1.2.3"
var version = "dev"

func main() {
	var configPath string
	yamlCfg := altsrc.NewStringPtrSourcer(&configPath)

	app := &cli.Command{
		Name:    "vaulthook",
		Usage:   "relay vault file events as JSON webhooks",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("VAULTHOOK_CONFIG"),
				Value:       config.DefaultConfigFilename,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:    "url",
				Usage:   "destination webhook URL",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_URL"), altsrcyaml.YAML("url", yamlCfg)),
			},
			&cli.BoolFlag{
				Name:    "enabled",
				Usage:   "master switch",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_ENABLED"), altsrcyaml.YAML("enabled", yamlCfg)),
				Value:   true,
			},
			&cli.BoolFlag{
				Name:    "auto-send",
				Usage:   "send webhooks for vault events automatically",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_AUTO_SEND"), altsrcyaml.YAML("auto_send", yamlCfg)),
				Value:   true,
			},
			&cli.BoolFlag{
				Name:    "notices",
				Usage:   "show desktop notices for delivery results",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_NOTICES"), altsrcyaml.YAML("notices", yamlCfg)),
				Value:   true,
			},
			&cli.BoolFlag{
				Name:    "on-file-open",
				Usage:   "relay file-open focus events",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_ON_FILE_OPEN"), altsrcyaml.YAML("trigger_on_file_open", yamlCfg)),
			},
			&cli.BoolFlag{
				Name:    "on-pane-change",
				Usage:   "relay pane-change focus events",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_ON_PANE_CHANGE"), altsrcyaml.YAML("trigger_on_pane_change", yamlCfg)),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "vault root directory to watch",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_ROOT"), altsrcyaml.YAML("root", yamlCfg)),
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "vault-name",
				Usage:   "vault name reported in payloads (defaults to the root's base name)",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_VAULT_NAME"), altsrcyaml.YAML("vault_name", yamlCfg)),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "logging level: debug, info, warn, error",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_LOG_LEVEL"), altsrcyaml.YAML("log_level", yamlCfg)),
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Usage:   "glob patterns to exclude (repeat or comma-separated)",
				Sources: cli.EnvVars("VAULTHOOK_EXCLUDE"),
			},
			&cli.BoolFlag{
				Name:    "daemonize",
				Usage:   "run as daemon",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_DAEMONIZE"), altsrcyaml.YAML("daemonize", yamlCfg)),
			},
			&cli.DurationFlag{
				Name:    "delay",
				Usage:   "window for pairing rename events",
				Sources: cli.NewValueSourceChain(cli.EnvVar("VAULTHOOK_DELAY"), altsrcyaml.YAML("delay", yamlCfg)),
				Value:   0,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "watch the vault and relay events",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := configFromCmd(cmd)
					setLogLevel(cfg.LogLevel)

					if cfg.Daemonize {
						log.SetOutput(&lumberjack.Logger{
							Filename:   "vaulthook.log",
							MaxSize:    10, // MB
							MaxBackups: 3,
							MaxAge:     28, // days
						})

						daemonCtx := &godaemon.Context{
							PidFileName: "vaulthook.pid",
							PidFilePerm: 0644,
							WorkDir:     "./",
							Umask:       027,
							Args:        []string{"[vaulthook-daemon]"},
						}

						d, err := daemonCtx.Reborn()
						if err != nil {
							log.Fatalf("Unable to run: %s", err)
						}
						if d != nil {
							return nil // Parent process exits
						}
						defer daemonCtx.Release()
						log.Info("Daemon started")
					} else {
						log.Info("Running in foreground (not daemonized)")
					}

					cfgPath := configPath
					if _, err := os.Stat(cfgPath); err != nil {
						cfgPath = ""
					}
					return daemon.Run(ctx, cfgPath, cfg)
				},
			},
			{
				Name:      "send",
				Usage:     "send a webhook for one document",
				ArgsUsage: "<path>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					arg := cmd.Args().First()
					if arg == "" {
						return fmt.Errorf("usage: vaulthook send <path>")
					}
					cfg := configFromCmd(cmd)
					setLogLevel(cfg.LogLevel)
					newRouter(cfg).SendDocument(ctx, relToRoot(cfg.Root, arg))
					return nil
				},
			},
			{
				Name:  "test",
				Usage: "send a test payload to the configured URL",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := configFromCmd(cmd)
					setLogLevel(cfg.LogLevel)
					newRouter(cfg).SendTest(ctx)
					return nil
				},
			},
			{
				Name:  "toggle",
				Usage: "flip the master switch in the config file",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load(configPath)
					if err != nil {
						if !os.IsNotExist(err) {
							return err
						}
						cfg = config.Default()
					}
					cfg.Enabled = !cfg.Enabled
					if err := config.Save(configPath, cfg); err != nil {
						return err
					}
					log.Infof("Webhook sending enabled: %v", cfg.Enabled)
					return nil
				},
			},
		},
		DefaultCommand: "run",
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// configFromCmd assembles the settings from flags, environment, and the
// YAML config file (in that order of precedence).
func configFromCmd(cmd *cli.Command) *config.Config {
	exclude := cmd.StringSlice("exclude")
	var merged []string
	for _, e := range exclude {
		merged = append(merged, strings.Split(e, ",")...)
	}

	cfg := &config.Config{
		URL:                 cmd.String("url"),
		Enabled:             cmd.Bool("enabled"),
		AutoSend:            cmd.Bool("auto-send"),
		Notices:             cmd.Bool("notices"),
		TriggerOnFileOpen:   cmd.Bool("on-file-open"),
		TriggerOnPaneChange: cmd.Bool("on-pane-change"),
		Root:                utils.ExpandTilde(cmd.String("root")),
		VaultName:           cmd.String("vault-name"),
		LogLevel:            cmd.String("log-level"),
		Exclude:             merged,
		Daemonize:           cmd.Bool("daemonize"),
		Delay:               cmd.Duration("delay"),
	}
	cfg.Normalize()
	return cfg
}

// newRouter builds the one-shot pipeline used by send and test.
func newRouter(cfg *config.Config) *router.Router {
	n := notice.New(cfg.Notices)
	return router.New(*cfg, webhook.NewDeliverer(n), n)
}

// relToRoot maps a user-supplied path onto a vault-relative slash path.
func relToRoot(root, p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Clean(p))
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
