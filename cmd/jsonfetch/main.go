package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/jsonfetch/internal/cliconfig"
	"github.com/bft-labs/jsonfetch/internal/watch"
	"github.com/bft-labs/jsonfetch/pkg/jsonhttp"
	"github.com/bft-labs/jsonfetch/pkg/jsonvalue"
	"github.com/bft-labs/jsonfetch/pkg/log"
)

const longHelp = `Fetch and post JSON from the command line.

Responses must be 2xx and valid JSON; anything else is reported as an error
and the command exits with status 1. Relative URLs are resolved against
--base-url. Configure via file, env (JSONFETCH_*), or flags.`

var exampleUsage = strings.TrimSpace(`
  jsonfetch get https://api.example.com/items/1
  jsonfetch --base-url https://api.example.com post items '{"name":"widget"}'
  jsonfetch post items @payload.json --watch
  echo '[1,2,3]' | jsonfetch post https://httpbin.org/anything -
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries state resolved once flags are parsed.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  zerolog.Logger
	client  *jsonhttp.Client
	stdin   io.Reader
	stdout  io.Writer
}

func main() {
	a := &app{
		cfg:    cliconfig.DefaultConfig(),
		logger: cliconfig.Logger(zerolog.InfoLevel),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.rootCommand().ExecuteContext(ctx); err != nil {
		a.logger.Error().Err(err).Msg("jsonfetch")
		stop()
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "jsonfetch",
		Short:             "Fetch and post JSON over HTTP",
		Long:              longHelp,
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.jsonfetch/config.toml)")
	flags.StringVar(&a.cfg.BaseURL, "base-url", a.cfg.BaseURL, "base URL for relative request targets")
	flags.DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "per-request deadline (0 for none)")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&a.cfg.Compact, "compact", a.cfg.Compact, "print responses without indentation")

	root.AddCommand(a.getCommand(), a.postCommand())
	return root
}

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <url>",
		Short: "GET a URL and print the decoded JSON response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.cfg.ResolveURL(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := a.requestContext(cmd.Context())
			defer cancel()

			v, err := a.client.FetchJSON(ctx, target)
			if err != nil {
				return err
			}
			return a.print(v)
		},
	}
}

func (a *app) postCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <url> [payload|@file|-]",
		Short: "POST a JSON payload and print the decoded JSON response",
		Long: `POST a JSON payload and print the decoded JSON response.

The payload is inline JSON, @path to read a file, or - to read stdin
(the default). With --watch the file payload is re-posted on every save.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.cfg.ResolveURL(args[0])
			if err != nil {
				return err
			}

			source := "-"
			if len(args) == 2 {
				source = args[1]
			}

			if a.cfg.Watch {
				path, ok := payloadFile(source)
				if !ok {
					return fmt.Errorf("--watch requires a @file payload")
				}
				return a.watchAndPost(cmd.Context(), target, path)
			}

			return a.post(cmd.Context(), target, source)
		},
	}

	cmd.Flags().BoolVar(&a.cfg.Watch, "watch", false, "re-post the @file payload whenever it changes")
	return cmd
}

// loadConfig applies file and env configuration under flags, validates the
// result and builds the client.
func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	} else if a.cfgPath != "" {
		return fmt.Errorf("config file %s not found", a.cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = cliconfig.Logger(level)
	a.logger.Debug().Interface("config", a.cfg).Msg("configuration")

	a.client = jsonhttp.New(jsonhttp.WithLogger(log.NewZerologAdapterWithLogger(a.logger)))
	return nil
}

func (a *app) post(ctx context.Context, target, source string) error {
	payload, err := readPayload(source, a.stdin)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	v, err := a.client.PostJSON(ctx, target, payload)
	if err != nil {
		return err
	}
	return a.print(v)
}

func (a *app) watchAndPost(ctx context.Context, target, path string) error {
	send := func(ctx context.Context) {
		if err := a.post(ctx, target, "@"+path); err != nil {
			a.logger.Error().Err(err).Str("url", target).Msg("post failed")
		}
	}

	send(ctx)

	w := watch.New(path, send, log.NewZerologAdapterWithLogger(a.logger))
	return w.Run(ctx)
}

func (a *app) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (a *app) print(v jsonvalue.Value) error {
	out, err := formatValue(v, a.cfg.Compact)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(out))
	return err
}
