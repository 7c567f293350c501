// Package cli is the command tree of cocreate-cli.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cocreate/pkg/client"
	"cocreate/pkg/clientconfig"
	"cocreate/pkg/frontend"
	"cocreate/pkg/logger"
	"cocreate/pkg/session"
	"cocreate/pkg/ui"
)

type cli struct {
	cfg     *clientconfig.Config
	cfgPath string
	apiURL  string
	offline bool
	width   int

	deps   frontend.Deps
	render ui.Renderer
	out    io.Writer
	in     *bufio.Reader
	// failed is set once a destructive toast has been shown, so the
	// error is not printed twice.
	failed bool
}

// Option customizes the command tree.
type Option func(*cli)

// WithConfig uses cfg instead of loading the config file.
func WithConfig(cfg *clientconfig.Config) Option {
	return func(c *cli) { c.cfg = cfg }
}

// NewRootCmd builds the cocreate-cli command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	c := &cli{}
	for _, o := range opts {
		o(c)
	}
	root := &cobra.Command{
		Use:           "cocreate-cli",
		Short:         "Browse projects, troubles and conversations on a CoCreate server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "", "config file (default ~/.cocreate.yaml)")
	pf.StringVar(&c.apiURL, "api-url", "", "API base URL")
	pf.BoolVar(&c.offline, "offline", false, "use built-in users and data instead of the API")
	pf.IntVar(&c.width, "width", ui.DefaultWidth, "output width")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.accountCmd(),
		c.projectsCmd(),
		c.troublesCmd(),
		c.messagesCmd(),
		c.participantsCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.cfg == nil {
		path := c.cfgPath
		if path == "" {
			path = clientconfig.DefaultPath()
		}
		cfg, err := clientconfig.LoadFromFile(path)
		if err != nil {
			return err
		}
		c.cfg = cfg
	}
	if cmd.Flags().Changed("api-url") {
		c.cfg.APIURL = c.apiURL
		if err := c.cfg.Validate(); err != nil {
			return err
		}
	}
	if c.offline {
		c.cfg.Offline = true
	}
	logger.InitWith(logger.Options{Level: c.cfg.LogLevel, Sink: c.cfg.LogSink()})

	c.out = cmd.OutOrStdout()
	c.render = ui.New(c.width)
	c.deps = frontend.Deps{
		Client:   client.New(c.cfg.APIURL),
		Store:    session.NewFileStore(c.cfg.StatePath),
		Notifier: frontend.NotifierFunc(c.toast),
		Policy: frontend.Policy{
			FallbackData:     c.cfg.FallbackData || c.cfg.Offline,
			DemoConversation: c.cfg.DemoConversation || c.cfg.Offline,
			DevPlaceholders:  c.cfg.Dev,
			Offline:          c.cfg.Offline,
		},
	}
	logger.Debug("cli_ready", "command", cmd.CommandPath(), "api_url", c.cfg.APIURL, "offline", c.cfg.Offline)
	return nil
}

func (c *cli) toast(t frontend.Toast) {
	if t.Variant == frontend.VariantDestructive {
		c.failed = true
	}
	fmt.Fprintln(c.out, c.render.Toast(t))
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// readPassword reads without echo from a terminal, or a line otherwise.
func (c *cli) readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	if c.in == nil {
		c.in = bufio.NewReader(cmd.InOrStdin())
	}
	line, err := c.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// hint turns navigation errors into what the user should do next.
func hint(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthenticated):
		return "Please log in: cocreate-cli login <username>"
	case errors.Is(err, frontend.ErrNoProjectSelected):
		return "Pick a project first: cocreate-cli projects select <id>"
	case errors.Is(err, frontend.ErrNoTroubleSelected):
		return "Pick a trouble first: cocreate-cli troubles select <id>"
	}
	return ""
}

// Main runs the CLI and returns the process exit code.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, opts ...Option) int {
	c := &cli{}
	root := NewRootCmd(append(opts, func(x *cli) { c = x })...)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if h := hint(err); h != "" {
		fmt.Fprintln(stderr, h)
	} else if !c.failed {
		fmt.Fprintln(stderr, "Error:", err)
	}
	logger.Debug("cli_failed", "error", err)
	return 1
}
