package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/brandforge/internal/client/client"
	"github.com/dmitrijs2005/brandforge/internal/client/config"
	"github.com/dmitrijs2005/brandforge/internal/shared"
	"golang.org/x/term"
)

// Dialer opens a Client for the given endpoint and token.
type Dialer func(endpoint, token string) (client.Client, error)

func grpcDialer(endpoint, token string) (client.Client, error) {
	return client.NewDesignClient(endpoint, token)
}

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

type App struct {
	dial   Dialer
	getenv func(string) string
	in     *bufio.Reader
	out    io.Writer

	configPath string
	endpoint   string
	token      string
	config     *config.Config
}

type Option func(*App)

func WithDialer(d Dialer) Option { return func(a *App) { a.dial = d } }

func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.in = bufio.NewReader(in)
		a.out = out
	}
}

func WithEnv(getenv func(string) string) Option { return func(a *App) { a.getenv = getenv } }

func NewApp(opts ...Option) *App {
	a := &App{
		dial:   grpcDialer,
		getenv: os.Getenv,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// loadConfig resolves settings once per invocation; flags win over the file
// and environment.
func (a *App) loadConfig() error {
	cfg, err := config.Load(a.configPath, a.getenv)
	if err != nil {
		return err
	}
	if a.endpoint != "" {
		cfg.ServerEndpointAddr = a.endpoint
	}
	if a.token != "" {
		cfg.AccessToken = a.token
	}
	a.config = cfg
	return nil
}

// connect dials the server, prompting for a token on an interactive
// terminal when none is configured.
func (a *App) connect(requireToken bool) (client.Client, error) {
	token := a.config.AccessToken
	if token == "" && requireToken {
		if !isTerminal(int(os.Stdin.Fd())) {
			return nil, fmt.Errorf("no access token: set %s or pass --token", config.EnvToken)
		}
		b, err := GetSecret("Access token: ", a.out)
		if err != nil {
			return nil, err
		}
		token = string(b)
		shared.Wipe(b)
	}
	return a.dial(a.config.ServerEndpointAddr, token)
}

// call runs fn with a connected client under the configured timeout.
func (a *App) call(ctx context.Context, requireToken bool, fn func(context.Context, client.Client) (any, error)) error {
	c, err := a.connect(requireToken)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	v, err := fn(ctx, c)
	if err != nil {
		return err
	}
	return a.print(v)
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the command tree with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.RootCommand()
	root.SetArgs(args)
	root.SetOut(a.out)
	return root.ExecuteContext(ctx)
}
