package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/api"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
)

// authAPI is the slice of api.Client the commands use.
type authAPI interface {
	Register(ctx context.Context, email, password string) (*api.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, token string) (*api.User, error)
	ForgotPassword(ctx context.Context, email string) (string, string, error)
	ResetPassword(ctx context.Context, code, newPassword string) (string, error)
}

// App holds the CLI session: the API client, terminal I/O and the token
// obtained by login.
type App struct {
	config *config.Config
	api    authAPI
	reader *bufio.Reader
	out    io.Writer

	token string
	email string
}

// NewApp builds an App on stdin/stdout talking to c.ServerURL.
func NewApp(c *config.Config) *App {
	a := newApp(api.New(c.ServerURL, c.RequestTimeout), bufio.NewReader(os.Stdin), os.Stdout)
	a.config = c
	return a
}

func newApp(client authAPI, r *bufio.Reader, w io.Writer) *App {
	return &App{api: client, reader: r, out: w}
}

// Run blocks until the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return a.email
	}
	return "guest"
}
