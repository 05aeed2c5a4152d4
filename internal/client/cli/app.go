package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/bea-ebooks/internal/client/client"
	"github.com/dmitrijs2005/bea-ebooks/internal/client/config"
	"github.com/dmitrijs2005/bea-ebooks/internal/client/services"
	"github.com/dmitrijs2005/bea-ebooks/internal/filex"
	"github.com/dmitrijs2005/bea-ebooks/internal/logging"
)

const sessionFileName = "session.db"

type App struct {
	config   *config.Config
	sessions services.SessionService
	ebooks   services.EbookService
	db       *sql.DB
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, logging.FormatText, false)

	dir, err := filex.EnsureSubdDir(c.SessionDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, sessionFileName))
	if err != nil {
		logger.Error(ctx, "error initializing session store", "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerURL, &http.Client{Timeout: c.RequestTimeout})

	return &App{
		config:   c,
		sessions: services.NewSessionService(api, db, logger),
		ebooks:   services.NewEbookService(api, c.MaxFileSize, logger),
		db:       db,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run executes args as a single command, or starts the prompt when args is
// empty. The saved session, if any, is restored first.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.db.Close()

	userName, err := a.sessions.Restore(ctx)
	if err != nil {
		a.logger.Warn(ctx, "could not restore session", "error", err)
	}
	a.userName = userName

	if len(args) > 0 {
		if err := dispatch(ctx, a, a.out, args[0], args[1:]); err != nil && !errors.Is(err, errExit) {
			return err
		}
		return nil
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ")"
}
