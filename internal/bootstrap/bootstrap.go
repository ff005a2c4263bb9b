package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	admininadapter "kreosurvey/internal/modules/admin/adapter/in"
	adminoutadapter "kreosurvey/internal/modules/admin/adapter/out"
	admindomain "kreosurvey/internal/modules/admin/domain"
	adminout "kreosurvey/internal/modules/admin/port/out"
	adminservice "kreosurvey/internal/modules/admin/service"
	adminusecase "kreosurvey/internal/modules/admin/usecase"
	responsesinadapter "kreosurvey/internal/modules/responses/adapter/in"
	responsesoutadapter "kreosurvey/internal/modules/responses/adapter/out"
	responsesservice "kreosurvey/internal/modules/responses/service"
	responsesusecase "kreosurvey/internal/modules/responses/usecase"
	surveyinadapter "kreosurvey/internal/modules/survey/adapter/in"
	surveyoutadapter "kreosurvey/internal/modules/survey/adapter/out"
	surveyout "kreosurvey/internal/modules/survey/port/out"
	surveyservice "kreosurvey/internal/modules/survey/service"
	surveyusecase "kreosurvey/internal/modules/survey/usecase"
	"kreosurvey/internal/platform/clock"
	"kreosurvey/internal/platform/config"
	"kreosurvey/internal/platform/httpserver"
	"kreosurvey/internal/platform/id"
	"kreosurvey/internal/platform/logging"
	"kreosurvey/internal/platform/schedule"
	"kreosurvey/internal/platform/storerpc"
	uiapp "kreosurvey/internal/ui/app"
)

const adminAPIPrefix = "/api/admin"

// Options tune how the process-wide dependencies are built.
type Options struct {
	// LogToStderr mirrors the log file to stderr. Interactive commands
	// leave it off because the terminal belongs to the UI.
	LogToStderr bool
}

type App struct {
	SurveyCLI    surveyinadapter.CLIHandler
	SurveyTUI    surveyinadapter.TUIHandler
	ResponsesCLI responsesinadapter.CLIHandler
	AdminCLI     admininadapter.CLIHandler

	cfg          config.Config
	logger       *slog.Logger
	grpcServer   *responsesinadapter.GRPCServer
	responsesAPI *responsesinadapter.HTTPHandler
	adminAPI     *admininadapter.HTTPHandler
	closers      []io.Closer
}

func New(cfg config.Config, opts Options) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.ULID{}

	var extra []io.Writer
	if opts.LogToStderr {
		extra = append(extra, os.Stderr)
	}
	logger, logFile, err := logging.OpenFile(cfg.LogPath, cfg.LogLevel, extra...)
	if err != nil {
		return nil, err
	}
	app := &App{cfg: cfg, logger: logger, closers: []io.Closer{logFile}}

	store, err := responsesoutadapter.NewSQLiteDocumentStore(cfg.DBPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("new response store: %w", err)
	}
	app.closers = append(app.closers, store)
	responsesUC := responsesusecase.NewInteractor(responsesservice.NewResponseService(clk, store, logger.With("module", "responses")))

	var remote surveyout.ResponseStore
	if cfg.RemoteAddr != "" {
		conn, err := grpc.NewClient(cfg.RemoteAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("dial remote store %s: %w", cfg.RemoteAddr, err)
		}
		app.closers = append(app.closers, conn)
		remote = surveyoutadapter.NewGRPCResponseStore(conn)
	} else {
		remote = surveyoutadapter.NewResponsesBridge(responsesUC)
	}
	sync := surveyservice.NewSynchronizer(
		clk,
		ids,
		surveyoutadapter.NewFileLocalStorage(cfg.StateDir, logger.With("module", "survey")),
		remote,
		schedule.Real{},
		cfg.AutosaveDelay,
		logger.With("module", "survey"),
	)
	surveyUC := surveyusecase.NewInteractor(sync, logger.With("module", "survey"))

	accounts := make([]admindomain.Account, 0, len(cfg.Admins))
	for _, admin := range cfg.Admins {
		accounts = append(accounts, admindomain.Account{Email: admin.Email, PasswordHash: admin.PasswordHash})
	}
	// Without a secret only hash-password is usable; the HTTP login is not
	// mounted.
	var issuer adminout.TokenIssuer
	if cfg.JWTSecret != "" {
		issuer, err = adminoutadapter.NewJWTIssuer(cfg.JWTSecret)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("new token issuer: %w", err)
		}
	}
	adminUC := adminusecase.NewInteractor(adminservice.NewAuthService(
		clk,
		adminoutadapter.NewStaticAccountDirectory(accounts),
		adminoutadapter.NewBcryptHasher(bcrypt.DefaultCost),
		issuer,
		admindomain.NewAllowList(cfg.AllowedEmails),
		admindomain.NewAttemptLimiter(admindomain.DefaultMaxAttempts, admindomain.DefaultAttemptWindow),
		cfg.TokenTTL,
		logger.With("module", "admin"),
	))

	app.SurveyCLI = surveyinadapter.NewCLIHandler(surveyUC)
	app.SurveyTUI = surveyinadapter.NewTUIHandler(surveyUC)
	app.ResponsesCLI = responsesinadapter.NewCLIHandler(responsesUC)
	app.AdminCLI = admininadapter.NewCLIHandler(adminUC)
	app.grpcServer = responsesinadapter.NewGRPCServer(responsesUC, logger.With("module", "rpc"))
	app.responsesAPI = responsesinadapter.NewHTTPHandler(responsesUC, logger.With("module", "http"))
	if cfg.JWTSecret != "" {
		app.adminAPI = admininadapter.NewHTTPHandler(adminUC, false, logger.With("module", "http"))
	}
	return app, nil
}

func (a *App) Logger() *slog.Logger { return a.logger }

// Close releases stores, connections and the log file in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if a.closers[i] == nil {
			continue
		}
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunSurveyTUI(app *App) error {
	program := tea.NewProgram(uiapp.NewModel(app.SurveyTUI), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func RunDashboard(app *App) error {
	program := tea.NewProgram(uiapp.NewAdminModel(app.ResponsesCLI), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Serve runs the response store over gRPC and, when a JWT secret is
// configured, the admin HTTP API. It returns when ctx is cancelled or
// either listener fails.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	grpcLis, err := net.Listen("tcp", a.cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", a.cfg.GRPCAddr, err)
	}
	rpc := grpc.NewServer()
	storerpc.RegisterResponseStoreServer(rpc, a.grpcServer)

	errCh := make(chan error, 2)
	running := 1
	go func() {
		a.logger.Info("response store listening", "addr", grpcLis.Addr().String())
		if err := rpc.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("serve grpc: %w", err)
			return
		}
		errCh <- nil
	}()

	if a.adminAPI != nil {
		httpLis, err := net.Listen("tcp", a.cfg.HTTPAddr)
		if err != nil {
			rpc.Stop()
			return fmt.Errorf("listen http %s: %w", a.cfg.HTTPAddr, err)
		}
		engine := a.Router()
		running++
		go func() { errCh <- httpserver.Serve(ctx, httpLis, engine, a.logger) }()
	} else {
		a.logger.Warn("admin http api disabled: jwt secret not configured")
	}

	var firstErr error
	select {
	case firstErr = <-errCh:
		running--
	case <-ctx.Done():
	}
	cancel()
	rpc.GracefulStop()
	for ; running > 0; running-- {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Router builds the admin HTTP engine. Response routes sit behind the
// admin guard.
func (a *App) Router() *gin.Engine {
	engine := httpserver.NewEngine(a.logger, a.cfg.CORSOrigins)
	group := engine.Group(adminAPIPrefix)
	if a.adminAPI == nil {
		return engine
	}
	guard := a.adminAPI.Register(group)
	protected := group.Group("", guard)
	a.responsesAPI.Register(protected)
	return engine
}
