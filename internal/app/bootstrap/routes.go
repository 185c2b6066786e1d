// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	applicationsfeature "github.com/jmassawe/edupath/internal/app/features/applications"
	auditlogfeature "github.com/jmassawe/edupath/internal/app/features/auditlog"
	commissionsfeature "github.com/jmassawe/edupath/internal/app/features/commissions"
	contractsfeature "github.com/jmassawe/edupath/internal/app/features/contracts"
	healthfeature "github.com/jmassawe/edupath/internal/app/features/health"
	invoicesfeature "github.com/jmassawe/edupath/internal/app/features/invoices"
	leadsfeature "github.com/jmassawe/edupath/internal/app/features/leads"
	loginfeature "github.com/jmassawe/edupath/internal/app/features/login"
	logoutfeature "github.com/jmassawe/edupath/internal/app/features/logout"
	studentsfeature "github.com/jmassawe/edupath/internal/app/features/students"
	universitiesfeature "github.com/jmassawe/edupath/internal/app/features/universities"
	unlocksfeature "github.com/jmassawe/edupath/internal/app/features/unlocks"
	applicationstore "github.com/jmassawe/edupath/internal/app/store/applications"
	auditstore "github.com/jmassawe/edupath/internal/app/store/audit"
	commissionstore "github.com/jmassawe/edupath/internal/app/store/commissions"
	contractstore "github.com/jmassawe/edupath/internal/app/store/contracts"
	documentstore "github.com/jmassawe/edupath/internal/app/store/documents"
	invoicestore "github.com/jmassawe/edupath/internal/app/store/invoices"
	leadstore "github.com/jmassawe/edupath/internal/app/store/leads"
	studentstore "github.com/jmassawe/edupath/internal/app/store/students"
	universitystore "github.com/jmassawe/edupath/internal/app/store/universities"
	unlockstore "github.com/jmassawe/edupath/internal/app/store/unlocks"
	userstore "github.com/jmassawe/edupath/internal/app/store/users"
	"github.com/jmassawe/edupath/internal/app/system/auditlog"
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/app/system/entitymu"
	"github.com/jmassawe/edupath/internal/app/system/ratelimit"
	"github.com/jmassawe/edupath/internal/app/system/txn"
	"github.com/jmassawe/edupath/internal/app/workflow/ledger"
	"github.com/jmassawe/edupath/internal/app/workflow/lifecycle"
	"github.com/jmassawe/edupath/internal/app/workflow/unlock"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. EduPath initializes the session store,
// wires the stores into the workflow services, and mounts one feature
// router per resource.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	// Stores
	leads := leadstore.New(db)
	students := studentstore.New(db)
	applications := applicationstore.New(db)
	contracts := contractstore.New(db)
	invoices := invoicestore.New(db)
	documents := documentstore.New(db)
	universities := universitystore.New(db)
	unlocks := unlockstore.New(db)
	users := userstore.New(db)
	commissions := commissionstore.New(db)
	audit := auditstore.New(db)

	// Workflow services. The locker and the lifecycle service share one
	// transaction runner so every multi-write operation is a single unit of
	// work.
	recorder := auditlog.New(audit, logger, appCfg.AuditLogMode)
	mutexes := entitymu.NewMap()
	var runTxn func(ctx context.Context, fn func(ctx context.Context) error) error
	if appCfg.UseTransactions {
		client := deps.MongoClient
		runTxn = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return txn.WithTransaction(ctx, client, logger, fn)
		}
		logger.Info("workflow operations will run inside Mongo transactions")
	}
	locker := unlock.New(students, unlocks, recorder, mutexes, runTxn, logger)
	books := ledger.New(invoices, commissions, users, ledger.Config{
		DefaultCommissionRate: appCfg.DefaultCommissionRate,
	}, logger)

	svcDeps := lifecycle.Deps{
		Leads:        leads,
		Students:     students,
		Applications: applications,
		Contracts:    contracts,
		Invoices:     invoices,
		Documents:    documents,
		Universities: universities,
		Locker:       locker,
		Ledger:       books,
		Recorder:     recorder,
		Mutexes:      mutexes,
		Txn:          runTxn,
		Logger:       logger,
	}
	svc := lifecycle.New(svcDeps)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginLimiter := ratelimit.NewLoginLimiter(
		appCfg.LoginIPLimit, appCfg.LoginIPWindow,
		appCfg.LoginEmailLimit, appCfg.LoginEmailWindow)
	loginHandler := loginfeature.NewHandler(users, loginLimiter, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Case lifecycle
	leadsHandler := leadsfeature.NewHandler(svc, leads, logger)
	r.Mount("/leads", leadsfeature.Routes(leadsHandler))

	studentsHandler := studentsfeature.NewHandler(svc, students, logger)
	r.Mount("/students", studentsfeature.Routes(studentsHandler))

	applicationsHandler := applicationsfeature.NewHandler(svc, applications, logger)
	r.Mount("/applications", applicationsfeature.Routes(applicationsHandler))

	contractsHandler := contractsfeature.NewHandler(svc, contracts, logger)
	r.Mount("/contracts", contractsfeature.Routes(contractsHandler))

	// Billing and earnings
	invoicesHandler := invoicesfeature.NewHandler(svc, invoices, logger)
	r.Mount("/invoices", invoicesfeature.Routes(invoicesHandler))

	commissionsHandler := commissionsfeature.NewHandler(commissions, logger)
	r.Mount("/commissions", commissionsfeature.Routes(commissionsHandler))

	// Field-lock queue
	unlocksHandler := unlocksfeature.NewHandler(locker, unlocks, logger)
	r.Mount("/unlocks", unlocksfeature.Routes(unlocksHandler))

	// Catalog and reporting
	universitiesHandler := universitiesfeature.NewHandler(universities, logger)
	r.Mount("/universities", universitiesfeature.Routes(universitiesHandler))

	auditHandler := auditlogfeature.NewHandler(audit, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler))

	return r, nil
}
