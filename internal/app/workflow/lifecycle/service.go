// internal/app/workflow/lifecycle/service.go

// Package lifecycle orchestrates the case-lifecycle operations: lead intake
// and conversion, student activation and profile submission, university
// applications, contracts, and billing. Each operation is one logical unit
// of work — validate, mutate, fire side effects, append exactly one audit
// entry — and any typed failure aborts it with zero side effects.
package lifecycle

import (
	"context"
	"time"

	"github.com/jmassawe/edupath/internal/app/system/auditlog"
	"github.com/jmassawe/edupath/internal/app/system/entitymu"
	"github.com/jmassawe/edupath/internal/app/workflow/ledger"
	"github.com/jmassawe/edupath/internal/app/workflow/unlock"
	"github.com/jmassawe/edupath/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LeadStore is the slice of the lead store the service needs.
type LeadStore interface {
	Insert(ctx context.Context, l *models.Lead) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Lead, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, convertedAt *time.Time) error
	UpdateNotes(ctx context.Context, id primitive.ObjectID, notes string) error
}

// StudentStore is the slice of the student store the service needs.
type StudentStore interface {
	Insert(ctx context.Context, st *models.Student) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	UpdateProfileField(ctx context.Context, id primitive.ObjectID, field string, value any) error
	AddFamilyMember(ctx context.Context, id primitive.ObjectID, fm models.FamilyMember) error
	AddEducationRecord(ctx context.Context, id primitive.ObjectID, er models.EducationRecord) error
	AddEmploymentRecord(ctx context.Context, id primitive.ObjectID, er models.EmploymentRecord) error
}

// ApplicationStore is the slice of the application store the service needs.
type ApplicationStore interface {
	Insert(ctx context.Context, a *models.UniversityApplication) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.UniversityApplication, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	SetReturn(ctx context.Context, id primitive.ObjectID, reason string, fields []string) error
}

// ContractStore is the slice of the contract store the service needs.
type ContractStore interface {
	Insert(ctx context.Context, c *models.Contract) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Contract, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

// InvoiceStore is the slice of the invoice store the service needs.
type InvoiceStore interface {
	Insert(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, receiptRef string) error
}

// DocumentStore is the slice of the document store the service needs.
type DocumentStore interface {
	Insert(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Document, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string, verifierID *primitive.ObjectID) error
	CountUnverifiedRequired(ctx context.Context, studentID primitive.ObjectID) (int64, error)
}

// UniversityStore is the slice of the university store the service needs.
type UniversityStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.University, error)
}

// TxnRunner wraps an operation in a storage transaction. The default runs
// the operation directly; bootstrap installs the Mongo transaction helper.
type TxnRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Service is the case-lifecycle orchestrator.
type Service struct {
	leads        LeadStore
	students     StudentStore
	applications ApplicationStore
	contracts    ContractStore
	invoices     InvoiceStore
	documents    DocumentStore
	universities UniversityStore

	locker *unlock.Manager
	ledger *ledger.Service
	rec    *auditlog.Recorder
	mu     *entitymu.Map
	run    TxnRunner
	log    *zap.Logger
}

// Deps bundles the service's collaborators.
type Deps struct {
	Leads        LeadStore
	Students     StudentStore
	Applications ApplicationStore
	Contracts    ContractStore
	Invoices     InvoiceStore
	Documents    DocumentStore
	Universities UniversityStore

	Locker   *unlock.Manager
	Ledger   *ledger.Service
	Recorder *auditlog.Recorder
	Mutexes  *entitymu.Map
	Txn      TxnRunner
	Logger   *zap.Logger
}

// New creates the lifecycle Service.
func New(d Deps) *Service {
	if d.Txn == nil {
		d.Txn = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	if d.Mutexes == nil {
		d.Mutexes = entitymu.NewMap()
	}
	return &Service{
		leads:        d.Leads,
		students:     d.Students,
		applications: d.Applications,
		contracts:    d.Contracts,
		invoices:     d.Invoices,
		documents:    d.Documents,
		universities: d.Universities,
		locker:       d.Locker,
		ledger:       d.Ledger,
		rec:          d.Recorder,
		mu:           d.Mutexes,
		run:          d.Txn,
		log:          d.Logger,
	}
}
