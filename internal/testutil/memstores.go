// internal/testutil/memstores.go
package testutil

import (
	"context"
	"sync"
	"time"

	applicationstore "github.com/jmassawe/edupath/internal/app/store/applications"
	"github.com/jmassawe/edupath/internal/app/store/audit"
	contractstore "github.com/jmassawe/edupath/internal/app/store/contracts"
	documentstore "github.com/jmassawe/edupath/internal/app/store/documents"
	invoicestore "github.com/jmassawe/edupath/internal/app/store/invoices"
	leadstore "github.com/jmassawe/edupath/internal/app/store/leads"
	studentstore "github.com/jmassawe/edupath/internal/app/store/students"
	universitystore "github.com/jmassawe/edupath/internal/app/store/universities"
	unlockstore "github.com/jmassawe/edupath/internal/app/store/unlocks"
	userstore "github.com/jmassawe/edupath/internal/app/store/users"
	"github.com/jmassawe/edupath/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stores for unit-testing the workflow services without a Mongo
// instance. Each fake satisfies the consumer-side interfaces the services
// declare and returns the same sentinel errors as the Mongo stores.

// MemAudit is an in-memory audit sink.
type MemAudit struct {
	mu      sync.Mutex
	Entries []audit.Entry
	// FailNext makes the next append fail, for testing durable-append
	// propagation.
	FailNext error
}

// Append records the entry in memory.
func (m *MemAudit) Append(_ context.Context, e audit.Entry) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return primitive.NilObjectID, err
	}
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	m.Entries = append(m.Entries, e)
	return e.ID, nil
}

// ByAction returns the recorded entries with the given action.
func (m *MemAudit) ByAction(action string) []audit.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Entry
	for _, e := range m.Entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of recorded entries.
func (m *MemAudit) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}

// MemLeads is an in-memory lead store.
type MemLeads struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Lead
}

// NewMemLeads creates an empty lead store.
func NewMemLeads() *MemLeads {
	return &MemLeads{items: make(map[primitive.ObjectID]*models.Lead)}
}

func (m *MemLeads) Insert(_ context.Context, l *models.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	l.CreatedAt = time.Now().UTC()
	cp := *l
	m.items[l.ID] = &cp
	return nil
}

func (m *MemLeads) GetByID(_ context.Context, id primitive.ObjectID) (*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.items[id]
	if !ok {
		return nil, leadstore.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *MemLeads) UpdateStatus(_ context.Context, id primitive.ObjectID, status string, convertedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.items[id]
	if !ok {
		return leadstore.ErrNotFound
	}
	l.Status = status
	if convertedAt != nil {
		l.ConvertedAt = convertedAt
	}
	return nil
}

func (m *MemLeads) UpdateNotes(_ context.Context, id primitive.ObjectID, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.items[id]
	if !ok {
		return leadstore.ErrNotFound
	}
	l.Notes = notes
	return nil
}

// MemStudents is an in-memory student store.
type MemStudents struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Student
}

// NewMemStudents creates an empty student store.
func NewMemStudents() *MemStudents {
	return &MemStudents{items: make(map[primitive.ObjectID]*models.Student)}
}

func (m *MemStudents) Insert(_ context.Context, st *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, have := range m.items {
		if have.LeadID == st.LeadID {
			return studentstore.ErrDuplicateLead
		}
	}
	if st.ID.IsZero() {
		st.ID = primitive.NewObjectID()
	}
	st.CreatedAt = time.Now().UTC()
	cp := *st
	m.items[st.ID] = &cp
	return nil
}

func (m *MemStudents) GetByID(_ context.Context, id primitive.ObjectID) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.items[id]
	if !ok {
		return nil, studentstore.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *MemStudents) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.items[id]
	if !ok {
		return studentstore.ErrNotFound
	}
	st.Status = status
	return nil
}

func (m *MemStudents) SetLock(_ context.Context, id primitive.ObjectID, locked bool, lockedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.items[id]
	if !ok {
		return studentstore.ErrNotFound
	}
	st.IsProfileLocked = locked
	st.LockedAt = lockedAt
	st.UnlockedFields = nil
	return nil
}

func (m *MemStudents) MergeUnlockedFields(_ context.Context, id primitive.ObjectID, fields []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.items[id]
	if !ok {
		return studentstore.ErrNotFound
	}
	for _, f := range fields {
		seen := false
		for _, have := range st.UnlockedFields {
			if have == f {
				seen = true
				break
			}
		}
		if !seen {
			st.UnlockedFields = append(st.UnlockedFields, f)
		}
	}
	return nil
}

func (m *MemStudents) UpdateProfileField(_ context.Context, id primitive.ObjectID, field string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.items[id]
	if !ok {
		return studentstore.ErrNotFound
	}
	// Only the fields the tests exercise; unknown fields are accepted and
	// dropped, matching the schemaless Mongo update.
	if s, isString := value.(string); isString {
		switch field {
		case "full_name":
			st.FullName = s
		case "nationality":
			st.Nationality = s
		case "passport_number":
			st.PassportNumber = s
		case "home_address":
			st.HomeAddress = s
		}
	}
	return nil
}

func (m *MemStudents) AddFamilyMember(_ context.Context, id primitive.ObjectID, fm models.FamilyMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.items[id]
	if !ok {
		return studentstore.ErrNotFound
	}
	st.FamilyMembers = append(st.FamilyMembers, fm)
	return nil
}

func (m *MemStudents) AddEducationRecord(_ context.Context, id primitive.ObjectID, er models.EducationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.items[id]
	if !ok {
		return studentstore.ErrNotFound
	}
	st.EducationHistory = append(st.EducationHistory, er)
	return nil
}

func (m *MemStudents) AddEmploymentRecord(_ context.Context, id primitive.ObjectID, er models.EmploymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.items[id]
	if !ok {
		return studentstore.ErrNotFound
	}
	st.EmploymentHistory = append(st.EmploymentHistory, er)
	return nil
}

// Put seeds a student directly, bypassing duplicate checks.
func (m *MemStudents) Put(st *models.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.ID.IsZero() {
		st.ID = primitive.NewObjectID()
	}
	cp := *st
	m.items[st.ID] = &cp
}

// MemApplications is an in-memory application store.
type MemApplications struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.UniversityApplication
}

// NewMemApplications creates an empty application store.
func NewMemApplications() *MemApplications {
	return &MemApplications{items: make(map[primitive.ObjectID]*models.UniversityApplication)}
}

func (m *MemApplications) Insert(_ context.Context, a *models.UniversityApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.CreatedAt = time.Now().UTC()
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *MemApplications) GetByID(_ context.Context, id primitive.ObjectID) (*models.UniversityApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, applicationstore.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemApplications) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return applicationstore.ErrNotFound
	}
	now := time.Now().UTC()
	switch status {
	case models.ApplicationStatusSubmittedToUni:
		a.SubmittedAt = &now
	case models.ApplicationStatusAccepted, models.ApplicationStatusDeclined, models.ApplicationStatusRejected:
		a.DecidedAt = &now
	}
	a.Status = status
	return nil
}

func (m *MemApplications) SetReturn(_ context.Context, id primitive.ObjectID, reason string, fields []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return applicationstore.ErrNotFound
	}
	a.ReturnReason = reason
	a.ReturnedFields = fields
	return nil
}

// MemContracts is an in-memory contract store.
type MemContracts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Contract
}

// NewMemContracts creates an empty contract store.
func NewMemContracts() *MemContracts {
	return &MemContracts{items: make(map[primitive.ObjectID]*models.Contract)}
}

func (m *MemContracts) Insert(_ context.Context, c *models.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = time.Now().UTC()
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *MemContracts) GetByID(_ context.Context, id primitive.ObjectID) (*models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, contractstore.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemContracts) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return contractstore.ErrNotFound
	}
	if status == models.ContractStatusSigned {
		now := time.Now().UTC()
		c.SignedAt = &now
	}
	c.Status = status
	return nil
}

// MemInvoices is an in-memory invoice store.
type MemInvoices struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Invoice
}

// NewMemInvoices creates an empty invoice store.
func NewMemInvoices() *MemInvoices {
	return &MemInvoices{items: make(map[primitive.ObjectID]*models.Invoice)}
}

func (m *MemInvoices) Insert(_ context.Context, inv *models.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	inv.CreatedAt = time.Now().UTC()
	cp := *inv
	m.items[inv.ID] = &cp
	return nil
}

func (m *MemInvoices) GetByID(_ context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.items[id]
	if !ok {
		return nil, invoicestore.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *MemInvoices) MarkPaid(_ context.Context, id primitive.ObjectID, receiptRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.items[id]
	if !ok {
		return invoicestore.ErrNotFound
	}
	if inv.Status != models.InvoiceStatusPending {
		return invoicestore.ErrNotPending
	}
	now := time.Now().UTC()
	inv.Status = models.InvoiceStatusPaid
	inv.PaidAt = &now
	inv.ReceiptRef = receiptRef
	return nil
}

// All returns every stored invoice.
func (m *MemInvoices) All() []models.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Invoice, 0, len(m.items))
	for _, inv := range m.items {
		out = append(out, *inv)
	}
	return out
}

// MemDocuments is an in-memory document store.
type MemDocuments struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Document
}

// NewMemDocuments creates an empty document store.
func NewMemDocuments() *MemDocuments {
	return &MemDocuments{items: make(map[primitive.ObjectID]*models.Document)}
}

func (m *MemDocuments) Insert(_ context.Context, d *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	d.CreatedAt = time.Now().UTC()
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *MemDocuments) GetByID(_ context.Context, id primitive.ObjectID) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[id]
	if !ok {
		return nil, documentstore.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemDocuments) SetStatus(_ context.Context, id primitive.ObjectID, status string, verifierID *primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[id]
	if !ok {
		return documentstore.ErrNotFound
	}
	d.Status = status
	if status == models.DocumentStatusVerified {
		now := time.Now().UTC()
		d.VerifiedAt = &now
		d.VerifiedBy = verifierID
	}
	return nil
}

func (m *MemDocuments) CountUnverifiedRequired(_ context.Context, studentID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, d := range m.items {
		if d.StudentID == studentID && d.Required && d.Status != models.DocumentStatusVerified {
			n++
		}
	}
	return n, nil
}

// MemUniversities is an in-memory university store.
type MemUniversities struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.University
}

// NewMemUniversities creates an empty university store.
func NewMemUniversities() *MemUniversities {
	return &MemUniversities{items: make(map[primitive.ObjectID]*models.University)}
}

// Put seeds a university.
func (m *MemUniversities) Put(u *models.University) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	m.items[u.ID] = &cp
}

func (m *MemUniversities) GetByID(_ context.Context, id primitive.ObjectID) (*models.University, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return nil, universitystore.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// MemUnlockRequests is an in-memory unlock-request store.
type MemUnlockRequests struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.UnlockRequest
}

// NewMemUnlockRequests creates an empty unlock-request store.
func NewMemUnlockRequests() *MemUnlockRequests {
	return &MemUnlockRequests{items: make(map[primitive.ObjectID]*models.UnlockRequest)}
}

func (m *MemUnlockRequests) Insert(_ context.Context, r *models.UnlockRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now().UTC()
	cp := *r
	m.items[r.ID] = &cp
	return nil
}

func (m *MemUnlockRequests) GetByID(_ context.Context, id primitive.ObjectID) (*models.UnlockRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, unlockstore.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemUnlockRequests) Resolve(_ context.Context, id primitive.ObjectID, status string, resolverID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return unlockstore.ErrNotFound
	}
	if r.Status != models.UnlockStatusPending {
		return unlockstore.ErrAlreadyResolved
	}
	now := time.Now().UTC()
	r.Status = status
	r.ResolvedBy = &resolverID
	r.ResolvedAt = &now
	return nil
}

// MemUsers is an in-memory user store for staff lookups.
type MemUsers struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.User
}

// NewMemUsers creates an empty user store.
func NewMemUsers() *MemUsers {
	return &MemUsers{items: make(map[primitive.ObjectID]*models.User)}
}

// Put seeds a user.
func (m *MemUsers) Put(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	m.items[u.ID] = &cp
}

func (m *MemUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// MemCommissions is an in-memory commission store.
type MemCommissions struct {
	mu      sync.Mutex
	Records []models.CommissionRecord
}

func (m *MemCommissions) Insert(_ context.Context, rec *models.CommissionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	rec.CreatedAt = time.Now().UTC()
	m.Records = append(m.Records, *rec)
	return nil
}
