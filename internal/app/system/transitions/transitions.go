// internal/app/system/transitions/transitions.go

// Package transitions holds the status transition tables for every entity
// kind and the role gates on individual edges. The tables are the single
// source of truth: handlers and services must never attempt an edge that is
// not listed here.
package transitions

import (
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/jmassawe/edupath/internal/domain/workflow"
)

// EntityKind selects a transition table.
type EntityKind string

const (
	KindLead        EntityKind = "lead"
	KindStudent     EntityKind = "student"
	KindApplication EntityKind = "application"
	KindContract    EntityKind = "contract"
)

// Effect is a side effect the caller must fire after a successful edge.
type Effect string

const (
	EffectLockProfile     Effect = "lock_profile"
	EffectOpenLedger      Effect = "open_ledger"
	EffectAccrueCommission Effect = "accrue_commission"
	EffectNotify          Effect = "notify"
)

// Adjacency tables. Terminal statuses map to empty sets.
var leadTable = map[string][]string{
	models.LeadStatusNew:       {models.LeadStatusHot, models.LeadStatusCold, models.LeadStatusConverted, models.LeadStatusLost},
	models.LeadStatusHot:       {models.LeadStatusCold, models.LeadStatusConverted, models.LeadStatusLost},
	models.LeadStatusCold:      {models.LeadStatusHot, models.LeadStatusConverted, models.LeadStatusLost},
	models.LeadStatusConverted: {},
	models.LeadStatusLost:      {},
}

var studentTable = map[string][]string{
	models.StudentStatusPendingContract:       {models.StudentStatusActive},
	models.StudentStatusActive:                {models.StudentStatusDocumentsPending, models.StudentStatusSubmittedToAdmin},
	models.StudentStatusDocumentsPending:      {models.StudentStatusSubmittedToAdmin},
	models.StudentStatusSubmittedToAdmin:      {models.StudentStatusSubmittedToUniversity, models.StudentStatusDocumentsPending},
	models.StudentStatusSubmittedToUniversity: {models.StudentStatusOfferReceived},
	models.StudentStatusOfferReceived:         {},
}

var applicationTable = map[string][]string{
	models.ApplicationStatusDraft:            {models.ApplicationStatusPendingAdmin},
	models.ApplicationStatusPendingAdmin:     {models.ApplicationStatusApproved, models.ApplicationStatusRejected},
	models.ApplicationStatusApproved:         {models.ApplicationStatusSubmittedToUni},
	models.ApplicationStatusSubmittedToUni:   {models.ApplicationStatusReturnedBySchool, models.ApplicationStatusAccepted, models.ApplicationStatusDeclined},
	models.ApplicationStatusReturnedBySchool: {models.ApplicationStatusPendingAdmin},
	models.ApplicationStatusRejected:         {},
	models.ApplicationStatusAccepted:         {},
	models.ApplicationStatusDeclined:         {},
}

var contractTable = map[string][]string{
	models.ContractStatusDraft:            {models.ContractStatusPending},
	models.ContractStatusPending:          {models.ContractStatusPendingSignature, models.ContractStatusSigned},
	models.ContractStatusPendingSignature: {models.ContractStatusSigned, models.ContractStatusExpired},
	models.ContractStatusSigned:           {},
	models.ContractStatusExpired:          {},
	models.ContractStatusCancelled:        {},
}

var tables = map[EntityKind]map[string][]string{
	KindLead:        leadTable,
	KindStudent:     studentTable,
	KindApplication: applicationTable,
	KindContract:    contractTable,
}

type edge struct {
	kind     EntityKind
	from, to string
}

// Edges that require a specific role even though they exist in the table.
var roleGates = map[edge][]string{
	{KindApplication, models.ApplicationStatusDraft, models.ApplicationStatusPendingAdmin}:        {models.RoleStaff},
	{KindApplication, models.ApplicationStatusPendingAdmin, models.ApplicationStatusApproved}:     {models.RoleAdmin},
	{KindApplication, models.ApplicationStatusPendingAdmin, models.ApplicationStatusRejected}:     {models.RoleAdmin},
	{KindStudent, models.StudentStatusSubmittedToAdmin, models.StudentStatusSubmittedToUniversity}: {models.RoleAdmin},
	{KindStudent, models.StudentStatusSubmittedToAdmin, models.StudentStatusDocumentsPending}:      {models.RoleAdmin},
}

// Side effects fired by specific edges.
var effects = map[edge][]Effect{
	{KindLead, models.LeadStatusNew, models.LeadStatusConverted}:   {EffectOpenLedger, EffectNotify},
	{KindLead, models.LeadStatusHot, models.LeadStatusConverted}:   {EffectOpenLedger, EffectNotify},
	{KindLead, models.LeadStatusCold, models.LeadStatusConverted}:  {EffectOpenLedger, EffectNotify},
	{KindContract, models.ContractStatusPending, models.ContractStatusSigned}:          {EffectAccrueCommission},
	{KindContract, models.ContractStatusPendingSignature, models.ContractStatusSigned}: {EffectAccrueCommission},
	{KindStudent, models.StudentStatusActive, models.StudentStatusSubmittedToAdmin}:           {EffectLockProfile},
	{KindStudent, models.StudentStatusDocumentsPending, models.StudentStatusSubmittedToAdmin}: {EffectLockProfile},
	{KindStudent, models.StudentStatusSubmittedToAdmin, models.StudentStatusSubmittedToUniversity}: {EffectLockProfile, EffectNotify},
	{KindStudent, models.StudentStatusSubmittedToUniversity, models.StudentStatusOfferReceived}:    {EffectNotify},
	{KindApplication, models.ApplicationStatusApproved, models.ApplicationStatusSubmittedToUni}:    {EffectLockProfile},
}

// Can reports whether the edge from -> to is legal for the given entity
// kind and actor role. It returns nil when allowed, an invalid-transition
// failure when the edge is not in the table, and a forbidden failure when
// the edge exists but the role may not take it.
func Can(kind EntityKind, from, to, role string) error {
	table, ok := tables[kind]
	if !ok {
		return workflow.InvalidTransitionf("unknown entity kind %q", kind)
	}
	nexts, ok := table[from]
	if !ok {
		return workflow.InvalidTransitionf("%s: unknown status %q", kind, from)
	}
	allowed := false
	for _, n := range nexts {
		if n == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return workflow.InvalidTransitionf("%s: %s -> %s is not a legal transition", kind, from, to)
	}
	if roles, gated := roleGates[edge{kind, from, to}]; gated {
		for _, r := range roles {
			if r == role {
				return nil
			}
		}
		return workflow.Forbiddenf("%s: role %q may not move %s -> %s", kind, role, from, to)
	}
	return nil
}

// Effects returns the side effects the caller must fire after taking the
// edge. The list is empty for edges with no side effects.
func Effects(kind EntityKind, from, to string) []Effect {
	return effects[edge{kind, from, to}]
}

// Successors returns the legal next statuses for the given status, or nil
// for terminal or unknown statuses.
func Successors(kind EntityKind, from string) []string {
	table, ok := tables[kind]
	if !ok {
		return nil
	}
	return table[from]
}

// IsTerminal reports whether the status has no legal successors.
func IsTerminal(kind EntityKind, status string) bool {
	table, ok := tables[kind]
	if !ok {
		return false
	}
	nexts, known := table[status]
	return known && len(nexts) == 0
}
