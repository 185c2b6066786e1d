// internal/app/system/auditlog/recorder.go
package auditlog

import (
	"context"

	"github.com/jmassawe/edupath/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Modes control where audit entries go.
//
//	"all" — Mongo + zap
//	"db"  — Mongo only
//	"log" — zap only (no durable entry; dev use)
//	"off" — disabled
const (
	ModeAll = "all"
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Appender is the durable sink for audit entries. Satisfied by audit.Store
// and by the in-memory fake in testutil.
type Appender interface {
	Append(ctx context.Context, e audit.Entry) (primitive.ObjectID, error)
}

// Recorder writes every state-changing action to the audit store and mirrors
// it into structured logs. It is the only audit write path in the app.
type Recorder struct {
	store  Appender
	zapLog *zap.Logger
	mode   string
}

// New creates a Recorder. An empty mode means ModeAll.
func New(store Appender, zapLog *zap.Logger, mode string) *Recorder {
	if mode == "" {
		mode = ModeAll
	}
	return &Recorder{store: store, zapLog: zapLog, mode: mode}
}

func (r *Recorder) logToZap(e audit.Entry) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("action", e.Action),
		zap.String("entity_type", e.EntityType),
		zap.String("entity_id", e.EntityID.Hex()),
		zap.String("actor_id", e.ActorID.Hex()),
		zap.String("actor_role", e.ActorRole),
		zap.Bool("override", e.Override),
	}
	if e.PreviousValue != "" {
		fields = append(fields, zap.String("previous_value", e.PreviousValue))
	}
	if e.NewValue != "" {
		fields = append(fields, zap.String("new_value", e.NewValue))
	}
	r.zapLog.Info("audit event", fields...)
}

// Record appends one entry. In durable modes a failed append fails the
// enclosing operation; the lifecycle services rely on that to keep the
// one-entry-per-mutation invariant.
func (r *Recorder) Record(ctx context.Context, e audit.Entry) (primitive.ObjectID, error) {
	switch r.mode {
	case ModeOff:
		return primitive.NilObjectID, nil
	case ModeLog:
		r.logToZap(e)
		return primitive.NilObjectID, nil
	case ModeDB:
		return r.store.Append(ctx, e)
	default: // ModeAll
		id, err := r.store.Append(ctx, e)
		if err != nil {
			return primitive.NilObjectID, err
		}
		r.logToZap(e)
		return id, nil
	}
}
