// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
Ensure is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func Ensure(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureLeads(ctx, db); err != nil {
		problems = append(problems, "leads: "+err.Error())
	}
	if err := ensureStudents(ctx, db); err != nil {
		problems = append(problems, "students: "+err.Error())
	}
	if err := ensureApplications(ctx, db); err != nil {
		problems = append(problems, "applications: "+err.Error())
	}
	if err := ensureContracts(ctx, db); err != nil {
		problems = append(problems, "contracts: "+err.Error())
	}
	if err := ensureInvoices(ctx, db); err != nil {
		problems = append(problems, "invoices: "+err.Error())
	}
	if err := ensureDocuments(ctx, db); err != nil {
		problems = append(problems, "documents: "+err.Error())
	}
	if err := ensureUnlockRequests(ctx, db); err != nil {
		problems = append(problems, "unlock_requests: "+err.Error())
	}
	if err := ensureCommissions(ctx, db); err != nil {
		problems = append(problems, "commissions: "+err.Error())
	}
	if err := ensureAuditLog(ctx, db); err != nil {
		problems = append(problems, "audit_log: "+err.Error())
	}
	if err := ensureUniversities(ctx, db); err != nil {
		problems = append(problems, "universities: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	logger.Info("indexes ensured")
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))

		// 1) Load existing indexes
		existing := map[string]existingIndex{} // sig -> index
		cur, err := coll.Indexes().List(ctx)
		if err == nil {
			defer cur.Close(ctx)
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
		}

		if ex, ok := existing[desiredSig]; ok {
			// Same key pattern exists already.
			if sameBoolPtr(desiredUnique, ex.Unique) {
				// Name alignment: if the name differs, drop & recreate with the desired name.
				if desiredName != "" && ex.Name != desiredName {
					zap.L().Info("renaming index to align with desired name",
						zap.String("collection", coll.Name()),
						zap.String("from", ex.Name),
						zap.String("to", desiredName),
						zap.String("keys", desiredSig))

					if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
						errs = append(errs, fmt.Sprintf("%s(%s): rename drop failed: %v", coll.Name(), desiredName, err))
						continue
					}
					if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
						errs = append(errs, fmt.Sprintf("%s(%s): rename create failed: %v", coll.Name(), desiredName, err))
						continue
					}
					zap.L().Info("index renamed",
						zap.String("collection", coll.Name()),
						zap.String("name", desiredName),
						zap.String("keys", desiredSig),
						zap.String("took", time.Since(start).String()))
					continue
				}

				// Names aligned (or we don't care) → reuse
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Bool("unique", ex.Unique != nil && *ex.Unique),
					zap.String("took", time.Since(start).String()))
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
					errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
				} else {
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				}
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
			continue
		}

		// 2) No existing index with the same keys: create it.
		if created, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				// An index with these keys appeared under another name between
				// the List above and the CreateOne. Reload and reuse it.
				cur2, e2 := coll.Indexes().List(ctx)
				if e2 == nil {
					reused := false
					for cur2.Next(ctx) {
						var idx existingIndex
						if err := cur2.Decode(&idx); err != nil {
							continue
						}
						if keySig(idx.Key) == desiredSig && sameBoolPtr(desiredUnique, idx.Unique) {
							zap.L().Info("reusing existing index (post-conflict)",
								zap.String("collection", coll.Name()),
								zap.String("name", idx.Name),
								zap.String("keys", desiredSig))
							reused = true
							break
						}
					}
					cur2.Close(ctx)
					if reused {
						continue
					}
				}
			}

			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		} else {
			zap.L().Info("index ensured",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("created_name", created),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email must be unique across all users; login looks up by email.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Role-filtered lists (staff rosters, admin screens)
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "full_name", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_role_name_id"),
		},
	})
}

func ensureLeads(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("leads")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Pipeline boards: leads by status, newest first
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_leads_status_created"),
		},
		// Per-staff pipelines
		{
			Keys:    bson.D{{Key: "assigned_staff_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_leads_staff_created"),
		},
	})
}

func ensureStudents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("students")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One student per converted lead
		{
			Keys:    bson.D{{Key: "lead_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_students_lead"),
		},
		// Workflow queues: students by status
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_students_status_updated"),
		},
		// Per-staff caseloads
		{
			Keys:    bson.D{{Key: "assigned_staff_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_students_staff_status"),
		},
	})
}

func ensureApplications(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("university_applications")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// All applications for a student (case view)
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "batch", Value: 1}, {Key: "priority", Value: 1}},
			Options: options.Index().SetName("idx_apps_student_batch_priority"),
		},
		// Admin review queue
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "submitted_at", Value: 1}},
			Options: options.Index().SetName("idx_apps_status_submitted"),
		},
		// Per-university views
		{
			Keys:    bson.D{{Key: "university_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_apps_university_status"),
		},
	})
}

func ensureContracts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("contracts")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_contracts_student_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_contracts_status_expires"),
		},
	})
}

func ensureInvoices(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("invoices")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Invoice numbers are human-facing references and must be unique
		{
			Keys:    bson.D{{Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_invoices_number"),
		},
		// Statement view: every row for a student
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_invoices_student_created"),
		},
		// Collections queue: pending invoices by due date
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "due_date", Value: 1}},
			Options: options.Index().SetName("idx_invoices_status_due"),
		},
	})
}

func ensureDocuments(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("documents")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_docs_student_status"),
		},
		// Pre-submission gate counts unverified required documents
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "required", Value: 1}, {Key: "verified", Value: 1}},
			Options: options.Index().SetName("idx_docs_student_required_verified"),
		},
	})
}

func ensureUnlockRequests(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("unlock_requests")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Admin work queue: pending requests, oldest first
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_unlocks_status_created"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_unlocks_student_created"),
		},
	})
}

func ensureCommissions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("commission_records")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One commission per contract signature
		{
			Keys:    bson.D{{Key: "contract_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_commissions_contract"),
		},
		// Earnings statements per staff member
		{
			Keys:    bson.D{{Key: "staff_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_commissions_staff_created"),
		},
	})
}

func ensureAuditLog(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_entries")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Per-entity history, most recent first
		{
			Keys:    bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_entity_ts"),
		},
		// Per-actor history
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_ts"),
		},
		// Override reports (admin bypass review)
		{
			Keys:    bson.D{{Key: "override", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_override_ts"),
		},
	})
}

func ensureUniversities(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("universities")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_universities_name"),
		},
		{
			Keys:    bson.D{{Key: "country", Value: 1}, {Key: "ranking", Value: 1}},
			Options: options.Index().SetName("idx_universities_country_ranking"),
		},
	})
}
