// Package audit records security-relevant actions as structured events.
//
// A Logger builds an Event from the request context (through optional
// extractors) plus per-call options and hands it to a Storage. Two storages
// ship with the package: SlogStorage writes events as log records and
// MemoryStorage keeps them in memory for tests.
//
//	auditLog := audit.NewLogger(audit.NewSlogStorage(log),
//		audit.WithRequestIDExtractor(requestid.Lookup),
//	)
//	_ = auditLog.Log(ctx, "session.revoke", audit.WithUserID(uid.String()))
//
// Session tokens must be passed through WithSessionID, which redacts them.
package audit
