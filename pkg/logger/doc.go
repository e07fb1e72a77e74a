// Package logger builds *slog.Logger instances for the service and provides
// attribute constructors that keep key names consistent across packages.
//
// New assembles a text or JSON handler from functional options and wraps it
// with LogHandlerDecorator, which pulls request-scoped values such as the
// request id out of the context on every record.
//
// Attribute helpers that carry credentials redact them: SessionID keeps only
// a short prefix of the token so log lines can be correlated without
// exposing a usable session.
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "sessionguard"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "session created",
//	    logger.UserID(userID),
//	    logger.SessionID(sess.Token),
//	    logger.IP(sess.IP),
//	)
package logger
