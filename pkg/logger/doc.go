// Package logger provides slog helpers shared across notifykit packages.
//
// It contains a small factory for building a configured *slog.Logger and a
// set of attribute constructors so that log records use consistent keys
// (user_id, notification_id, delivery_status, ...) everywhere in the engine.
//
// # Usage
//
//	log := logger.New(logger.WithJSONFormatter(), logger.WithLevel(slog.LevelDebug))
//
//	log.LogAttrs(ctx, slog.LevelInfo, "notification delivered",
//	    logger.NotificationID(req.ID),
//	    logger.UserID(req.TargetUserID),
//	)
package logger
