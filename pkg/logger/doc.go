// Package logger builds *slog.Logger values for code that embeds a state
// machine and provides attribute helpers that keep key names consistent
// between the engine and its adapters.
//
// New is the only constructor. It picks a text or JSON handler, applies the
// configured level and static attributes, and wraps the result in a
// LogHandlerDecorator that runs ContextExtractor callbacks on every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithDevelopment("session-server"),
//	    logger.WithContextValue("session", sessionKey),
//	)
//	log.Debug("entered state",
//	    logger.MachineID(m.ID()),
//	    logger.From("idle"),
//	    logger.To("active"),
//	)
//
// # Configuration
//
//   - WithDevelopment / WithProduction: per-environment defaults.
//   - WithFormat / WithTextFormatter / WithJSONFormatter: output format.
//   - WithLevel: minimum level. ParseLevel and ParseFormat turn config strings into values.
//   - WithAttr: static attributes.
//   - WithContextExtractors / WithContextValue: attributes pulled from context.
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
