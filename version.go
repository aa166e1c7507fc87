package eventlog

// InstrumentationVersion is reported by the otel decorator package.
const InstrumentationVersion = "0.1.0"
