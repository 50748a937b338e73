package config

// FqnDelimiter separates the segments of a fully-qualified name.
const FqnDelimiter = "."

// LangPackage is the namespace builtin types are registered under.
const LangPackage = "lang"

// NullToken is the string form of an absent value in string concatenation.
const NullToken = "null"

// DefaultConfigFile is looked up in the working directory by the CLI.
const DefaultConfigFile = "typecore.yaml"

// Cache strategies
const (
	StrategyWeak     = "weak"
	StrategyStrong   = "strong"
	StrategyExpiring = "expiring"
)

// Metric exporters
const (
	MetricsNone   = "none"
	MetricsStdout = "stdout"
)

// Defaults
const (
	DefaultDecimalPrecision = 34 // roughly decimal128
	DefaultCacheMaxEntries  = 100_000
	DefaultLogLevel         = "info"
)

// Operator symbols understood by the additive evaluator.
const (
	OpAdd         = "+"
	OpSubtract    = "-"
	OpAddAssign   = "+="
	OpSubAssign   = "-="
	OpNullSafeAdd = "?+"
	OpNullSafeSub = "?-"
)
