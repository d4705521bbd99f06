package types

type ProjectKind string

const (
	ProjectKindUv  ProjectKind = "uv"
	ProjectKindNpm ProjectKind = "npm"
)

type IndexBackend string

const (
	IndexBackendPypiJSON    IndexBackend = "pypi-json"
	IndexBackendPipSimple   IndexBackend = "pip-simple"
	IndexBackendPipCommand  IndexBackend = "pip-command"
	IndexBackendNpmRegistry IndexBackend = "npm-registry"
	IndexBackendNpmCommand  IndexBackend = "npm-command"
)

type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// InexactPinPolicy decides what happens to manifest entries that are
// constrained by a range rather than an exact version.
type InexactPinPolicy string

const (
	InexactPinPolicyExclude InexactPinPolicy = "exclude"
	InexactPinPolicyBound   InexactPinPolicy = "bound"
)

type ConstraintOp string

const (
	ConstraintOpNone      ConstraintOp = ""
	ConstraintOpEq        ConstraintOp = "="
	ConstraintOpEq2       ConstraintOp = "=="
	ConstraintOpArbitrary ConstraintOp = "==="
	ConstraintOpNe        ConstraintOp = "!="
	ConstraintOpCompat    ConstraintOp = "~="
	ConstraintOpGte       ConstraintOp = ">="
	ConstraintOpLte       ConstraintOp = "<="
	ConstraintOpGt        ConstraintOp = ">"
	ConstraintOpLt        ConstraintOp = "<"
	ConstraintOpCaret     ConstraintOp = "^"
	ConstraintOpTilde     ConstraintOp = "~"
)
