package importer

import "fmt"

// ErrorKind classifies import failures. Only SourceUnavailable aborts the
// run; everything else is recorded and the pipeline continues with the next
// record or relationship.
type ErrorKind int

const (
	// SourceUnavailable: missing file, unreachable data store. Fatal.
	SourceUnavailable ErrorKind = iota + 1
	// MalformedRecord: per-record bad data, e.g. a missing email.
	MalformedRecord
	// ConstraintSkip: duplicate key or rejected self-reference.
	ConstraintSkip
	// UnresolvedReference: a relationship points at an email no source
	// ever produced a user for.
	UnresolvedReference
)

func (k ErrorKind) String() string {
	switch k {
	case SourceUnavailable:
		return "source_unavailable"
	case MalformedRecord:
		return "malformed_record"
	case ConstraintSkip:
		return "constraint_skip"
	case UnresolvedReference:
		return "unresolved_reference"
	}
	return "unknown"
}

// ImportError carries the failure class alongside the source and the record
// reference (usually an email) it occurred on.
type ImportError struct {
	Kind   ErrorKind
	Source string
	Ref    string
	Err    error
}

func (e *ImportError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Source, e.Kind)
	if e.Ref != "" {
		msg += " (" + e.Ref + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error { return e.Err }
