// Package errors provides the engine's two error tiers: LogicError for
// design/build-time problems discovered by the builder, and ResultStatus
// for per-task runtime outcomes reported by treatments.
package errors

import "fmt"

// LogicErrorKind enumerates the structural problems the builder can detect.
type LogicErrorKind string

const (
	NoEntry               LogicErrorKind = "NO_ENTRY"
	NoContext             LogicErrorKind = "NO_CONTEXT"
	NoData                LogicErrorKind = "NO_DATA"
	NoFunction            LogicErrorKind = "NO_FUNCTION"
	NoModel               LogicErrorKind = "NO_MODEL"
	NoTreatment           LogicErrorKind = "NO_TREATMENT"
	UnconnectedInput      LogicErrorKind = "UNCONNECTED_INPUT"
	UnsatisfiedOutput     LogicErrorKind = "UNSATISFIED_OUTPUT"
	TypeMismatch          LogicErrorKind = "TYPE_MISMATCH"
	UnsetParameter        LogicErrorKind = "UNSET_PARAMETER"
	GenericUnresolved     LogicErrorKind = "GENERIC_UNRESOLVED"
	CycleNotBrokenByBlock LogicErrorKind = "CYCLE_NOT_BROKEN_BY_BLOCK"
	PanicDuringBuild      LogicErrorKind = "PANIC_DURING_BUILD"
	DuplicateIdentifier   LogicErrorKind = "DUPLICATE_IDENTIFIER"
	DuplicateLocalName    LogicErrorKind = "DUPLICATE_LOCAL_NAME"
)

// codeFor assigns a stable numeric code per kind. Codes are part of the
// public contract (spec.md §6) and must never be renumbered once assigned.
var codeFor = map[LogicErrorKind]int{
	NoEntry:               1000,
	NoContext:             1001,
	NoData:                1002,
	NoFunction:            1003,
	NoModel:               1004,
	NoTreatment:           1005,
	UnconnectedInput:      2000,
	UnsatisfiedOutput:     2001,
	TypeMismatch:          2002,
	UnsetParameter:        2003,
	GenericUnresolved:     2004,
	CycleNotBrokenByBlock: 2005,
	PanicDuringBuild:      3000,
	DuplicateIdentifier:   1006,
	DuplicateLocalName:    2006,
}

// DesignRef locates a LogicError within a design graph, when applicable.
type DesignRef struct {
	Treatment string
	LocalName string
	Detail    string
}

// LogicError is a coded, accumulated design-time error surfaced by genesis.
// The engine never panics on these; it records and keeps validating so a
// single genesis call can report every problem in the graph at once.
type LogicError struct {
	Kind       LogicErrorKind
	Code       int
	Identifier string
	Ref        *DesignRef
	Cause      error
}

// NewLogicError constructs a LogicError for the given kind and identifier.
func NewLogicError(kind LogicErrorKind, identifier string, ref *DesignRef, cause error) *LogicError {
	return &LogicError{
		Kind:       kind,
		Code:       codeFor[kind],
		Identifier: identifier,
		Ref:        ref,
		Cause:      cause,
	}
}

func (e *LogicError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("[E%d] %s: %s", e.Code, e.Kind, e.Identifier)
	if e.Ref != nil {
		msg = fmt.Sprintf("%s (in %s%s)", msg, e.Ref.Treatment, refSuffix(e.Ref))
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func refSuffix(ref *DesignRef) string {
	if ref.LocalName == "" {
		return ""
	}
	return fmt.Sprintf(".%s", ref.LocalName)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *LogicError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// LogicErrors accumulates every LogicError found during a genesis pass.
// Genesis never stops at the first violation; it keeps validating so
// callers see the full set in one batch (spec.md §7 policy 1).
type LogicErrors struct {
	errs []*LogicError
}

// Add appends a LogicError to the batch.
func (l *LogicErrors) Add(err *LogicError) {
	if err == nil {
		return
	}
	l.errs = append(l.errs, err)
}

// Empty reports whether no errors have been accumulated.
func (l *LogicErrors) Empty() bool {
	return l == nil || len(l.errs) == 0
}

// All returns every accumulated error in the order they were recorded.
func (l *LogicErrors) All() []*LogicError {
	if l == nil {
		return nil
	}
	return append([]*LogicError(nil), l.errs...)
}

// Codes returns the set of distinct numeric codes present in the batch,
// ignoring order — the only stability guarantee genesis makes (spec.md T8).
func (l *LogicErrors) Codes() []int {
	if l == nil {
		return nil
	}
	seen := make(map[int]struct{}, len(l.errs))
	var codes []int
	for _, e := range l.errs {
		if _, ok := seen[e.Code]; ok {
			continue
		}
		seen[e.Code] = struct{}{}
		codes = append(codes, e.Code)
	}
	return codes
}

func (l *LogicErrors) Error() string {
	if l.Empty() {
		return "no errors"
	}
	msg := fmt.Sprintf("%d logic error(s):", len(l.errs))
	for _, e := range l.errs {
		msg += "\n  " + e.Error()
	}
	return msg
}

// ResultStatusKind is the per-task runtime outcome a treatment reports.
type ResultStatusKind string

const (
	ResultOk    ResultStatusKind = "OK"
	ResultError ResultStatusKind = "ERROR"
)

// ResultStatus is returned by each cooperative task a treatment's prepare()
// spawns. A failed task closes the outputs it was writing to and reports
// here; it never aborts sibling tasks in the same track (spec.md §7.2).
type ResultStatus struct {
	Kind   ResultStatusKind
	Detail error
}

// Ok constructs a successful ResultStatus.
func Ok() ResultStatus { return ResultStatus{Kind: ResultOk} }

// Errored constructs a failed ResultStatus carrying the causing error.
func Errored(err error) ResultStatus { return ResultStatus{Kind: ResultError, Detail: err} }

// IsOk reports whether the task completed without error.
func (r ResultStatus) IsOk() bool { return r.Kind == ResultOk }

func (r ResultStatus) String() string {
	if r.IsOk() {
		return "ok"
	}
	return fmt.Sprintf("error: %v", r.Detail)
}
