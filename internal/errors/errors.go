package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// Kind is the stable discriminant carried by every error in this tool.
// Callers branch on Kind, never on message text.
type Kind int

const (
	// KindConfig - invalid or contradictory configuration
	KindConfig Kind = iota
	// KindInvalidPattern - a wildcard rule contains regex-only syntax
	KindInvalidPattern
	// KindPatternSource - a rules file could not be read
	KindPatternSource
	// KindNotVersioned - the target path has no repository metadata
	KindNotVersioned
	// KindEmptyHistory - the repository has no root commit
	KindEmptyHistory
	// KindDirtyWorktree - uncommitted changes present before a rewrite
	KindDirtyWorktree
	// KindBackupFailed - the pre-mutation backup ref could not be created
	KindBackupFailed
	// KindGitCommand - a git invocation exited non-zero
	KindGitCommand
	// KindRemovalFailed - the blob-removal tool exited non-zero
	KindRemovalFailed
	// KindRewriteFailed - the history-rewrite step exited non-zero
	KindRewriteFailed
	// KindVerifyFailed - post-mutation verification found the repo inconsistent
	KindVerifyFailed
)

// Class groups kinds into the three failure families: validation errors are
// always pre-mutation, input errors cover unreadable sources, external errors
// wrap tool invocations and are never retried.
type Class int

const (
	ClassValidation Class = iota
	ClassInput
	ClassExternal
)

// Error is a structured error with a stable kind and optional wrapped cause.
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Context    map[string]any
	StackTrace string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Class reports the failure family this error belongs to.
func (e *Error) Class() Class {
	switch e.Kind {
	case KindPatternSource:
		return ClassInput
	case KindBackupFailed, KindGitCommand, KindRemovalFailed, KindRewriteFailed, KindVerifyFailed:
		return ClassExternal
	default:
		return ClassValidation
	}
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Is matches errors by Kind so callers can use errors.Is with a bare kind marker.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// DetailedString returns a multi-line rendering with context and stack trace.
func (e *Error) DetailedString() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] [%s] %s\n", classString(e.Class()), KindString(e.Kind), e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}

	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
		}
	}

	if e.StackTrace != "" {
		sb.WriteString(fmt.Sprintf("Stack trace:\n%s\n", e.StackTrace))
	}

	return sb.String()
}

// KindString returns the stable string form of a kind, used in logs and JSON output.
func KindString(k Kind) string {
	switch k {
	case KindConfig:
		return "config_invalid"
	case KindInvalidPattern:
		return "invalid_pattern"
	case KindPatternSource:
		return "pattern_source"
	case KindNotVersioned:
		return "not_versioned"
	case KindEmptyHistory:
		return "empty_history"
	case KindDirtyWorktree:
		return "dirty_worktree"
	case KindBackupFailed:
		return "backup_failed"
	case KindGitCommand:
		return "git_command"
	case KindRemovalFailed:
		return "removal_failed"
	case KindRewriteFailed:
		return "rewrite_failed"
	case KindVerifyFailed:
		return "verification_failed"
	default:
		return "unknown"
	}
}

func classString(c Class) string {
	switch c {
	case ClassValidation:
		return "VALIDATION"
	case ClassInput:
		return "INPUT"
	case ClassExternal:
		return "EXTERNAL"
	default:
		return "UNKNOWN"
	}
}

// captureStackTrace captures the current stack trace
func captureStackTrace(skip int) string {
	var sb strings.Builder
	for i := skip; i < skip+10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			break
		}
		sb.WriteString(fmt.Sprintf("  %s:%d %s\n", file, line, fn.Name()))
	}
	return sb.String()
}

// New creates a new error with the given kind and message
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		Context:    make(map[string]any),
		StackTrace: captureStackTrace(2),
	}
}

// Wrap wraps an existing error under the given kind; returns nil for nil causes.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Kind:       kind,
		Message:    message,
		Cause:      err,
		Context:    make(map[string]any),
		StackTrace: captureStackTrace(2),
	}
}

// Convenience constructors, one per kind

// ConfigError creates a configuration error
func ConfigError(message string) *Error {
	return New(KindConfig, message)
}

// ConfigErrorf creates a configuration error with formatting
func ConfigErrorf(format string, args ...any) *Error {
	return New(KindConfig, fmt.Sprintf(format, args...))
}

// InvalidPattern reports a rule source that cannot be compiled.
func InvalidPattern(pattern, detail string) *Error {
	return New(KindInvalidPattern, fmt.Sprintf("invalid pattern %q: %s", pattern, detail)).
		WithContext("pattern", pattern)
}

// PatternSource wraps a failure to read a rules source.
func PatternSource(err error, path string) *Error {
	return Wrap(err, KindPatternSource, fmt.Sprintf("cannot read rules file %s", path)).
		WithContext("path", path)
}

// NotVersioned reports a target path with no repository metadata.
func NotVersioned(path string) *Error {
	return New(KindNotVersioned, fmt.Sprintf("%s is not a git repository", path)).
		WithContext("path", path)
}

// EmptyHistory reports a repository without a root commit. An empty branch
// names the whole repository.
func EmptyHistory(branch string) *Error {
	if branch == "" {
		return New(KindEmptyHistory, "repository has no commits")
	}
	return New(KindEmptyHistory, fmt.Sprintf("branch %s has no commits", branch)).
		WithContext("branch", branch)
}

// DirtyWorktree reports uncommitted changes blocking a rewrite.
func DirtyWorktree() *Error {
	return New(KindDirtyWorktree, "working tree has uncommitted changes; commit or stash them first")
}

// BackupFailed wraps a failure to create the pre-mutation backup ref.
func BackupFailed(err error, ref string) *Error {
	return Wrap(err, KindBackupFailed, fmt.Sprintf("cannot create backup ref %s", ref)).
		WithContext("ref", ref)
}

// GitCommand wraps a non-zero git exit, keeping stderr for diagnostics.
func GitCommand(err error, args []string, stderr string) *Error {
	e := Wrap(err, KindGitCommand, fmt.Sprintf("git %s failed", strings.Join(args, " "))).
		WithContext("args", strings.Join(args, " "))
	if stderr != "" {
		e = e.WithContext("stderr", strings.TrimSpace(stderr))
	}
	return e
}

// RemovalFailed wraps a blob-removal tool failure.
func RemovalFailed(err error, command string) *Error {
	return Wrap(err, KindRemovalFailed, fmt.Sprintf("removal command failed: %s", command)).
		WithContext("command", command)
}

// RewriteFailed wraps a history-rewrite failure.
func RewriteFailed(err error, detail string) *Error {
	return Wrap(err, KindRewriteFailed, fmt.Sprintf("history rewrite failed: %s", detail))
}

// VerifyFailed reports a post-mutation verification mismatch.
func VerifyFailed(message string) *Error {
	return New(KindVerifyFailed, message)
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// GetKind returns the kind of an error, or KindGitCommand for foreign errors.
func GetKind(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindGitCommand
}
