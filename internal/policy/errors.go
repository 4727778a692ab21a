package policy

import "errors"

// ErrForbidden is returned by callers when a policy decision denies an
// action. The evaluator itself only answers allow/deny; unauthenticated is
// decided earlier in the pipeline and not-found before policy runs.
var ErrForbidden = errors.New("forbidden")
