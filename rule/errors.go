package rule

import (
	"errors"
	"fmt"
)

// Error kinds named in the evaluation spec. The driver isolates
// ErrSelectAndTransform, ErrSelectAndCollect, ErrMatchConditions and
// ErrMatchIncase at per-rule granularity (warning log, continue); ErrCoercion
// reaches the driver wrapped in ErrMatchConditions; ErrDoEach propagates
// out of the FOREACH item that raised it; ErrTakeActionFailed is never
// recovered by the driver's per-rule scope, only by its catch-all.
var (
	ErrCoercion            = errors.New("coercion_error")
	ErrSelectAndTransform  = errors.New("select_and_transform_error")
	ErrSelectAndCollect    = errors.New("select_and_collect_error")
	ErrMatchConditions     = errors.New("match_conditions_error")
	ErrMatchIncase         = errors.New("match_incase_error")
	ErrDoEach              = errors.New("doeach_error")
	ErrTakeActionFailed    = errors.New("take_action_failed")
)

// errUndefinedKey reports a bare field-list entry whose expression is
// neither Var nor Const, so no output key can be derived. The source
// language returns the value itself as a key in this case (spec §9 open
// question); this reimplementation rejects it instead — see DESIGN.md O2.
func errUndefinedKey(expr Expr) error {
	return fmt.Errorf("%w: cannot derive an output key for bare field %T; add an alias", ErrSelectAndTransform, expr)
}
