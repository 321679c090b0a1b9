package scrap

import "errors"

// ErrAggregate wraps any storage failure while building seller views
var ErrAggregate = errors.New("scrap aggregation failed")
