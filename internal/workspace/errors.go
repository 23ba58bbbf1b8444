package workspace

import "errors"

var ErrClosed = errors.New("workspace: registry closed")
