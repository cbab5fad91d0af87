package materials

import "errors"

// ErrConcurrentInsert means an insert lost a uniqueness race and the winning row
// was not yet visible. The caller's transaction should be retried.
var ErrConcurrentInsert = errors.New("concurrent insert not visible")
