package easyjit

import (
	"fmt"
)

// CatchPanicOrError converts a panic inside f into an ordinary error.
// Used at API boundaries so that invariant violations deep in code
// generation surface as a compile error, not a crash of the caller.
func CatchPanicOrError(f func() error) error {
	var err error
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			var ok bool
			if err, ok = r.(error); !ok {
				err = fmt.Errorf("%v", r)
			}
		}()
		err = f()
	}()
	return err
}
