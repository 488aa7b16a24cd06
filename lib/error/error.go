/*package error contains simple functions for reporting fatal nblist errors.
Both write the message to stderr, log it through the process-wide zap logger
and exit.
*/
package error

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/phil-mansfield/nblist/lib/logging"
)

// Overridden by tests.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// External reports an error and kills the program. It should be used when an
// error is something a user could reasonably be expected to fix through
// changes in configuration/data/environment. It has the same signature as
// the standard fmt.*printf() functions.
func External(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(stderr, "nblist exited early with the following error:\n%s\n",
		msg)

	log := logging.L()
	log.Error(msg, zap.String("kind", "external"))
	_ = log.Sync()
	exit(1)
}

// Internal reports an error along with a stack trace and kills the program.
// It should be used when the error requires a code dive to fix. It has the
// same signature as the standard fmt.*printf() functions.
func Internal(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	stack := debug.Stack()
	fmt.Fprintf(stderr, "nblist exited early with the following internal "+
		"error:\n%s\n\n%s", msg, stack)

	log := logging.L()
	log.Error(msg, zap.String("kind", "internal"),
		zap.ByteString("stack", stack))
	_ = log.Sync()
	exit(1)
}
