// Package cmdlog wraps CLI commands with invocation metrics and a JSON
// outcome line. Each invocation carries its own id so the log lines of
// repeated stage commands against one output directory can be told apart.
package cmdlog

import (
	"time"

	"github.com/google/uuid"

	"flocks/internal/logging"
	"flocks/internal/metrics"
)

func Run(cmd string, f func() error) error {
	id := uuid.NewString()
	start := time.Now()
	metrics.IncCommandRun(cmd)
	err := f()
	fields := map[string]any{"invocation_id": id, "elapsed": time.Since(start).String()}
	if err != nil {
		metrics.IncCommandError(cmd)
		fields["error"] = err.Error()
		logging.Error(cmd+"_error", fields)
		return err
	}
	logging.Info(cmd+"_ok", fields)
	return err
}
