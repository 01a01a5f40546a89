package shutdown

import (
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// ExitFunc is swapped out in tests.
var ExitFunc = os.Exit

// SafeStater drives its actuators to a state that is safe to leave
// unattended.
type SafeStater interface {
	SafeState() error
}

// Shutdown puts the actuators in their safe state, releases hardware and
// exits cleanly.
func Shutdown(actuators SafeStater, closers ...io.Closer) {
	release(actuators, closers)
	ExitFunc(0)
}

func ShutdownWithError(err error, msg string, actuators SafeStater, closers ...io.Closer) {
	log.Error().Err(err).Msg(msg)
	release(actuators, closers)
	ExitFunc(1)
}

func release(actuators SafeStater, closers []io.Closer) {
	if actuators != nil {
		if err := actuators.SafeState(); err != nil {
			log.Error().Err(err).Msg("Failed to drive actuators to safe state")
		} else {
			log.Info().Msg("Actuators in safe state")
		}
	}
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to release hardware")
		}
	}
}
