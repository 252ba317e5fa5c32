package pm

import (
	"errors"
	"fmt"
	"math"
)

// ErrAbsurdAngle is returned by RegularizeAngle for inputs so large that
// wrapping them is almost certainly a units error upstream.
var ErrAbsurdAngle = errors.New("pm: absurd angle")

const absurdAngle = 1e5

// RegularizeAngle wraps phi into (-π, π] when radians is true and into
// (-180, 180] otherwise.
func RegularizeAngle(phi float64, radians bool) (float64, error) {
	if math.IsNaN(phi) || math.Abs(phi) > absurdAngle {
		return phi, fmt.Errorf("%w: %v", ErrAbsurdAngle, phi)
	}

	half := 180.0
	if radians {
		half = math.Pi
	}
	period := 2 * half

	phi = math.Mod(phi, period)
	if phi > half {
		phi -= period
	} else if phi <= -half {
		phi += period
	}
	return phi, nil
}
