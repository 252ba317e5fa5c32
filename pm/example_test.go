package pm_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-mwpm/pm"
)

func ExampleAnalytic() {
	// Motion (3cos φ, sin φ, 0): three units east, one unit north
	e := pm.Analytic(3, -1i, 0, pm.Up)

	fmt.Printf("Major: %.2f, minor: %.2f\n", e.MajorNorm, e.MinorNorm)
	fmt.Printf("Rectilinearity: %.3f\n", e.Rectilinearity())
	fmt.Printf("Major azimuth: %.1f deg\n", math.Abs(e.MajorAzimuth())*180/math.Pi)

	// Output:
	// Major: 3.00, minor: 1.00
	// Rectilinearity: 0.667
	// Major azimuth: 90.0 deg
}

func ExampleRegularizeAngle() {
	az, _ := pm.RegularizeAngle(270, false)
	fmt.Println(az)

	// Output:
	// -90
}
