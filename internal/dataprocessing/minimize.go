package dataprocessing

import (
	"errors"
	"math"
)

// errNoConvergence is returned when minimizeBounded exhausts its iterations.
var errNoConvergence = errors.New("bounded minimisation did not converge")

// minimizeBounded finds a local minimum of f on [a, b] with Brent's method:
// parabolic interpolation steps, falling back to golden-section steps when
// the parabola is unreliable. xtol is the absolute tolerance on x.
func minimizeBounded(f func(float64) float64, a, b, xtol float64, maxIter int) (float64, float64, error) {
	const goldenRatio = 0.3819660112501051 // (3 − √5) / 2
	sqrtEps := math.Sqrt(2.220446049250313e-16)

	fulc := a + goldenRatio*(b-a)
	nfc, xf := fulc, fulc
	var rat, e float64
	fx := f(xf)
	ffulc, fnfc := fx, fx

	xm := 0.5 * (a + b)
	tol1 := sqrtEps*math.Abs(xf) + xtol/3
	tol2 := 2 * tol1

	for iter := 0; math.Abs(xf-xm) > tol2-0.5*(b-a); iter++ {
		if iter >= maxIter {
			return xf, fx, errNoConvergence
		}

		golden := true
		if math.Abs(e) > tol1 {
			golden = false
			r := (xf - nfc) * (fx - ffulc)
			q := (xf - fulc) * (fx - fnfc)
			p := (xf-fulc)*q - (xf-nfc)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			r = e
			e = rat

			if math.Abs(p) < math.Abs(0.5*q*r) && p > q*(a-xf) && p < q*(b-xf) {
				rat = p / q
				x := xf + rat
				if x-a < tol2 || b-x < tol2 {
					rat = tol1 * signOrOne(xm-xf)
				}
			} else {
				golden = true
			}
		}
		if golden {
			if xf >= xm {
				e = a - xf
			} else {
				e = b - xf
			}
			rat = goldenRatio * e
		}

		x := xf + signOrOne(rat)*math.Max(math.Abs(rat), tol1)
		fu := f(x)

		if fu <= fx {
			if x >= xf {
				a = xf
			} else {
				b = xf
			}
			fulc, ffulc = nfc, fnfc
			nfc, fnfc = xf, fx
			xf, fx = x, fu
		} else {
			if x < xf {
				a = x
			} else {
				b = x
			}
			if fu <= fnfc || nfc == xf {
				fulc, ffulc = nfc, fnfc
				nfc, fnfc = x, fu
			} else if fu <= ffulc || fulc == xf || fulc == nfc {
				fulc, ffulc = x, fu
			}
		}

		xm = 0.5 * (a + b)
		tol1 = sqrtEps*math.Abs(xf) + xtol/3
		tol2 = 2 * tol1
	}
	return xf, fx, nil
}

func signOrOne(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
