package optimizer

import (
	"math"
	"math/rand"
)

// sampleDirichletUniform draws one uniform-Dirichlet(1,...,1) sample of
// length n, which is the same as normalizing n independent Exp(1) draws.
func sampleDirichletUniform(rng *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	sum := 0.0
	for i := range v {
		v[i] = -math.Log(1 - rng.Float64())
		sum += v[i]
	}
	if sum <= 0 {
		for i := range v {
			v[i] = 1.0 / float64(n)
		}
		return v
	}
	for i := range v {
		v[i] /= sum
	}
	return v
}

// projectToSimplex projects v onto the probability simplex (sum=1, all >=0)
// via the standard sort-and-threshold algorithm (§4.7 "Repair").
func projectToSimplex(v []float64) []float64 {
	n := len(v)
	u := make([]float64, n)
	copy(u, v)
	for i := range u {
		if u[i] < 0 {
			u[i] = 0
		}
	}

	total := 0.0
	for _, x := range u {
		total += x
	}
	if total == 0 {
		w := make([]float64, n)
		for i := range w {
			w[i] = 1.0 / float64(n)
		}
		return w
	}

	sorted := make([]float64, n)
	copy(sorted, u)
	sortDesc(sorted)

	cssv := make([]float64, n)
	running := 0.0
	for i, x := range sorted {
		running += x
		cssv[i] = running
	}

	rho := -1
	for i := 0; i < n; i++ {
		if sorted[i]*float64(i+1) > cssv[i]-1 {
			rho = i
		}
	}
	if rho < 0 {
		rho = n - 1
	}
	theta := (cssv[rho] - 1) / float64(rho+1)

	w := make([]float64, n)
	sum := 0.0
	for i, x := range u {
		w[i] = math.Max(x-theta, 0)
		sum += w[i]
	}
	if sum <= 0 {
		for i := range w {
			w[i] = 1.0 / float64(n)
		}
		return w
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

func sortDesc(v []float64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] > v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

// sampleIndividual draws one random decision vector honoring bounds (§4.7
// "Sampling"): Dirichlet over proportions clipped to bounds and renormalized,
// uniform over the DMI scalar.
func sampleIndividual(rng *rand.Rand, b Bounds) []float64 {
	n := b.NIngredients()
	p := sampleDirichletUniform(rng, n)
	p = clipAndRenormalize(p, b.Lo[:n], b.Hi[:n])

	tLo, tHi := b.Lo[n], b.Hi[n]
	t := tLo
	if tHi > tLo {
		t = tLo + rng.Float64()*(tHi-tLo)
	}

	x := make([]float64, n+1)
	copy(x, p)
	x[n] = t
	return x
}

func clipAndRenormalize(p, lo, hi []float64) []float64 {
	out := make([]float64, len(p))
	sum := 0.0
	for i, v := range p {
		if v < lo[i] {
			v = lo[i]
		}
		if v > hi[i] {
			v = hi[i]
		}
		out[i] = v
		sum += v
	}
	if sum <= 0 {
		for i := range out {
			out[i] = 1.0 / float64(len(out))
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// repair projects a post-crossover/mutation decision vector back onto the
// feasible simplex+bounds region (§4.7 "Repair"): clamp DMI, project
// proportions to the simplex, clip to bounds, renormalize.
func repair(x []float64, b Bounds) []float64 {
	n := b.NIngredients()
	out := make([]float64, len(x))
	copy(out, x)

	t := out[n]
	if t < b.Lo[n] {
		t = b.Lo[n]
	}
	if t > b.Hi[n] {
		t = b.Hi[n]
	}
	out[n] = t

	p := projectToSimplex(out[:n])
	p = clipAndRenormalize(p, b.Lo[:n], b.Hi[:n])
	copy(out[:n], p)
	return out
}
