package compare

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"crywolf/internal/measure"
)

// ErrEmptySample is returned by MannWhitney when either sample is empty.
var ErrEmptySample = errors.New("empty sample")

// exactLimit is the sample size below which untied samples get an exact p-value.
const exactLimit = 8

// Test is the outcome of a two-sided Mann–Whitney U test.
type Test struct {
	N1 int     `json:"n1"`
	N2 int     `json:"n2"`
	U1 float64 `json:"u1"`
	U2 float64 `json:"u2"`
	P  float64 `json:"p"`

	// Z is the normal-approximation statistic; NA for exact tests.
	Z     measure.Value `json:"z"`
	Exact bool          `json:"exact"`

	// Effect is the rank-biserial r = 1 - 2*min(U1,U2)/(n1*n2).
	Effect float64 `json:"effect"`
	Ties   bool    `json:"ties"`
}

// MannWhitney runs the rank-sum test on two independent samples. Ties get
// average ranks. Small untied samples use the exact null distribution;
// otherwise the normal approximation with tie and continuity correction.
func MannWhitney(x, y []float64) (Test, error) {
	n1, n2 := len(x), len(y)
	if n1 == 0 || n2 == 0 {
		return Test{}, ErrEmptySample
	}

	ranks, tieTerm := rank(x, y)
	var r1 float64
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}
	prod := float64(n1 * n2)
	u1 := r1 - float64(n1*(n1+1))/2
	u2 := prod - u1

	t := Test{
		N1: n1, N2: n2, U1: u1, U2: u2,
		Effect: 1 - 2*math.Min(u1, u2)/prod,
		Ties:   tieTerm > 0,
	}
	umax := math.Max(u1, u2)

	if n1 < exactLimit && n2 < exactLimit && !t.Ties {
		t.Exact = true
		t.P = math.Min(1, 2*exactUpperTail(n1, n2, int(math.Round(umax))))
		return t, nil
	}

	n := float64(n1 + n2)
	variance := prod / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if variance <= 0 {
		t.P = 1
		return t, nil
	}
	z := (umax - prod/2 - 0.5) / math.Sqrt(variance)
	t.Z = measure.Of(z)
	t.P = math.Min(1, 2*distuv.UnitNormal.Survival(z))
	return t, nil
}

// rank returns average ranks of x followed by y, and sum(t^3 - t) over tie groups.
func rank(x, y []float64) ([]float64, float64) {
	type obs struct {
		v   float64
		idx int
	}
	all := make([]obs, 0, len(x)+len(y))
	for i, v := range x {
		all = append(all, obs{v, i})
	}
	for i, v := range y {
		all = append(all, obs{v, len(x) + i})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].v < all[j].v })

	ranks := make([]float64, len(all))
	var tieTerm float64
	for i := 0; i < len(all); {
		j := i
		for j+1 < len(all) && all[j+1].v == all[i].v {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[all[k].idx] = avg
		}
		if size := float64(j - i + 1); size > 1 {
			tieTerm += size*size*size - size
		}
		i = j + 1
	}
	return ranks, tieTerm
}

// exactUpperTail is P(U >= u) under the null for sample sizes n1, n2.
func exactUpperTail(n1, n2, u int) float64 {
	counts := exactCounts(n1, n2)
	var total, tail float64
	for k, c := range counts {
		total += c
		if k >= u {
			tail += c
		}
	}
	return tail / total
}

// exactCounts[u] is the number of orderings of n1+n2 untied observations
// giving U = u. Built from f(m,n,u) = f(m-1,n,u-n) + f(m,n-1,u).
func exactCounts(n1, n2 int) []float64 {
	f := make([][][]float64, n1+1)
	for m := 0; m <= n1; m++ {
		f[m] = make([][]float64, n2+1)
		for n := 0; n <= n2; n++ {
			f[m][n] = make([]float64, m*n+1)
			if m == 0 || n == 0 {
				f[m][n][0] = 1
				continue
			}
			for u := range f[m][n] {
				if u-n >= 0 && u-n < len(f[m-1][n]) {
					f[m][n][u] += f[m-1][n][u-n]
				}
				if u < len(f[m][n-1]) {
					f[m][n][u] += f[m][n-1][u]
				}
			}
		}
	}
	return f[n1][n2]
}
