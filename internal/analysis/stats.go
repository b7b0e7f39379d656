package analysis

import (
	"math"
	"sort"
)

// NumSummary is the describe() row for one numeric column.
type NumSummary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe computes count, mean, sample std, min, quartiles and max.
// The zero value is returned for an empty input.
func Describe(vals []float64) NumSummary {
	if len(vals) == 0 {
		return NumSummary{}
	}
	cp := sortedCopy(vals)
	var sum float64
	for _, v := range cp {
		sum += v
	}
	mean := sum / float64(len(cp))
	var std float64
	if len(cp) > 1 {
		var ss float64
		for _, v := range cp {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(len(cp)-1))
	}
	return NumSummary{
		Count:  len(cp),
		Mean:   mean,
		Std:    std,
		Min:    cp[0],
		Q25:    quantile(cp, 0.25),
		Median: quantile(cp, 0.5),
		Q75:    quantile(cp, 0.75),
		Max:    cp[len(cp)-1],
	}
}

// Bin is one equal-width histogram bucket. Lo is inclusive; Hi is exclusive
// except for the last bin.
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Histogram splits vals into n equal-width bins between the min and max.
// A constant input is centred in a unit-wide range.
func Histogram(vals []float64, n int) []Bin {
	if len(vals) == 0 || n <= 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	bins[n-1].Hi = hi
	for _, v := range vals {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}

// Box holds box-and-whisker statistics. Whiskers reach the most extreme
// values within 1.5 IQR of the quartiles; values beyond are outliers.
type Box struct {
	N        int
	Q1       float64
	Median   float64
	Q3       float64
	Low      float64
	High     float64
	Outliers []float64
}

// BoxStats computes box plot statistics for vals.
func BoxStats(vals []float64) Box {
	if len(vals) == 0 {
		return Box{}
	}
	cp := sortedCopy(vals)
	b := Box{
		N:      len(cp),
		Q1:     quantile(cp, 0.25),
		Median: quantile(cp, 0.5),
		Q3:     quantile(cp, 0.75),
	}
	iqr := b.Q3 - b.Q1
	loFence, hiFence := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.Low, b.High = b.Q1, b.Q3
	for _, v := range cp {
		if v >= loFence {
			b.Low = v
			break
		}
	}
	for i := len(cp) - 1; i >= 0; i-- {
		if cp[i] <= hiFence {
			b.High = cp[i]
			break
		}
	}
	for _, v := range cp {
		if v < loFence || v > hiFence {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := sortedCopy(vals)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// robustOutliers counts values whose robust z-score exceeds thr.
func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

// pearson accumulates sums for a pairwise-complete correlation.
type pearson struct {
	n, sumX, sumY, sumXX, sumYY, sumXY float64
}

func (p *pearson) add(x, y float64) {
	p.n++
	p.sumX += x
	p.sumY += y
	p.sumXX += x * x
	p.sumYY += y * y
	p.sumXY += x * y
}

// r returns the coefficient; ok is false when it is undefined.
func (p *pearson) r() (float64, bool) {
	if p == nil || p.n < 2 {
		return 0, false
	}
	denom := math.Sqrt((p.n*p.sumXX - p.sumX*p.sumX) * (p.n*p.sumYY - p.sumY*p.sumY))
	if denom == 0 || math.IsNaN(denom) {
		return 0, false
	}
	r := (p.n*p.sumXY - p.sumX*p.sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

func sortedCopy(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
