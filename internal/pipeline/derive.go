package pipeline

// Derived statistics are pure functions over snapshot data. Consumers
// recompute them on demand; they are never cached in TargetStats.

// AverageRtt returns the mean of the non-timeout samples in the window.
// An empty or all-timeout window yields 0.
func AverageRtt(samples []float64) float64 {
	var sum float64
	var count int
	for _, sample := range samples {
		if sample < 0 {
			continue
		}
		sum += sample
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Jitter returns the mean absolute difference between consecutive valid
// samples. Pairs that straddle a timeout sentinel are skipped; fewer than
// two valid adjacent samples yields 0.
func Jitter(samples []float64) float64 {
	var sum float64
	var count int
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if prev < 0 || cur < 0 {
			continue
		}
		delta := cur - prev
		if delta < 0 {
			delta = -delta
		}
		sum += delta
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// LossPercent returns the all-time packet loss percentage. With no samples
// at all it yields 0.
func LossPercent(timeouts, received int) float64 {
	total := timeouts + received
	if total == 0 {
		return 0
	}
	return float64(timeouts) / float64(total) * 100
}
