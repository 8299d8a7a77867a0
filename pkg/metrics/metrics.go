// Package metrics defines the instrumentation seams the rest of the
// repo depends on. The interfaces are shaped so that the prometheus
// client's types satisfy them directly; tests substitute mocks.
package metrics

// Counter is a monotonically increasing value.
type Counter interface {

	// Inc increments the counter by one
	Inc()

	// Add increments the counter by the given amount
	Add(delta float64)
}

// Gauge is a value that can go up and down.
type Gauge interface {

	// Inc increments the gauge by one
	Inc()

	// Dec decrements the gauge by one
	Dec()

	// Set the gauge to an arbitrary value
	Set(value float64)
}

// Histogram records observations into buckets.
type Histogram interface {

	// Observe adds an observation
	Observe(value float64)
}
