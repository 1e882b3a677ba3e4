package diff

import "fmt"

// Aggregation is a named SQL aggregate with per-driver template
// overrides. Templates carry one %s placeholder for the quoted column.
type Aggregation struct {
	name     string
	def      string
	byDriver map[string]string
}

// Name returns the metric name the aggregation is registered under.
func (a Aggregation) Name() string { return a.name }

// Template returns the SQL template to use for driver, falling back to
// the default when the driver has no override.
func (a Aggregation) Template(driver string) string {
	if tmpl, ok := a.byDriver[driver]; ok {
		return tmpl
	}
	return a.def
}

// MetricRegistry holds the per-column aggregations the engine computes,
// in registration order.
type MetricRegistry struct {
	order  []string
	byName map[string]Aggregation
}

// NewMetricRegistry returns an empty registry.
func NewMetricRegistry() *MetricRegistry {
	return &MetricRegistry{byName: make(map[string]Aggregation)}
}

// DefaultMetricRegistry returns the standard metric set: mean and
// sample standard deviation. SQL Server spells the latter STDEV.
func DefaultMetricRegistry() *MetricRegistry {
	r := NewMetricRegistry()
	r.Register("mean", "AVG(%s)", nil)
	r.Register("stddev", "STDDEV(%s)", map[string]string{
		"sqlserver": "STDEV(%s)",
	})
	return r
}

// Register adds or replaces a metric. The expression and any overrides
// must contain exactly one %s placeholder.
func (r *MetricRegistry) Register(name, expression string, overrides map[string]string) {
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = Aggregation{name: name, def: expression, byDriver: overrides}
}

// Names returns the registered metric names in registration order.
func (r *MetricRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the aggregation registered under name.
func (r *MetricRegistry) Get(name string) (Aggregation, error) {
	agg, ok := r.byName[name]
	if !ok {
		return Aggregation{}, fmt.Errorf("unknown metric %q", name)
	}
	return agg, nil
}

// Aggregations returns all registered aggregations in registration order.
func (r *MetricRegistry) Aggregations() []Aggregation {
	out := make([]Aggregation, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
