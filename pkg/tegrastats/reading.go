package tegrastats

// Sample is a single observation extracted from one line.
type Sample struct {
	Field Field   `json:"field" yaml:"field"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
	Value float64 `json:"value" yaml:"value"`
}

// Reading holds everything extracted from one line.
type Reading struct {
	Samples []Sample `json:"samples" yaml:"samples"`

	// CoreCount is the number of entries in the CPU block, 0 when the line has none.
	CoreCount int `json:"core_count" yaml:"core_count"`
}

// Empty reports whether the line produced no samples.
func (r *Reading) Empty() bool {
	return r == nil || len(r.Samples) == 0
}

func (r *Reading) add(field Field, label string, value float64) {
	r.Samples = append(r.Samples, Sample{Field: field, Label: label, Value: value})
}
