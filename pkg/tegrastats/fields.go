package tegrastats

// Reduction is how a field's samples collapse into one value per window.
type Reduction int

const (
	Mean Reduction = iota
	Max
)

func (r Reduction) String() string {
	switch r {
	case Max:
		return "max"
	default:
		return "mean"
	}
}

// Field is one monitored quantity reported by tegrastats.
type Field struct {
	Name      string
	Unit      string
	Reduction Reduction
	// LabelKey is the partition label name, empty for unlabeled fields.
	LabelKey string
}

var (
	CPUUsage    = Field{Name: "cpu_usage", Unit: "percent", Reduction: Mean, LabelKey: "core"}
	GPUUsage    = Field{Name: "gpu_usage", Unit: "percent", Reduction: Max}
	GPUFreq     = Field{Name: "gpu_freq", Unit: "MHz", Reduction: Mean}
	RAMUsed     = Field{Name: "ram_used", Unit: "MB", Reduction: Mean}
	RAMTotal    = Field{Name: "ram_total", Unit: "MB", Reduction: Mean}
	SwapUsed    = Field{Name: "swap_used", Unit: "MB", Reduction: Mean}
	SwapTotal   = Field{Name: "swap_total", Unit: "MB", Reduction: Mean}
	Temperature = Field{Name: "temperature", Unit: "celsius", Reduction: Mean, LabelKey: "sensor"}
	Power       = Field{Name: "power", Unit: "watts", Reduction: Mean, LabelKey: "rail"}
)

// Fields lists every field the parser extracts, in publish order.
var Fields = []Field{
	CPUUsage,
	GPUUsage,
	GPUFreq,
	RAMUsed,
	RAMTotal,
	SwapUsed,
	SwapTotal,
	Temperature,
	Power,
}

// TemperatureSensors are the thermal zones read from a line.
var TemperatureSensors = []string{"cpu", "gpu", "soc0", "soc1", "soc2", "tj"}

// PowerRails are the supply domains read from a line.
var PowerRails = []string{"VDD_IN", "VDD_CPU_GPU_CV", "VDD_SOC"}

// CPUTotalLabel is the core label of the overall cpu usage value.
const CPUTotalLabel = "total"

// Labeled reports whether samples of this field carry a partition label.
func (f Field) Labeled() bool {
	return f.LabelKey != ""
}

// FixedLabels returns the label values known ahead of time for this field.
// Per-core cpu labels depend on the device and are not fixed.
func (f Field) FixedLabels() []string {
	switch f {
	case Temperature:
		return TemperatureSensors
	case Power:
		return PowerRails
	}
	return nil
}

func (f Field) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.Name + `"`), nil
}

func (f Field) MarshalYAML() (interface{}, error) {
	return f.Name, nil
}
