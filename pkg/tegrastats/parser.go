package tegrastats

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ramRegex   = regexp.MustCompile(`\bRAM\s+(\d+)/(\d+)MB`)
	swapRegex  = regexp.MustCompile(`\bSWAP\s+(\d+)/(\d+)MB`)
	cpuRegex   = regexp.MustCompile(`\bCPU\s+\[(.*?)\]`)
	coreRegex  = regexp.MustCompile(`^(\d+(?:\.\d+)?)%(?:@\d+)?`)
	gpuRegex   = regexp.MustCompile(`\bGR3D_FREQ\s+(\d+(?:\.\d+)?)%(?:@\[?(\d+))?`)
	tempRegex  = regexp.MustCompile(`\b(cpu|gpu|soc0|soc1|soc2|tj)@(\d+(?:\.\d+)?)C\b`)
	powerRegex = regexp.MustCompile(`\b(VDD_IN|VDD_CPU_GPU_CV|VDD_SOC)\s+(\d+)mW/(\d+)mW`)
)

const offlineCore = "off"

// Parse extracts every recognized field from a single tegrastats line, e.g.
//
//	RAM 3164/7620MB (lfb 29x4MB) SWAP 51/3810MB (cached 0MB) CPU [37%@1344,off,25%@1344] GR3D_FREQ 0% cpu@57.125C VDD_IN 9349mW/9349mW
//
// Fields missing from the line, or whose numbers cannot be read, yield no sample.
func Parse(line string) *Reading {
	r := &Reading{}

	parsePair(r, ramRegex, line, RAMUsed, RAMTotal)
	parsePair(r, swapRegex, line, SwapUsed, SwapTotal)
	parseCores(r, line)
	parseGPU(r, line)
	parseTemperatures(r, line)
	parsePower(r, line)

	return r
}

func parsePair(r *Reading, re *regexp.Regexp, line string, used, total Field) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return
	}
	if v, ok := parseFloat(m[1]); ok {
		r.add(used, "", v)
	}
	if v, ok := parseFloat(m[2]); ok {
		r.add(total, "", v)
	}
}

// parseCores assigns core indexes by position in the bracketed list. An
// unreadable entry still takes its position so later cores keep their index.
func parseCores(r *Reading, line string) {
	m := cpuRegex.FindStringSubmatch(line)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return
	}

	entries := strings.Split(m[1], ",")
	r.CoreCount = len(entries)
	for idx, entry := range entries {
		entry = strings.TrimSpace(entry)
		label := strconv.Itoa(idx)
		if strings.HasPrefix(entry, offlineCore) {
			r.add(CPUUsage, label, 0)
			continue
		}
		cm := coreRegex.FindStringSubmatch(entry)
		if cm == nil {
			continue
		}
		if v, ok := parseFloat(cm[1]); ok {
			r.add(CPUUsage, label, v)
		}
	}
}

func parseGPU(r *Reading, line string) {
	m := gpuRegex.FindStringSubmatch(line)
	if m == nil {
		return
	}
	if v, ok := parseFloat(m[1]); ok {
		r.add(GPUUsage, "", v)
	}
	if m[2] == "" {
		return
	}
	if v, ok := parseFloat(m[2]); ok {
		r.add(GPUFreq, "", v)
	}
}

func parseTemperatures(r *Reading, line string) {
	for _, m := range tempRegex.FindAllStringSubmatch(line, -1) {
		if v, ok := parseFloat(m[2]); ok {
			r.add(Temperature, m[1], v)
		}
	}
}

// parsePower keeps the instantaneous reading and converts it to watts.
func parsePower(r *Reading, line string) {
	for _, m := range powerRegex.FindAllStringSubmatch(line, -1) {
		if v, ok := parseFloat(m[2]); ok {
			r.add(Power, m[1], v/1000)
		}
	}
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
