package gpu

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const nvidiaSMIQuery = "index,name,memory.total,driver_version,clocks.gr,temperature.gpu"

// nvidiaSMIProvider implements GPU detection for NVIDIA GPUs using nvidia-smi.
type nvidiaSMIProvider struct {
	logger  Logger
	timeout time.Duration
}

// NewNvidiaSMIProvider creates a new nvidia-smi backend.
func NewNvidiaSMIProvider(logger Logger, timeout time.Duration) Provider {
	if logger == nil {
		logger = noopLogger{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &nvidiaSMIProvider{logger: logger, timeout: timeout}
}

func (p *nvidiaSMIProvider) Name() string {
	return BackendNvidiaSMI
}

func (p *nvidiaSMIProvider) IsAvailable() bool {
	_, err := exec.LookPath("nvidia-smi")
	return err == nil
}

func (p *nvidiaSMIProvider) Detect(ctx context.Context) ([]GPU, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu="+nvidiaSMIQuery,
		"--format=csv,noheader,nounits")
	output, err := cmd.Output()
	if err != nil {
		return nil, operationFailed("nvidia-smi", err)
	}

	gpus := p.parseOutput(string(output))
	if len(gpus) == 0 {
		return nil, operationFailed("nvidia-smi", fmt.Errorf("no GPUs in output"))
	}
	return gpus, nil
}

func (p *nvidiaSMIProvider) parseOutput(output string) []GPU {
	var gpus []GPU
	lines := strings.Split(output, "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 6 {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		gpu := GPU{
			Kind:          KindUnknown,
			Name:          nonEmpty(fields[1]),
			Vendor:        VendorName(0x10DE),
			DriverVersion: nonEmpty(fields[3]),
		}
		if totalMB, err := strconv.ParseUint(fields[2], 10, 64); err == nil {
			gpu.VRAM = totalMB
		}
		gpu.ClockSpeed = parseOptionalUint32(fields[4])
		gpu.Temperature = parseOptionalUint32(fields[5])

		gpus = append(gpus, gpu)
		p.logger.Debugf("Detected NVIDIA GPU[%s]: %s", fields[0], gpu.Name)
	}

	return gpus
}

// parseOptionalUint32 returns nil for "[N/A]", "[Not Supported]" and any
// other value that is not a plain number.
func parseOptionalUint32(s string) *uint32 {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return nil
	}
	u := uint32(v)
	return &u
}

func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}
