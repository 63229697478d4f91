package gpu

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const amdgpuVersionFile = "/sys/module/amdgpu/version"

// rocminfoProvider implements GPU detection for AMD GPUs using rocminfo.
type rocminfoProvider struct {
	logger   Logger
	timeout  time.Duration
	readFile func(name string) ([]byte, error)
}

// NewRocminfoProvider creates a new rocminfo backend.
func NewRocminfoProvider(logger Logger, timeout time.Duration) Provider {
	if logger == nil {
		logger = noopLogger{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &rocminfoProvider{logger: logger, timeout: timeout, readFile: os.ReadFile}
}

func (p *rocminfoProvider) Name() string {
	return BackendRocminfo
}

func (p *rocminfoProvider) IsAvailable() bool {
	_, err := exec.LookPath("rocminfo")
	return err == nil
}

func (p *rocminfoProvider) Detect(ctx context.Context) ([]GPU, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "rocminfo")
	output, err := cmd.Output()
	if err != nil {
		return nil, operationFailed("rocminfo", err)
	}

	gpus := p.parseRocminfoOutput(string(output))
	if len(gpus) == 0 {
		return nil, operationFailed("rocminfo", fmt.Errorf("no GPU agents in output"))
	}

	driver := p.detectDriverVersion()
	for i := range gpus {
		gpus[i].DriverVersion = driver
	}
	return gpus, nil
}

// parseRocminfoOutput collects every agent whose device type is GPU. Agents
// are separated by a line of asterisks followed by "Agent N".
func (p *rocminfoProvider) parseRocminfoOutput(output string) []GPU {
	var gpus []GPU
	lines := strings.Split(output, "\n")
	var current *GPU
	var deviceType string

	flush := func() {
		if current != nil && deviceType == "GPU" {
			if current.Name == "" {
				current.Name = Unknown
			}
			gpus = append(gpus, *current)
			p.logger.Debugf("Detected AMD GPU[%d]: %s, Memory: %d MB", len(gpus)-1, current.Name, current.VRAM)
		}
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if strings.HasPrefix(line, "******") && i+1 < len(lines) {
			nextLine := strings.TrimSpace(lines[i+1])
			if strings.HasPrefix(nextLine, "Agent") {
				flush()
				current = &GPU{Kind: KindUnknown, Vendor: Unknown, DriverVersion: Unknown}
				deviceType = ""
			}
			continue
		}

		if current == nil {
			continue
		}

		if line == "Pool 1" || strings.HasPrefix(line, "Pool 1:") {
			current.VRAM = parsePoolSize(lines[i+1:])
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "Marketing Name":
			if value != "" {
				current.Name = value
			}
		case "Name":
			if current.Name == "" && value != "" && !strings.HasPrefix(value, "amdgcn") {
				current.Name = value
			}
		case "Vendor Name":
			if strings.EqualFold(value, "AMD") {
				current.Vendor = VendorName(0x1002)
			} else if value != "" {
				current.Vendor = value
			}
		case "Device Type":
			deviceType = value
		case "Max Clock Freq. (MHz)":
			current.ClockSpeed = parseOptionalUint32(value)
		}
	}
	flush()

	return gpus
}

// parsePoolSize reads the "Size:" line of a memory pool block. rocminfo
// prints sizes like "16760832(0xffc000) KB".
func parsePoolSize(lines []string) uint64 {
	for j := 0; j < len(lines) && j < 10; j++ {
		key, value, ok := strings.Cut(strings.TrimSpace(lines[j]), ":")
		if !ok || strings.TrimSpace(key) != "Size" {
			continue
		}
		value = strings.TrimSpace(value)

		end := 0
		for end < len(value) && value[end] >= '0' && value[end] <= '9' {
			end++
		}
		n, err := strconv.ParseUint(value[:end], 10, 64)
		if err != nil {
			return 0
		}

		switch {
		case strings.HasSuffix(value, "KB"):
			return n / 1024
		case strings.HasSuffix(value, "MB"):
			return n
		case strings.HasSuffix(value, "GB"):
			return n * 1024
		default:
			return n / bytesPerMegabyte
		}
	}
	return 0
}

// detectDriverVersion reads the amdgpu kernel module version.
func (p *rocminfoProvider) detectDriverVersion() string {
	if data, err := p.readFile(amdgpuVersionFile); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v
		}
	}
	return Unknown
}
