// Package report wraps a GPU enumeration in an inventory envelope with host
// facts and a content-derived ID, and renders it as a table, JSON or YAML.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"
	"gopkg.in/yaml.v3"

	"github.com/shepherd-project/gpuinfo/internal/gpu"
	"github.com/shepherd-project/gpuinfo/internal/logger"
)

// Output formats accepted by Encode.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatTable, FormatJSON, FormatYAML}

// Source runs GPU detection for a backend name. *gpu.Detector implements it.
type Source interface {
	Detect(ctx context.Context, backend string) (string, []gpu.GPU, error)
}

// Host describes the machine the report was taken on.
type Host struct {
	Hostname        string `json:"hostname" yaml:"hostname"`
	OS              string `json:"os" yaml:"os"`
	Platform        string `json:"platform,omitempty" yaml:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty" yaml:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty" yaml:"kernel_version,omitempty"`
	Arch            string `json:"arch" yaml:"arch"`
}

// Report is one GPU inventory snapshot.
type Report struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	CreatedAtMs int64     `json:"created_at_ms" yaml:"created_at_ms"`
	Backend     string    `json:"backend" yaml:"backend"`
	Host        Host      `json:"host" yaml:"host"`
	GPUs        []gpu.GPU `json:"gpus" yaml:"gpus"`
}

// hostInfo is replaced in tests.
var hostInfo = host.InfoWithContext

// Collect runs detection on source and wraps the result. Detection errors are
// returned unchanged so callers can still test them with gpu.IsNotSupported.
func Collect(ctx context.Context, source Source, backend string) (*Report, error) {
	name, gpus, err := source.Detect(ctx, backend)
	if err != nil {
		return nil, err
	}
	return New(ctx, name, gpus), nil
}

// New builds a report for an already enumerated GPU list.
func New(ctx context.Context, backend string, gpus []gpu.GPU) *Report {
	if gpus == nil {
		gpus = []gpu.GPU{}
	}
	r := &Report{
		CreatedAtMs: time.Now().UnixMilli(),
		Backend:     backend,
		Host:        collectHost(ctx),
		GPUs:        gpus,
	}
	r.ID = identify(r.Host, r.GPUs)
	return r
}

func collectHost(ctx context.Context) Host {
	h := Host{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	info, err := hostInfo(ctx)
	if err != nil {
		logger.Warnf("Failed to read host info: %v", err)
	}
	if info != nil {
		h.Hostname = info.Hostname
		h.Platform = info.Platform
		h.PlatformVersion = info.PlatformVersion
		h.KernelVersion = info.KernelVersion
		if info.OS != "" {
			h.OS = info.OS
		}
		if info.KernelArch != "" {
			h.Arch = info.KernelArch
		}
	}

	if h.Hostname == "" {
		if name, err := os.Hostname(); err == nil {
			h.Hostname = name
		}
	}
	return h
}

// identify derives a stable ID from the host and GPU list, so the same
// hardware always reports the same ID.
func identify(h Host, gpus []gpu.GPU) uuid.UUID {
	payload, err := json.Marshal(struct {
		Host Host      `json:"host"`
		GPUs []gpu.GPU `json:"gpus"`
	}{h, gpus})
	if err != nil {
		return uuid.Nil
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, payload)
}

// Encode writes r to w in the given format.
func (r *Report) Encode(w io.Writer, format string) error {
	switch format {
	case FormatTable, "":
		return r.encodeTable(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func (r *Report) encodeTable(w io.Writer) error {
	fmt.Fprintf(w, "Host:    %s (%s/%s)\n", r.Host.Hostname, r.Host.OS, r.Host.Arch)
	fmt.Fprintf(w, "Backend: %s\n", r.Backend)
	fmt.Fprintf(w, "Report:  %s\n\n", r.ID)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tVENDOR\tKIND\tVRAM (MB)\tDRIVER\tCLOCK (MHz)\tTEMP (C)")
	for i, g := range r.GPUs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			i, g.Name, g.Vendor, g.Kind, g.VRAM, g.DriverVersion,
			optional(g.ClockSpeed), optional(g.Temperature))
	}
	return tw.Flush()
}

func optional(v *uint32) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatUint(uint64(*v), 10)
}
