package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/storage"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

	box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)
)

func row(b *strings.Builder, key, val string) {
	b.WriteString(dim.Render(fmt.Sprintf("%-22s", key)) + white.Render(val) + "\n")
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n" + cyan.Render(title) + "\n")
}

func writeMetrics(b *strings.Builder, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(b, name, fmt.Sprintf("%.6g", metrics[name]))
	}
}

func driftStyle(drift float64) lipgloss.Style {
	if drift > 1e-6 || drift < -1e-6 {
		return yellow
	}
	return green
}

func renderResult(runID string, cfg *config.Config, r *mc.Result) string {
	var b strings.Builder
	b.WriteString(cyan.Render(runID) + "\n")
	row(&b, "seed", fmt.Sprintf("%d", cfg.Seed))
	row(&b, "macro steps", fmt.Sprintf("%d", r.MacroSteps))
	row(&b, "initial energy (kT)", fmt.Sprintf("%.6g", r.InitialEnergy))
	row(&b, "final energy (kT)", fmt.Sprintf("%.6g", r.FinalEnergy))
	b.WriteString(dim.Render(fmt.Sprintf("%-22s", "drift")) + driftStyle(r.Drift).Render(fmt.Sprintf("%.3g", r.Drift)) + "\n")

	section(&b, "moves")
	for _, m := range r.Moves {
		row(&b, m.Name, fmt.Sprintf("%d trials, %.3f accepted", m.Trials, m.Acceptance))
	}

	section(&b, "metrics")
	writeMetrics(&b, r.Metrics)
	return box.Render(strings.TrimRight(b.String(), "\n"))
}

func renderMetadata(meta *storage.RunMetadata) string {
	var b strings.Builder
	b.WriteString(cyan.Render(meta.ID) + "\n")
	row(&b, "system", meta.Name)
	row(&b, "time", meta.Timestamp.Format("2006-01-02 15:04:05"))
	row(&b, "seed", fmt.Sprintf("%d", meta.Seed))
	row(&b, "macro steps", fmt.Sprintf("%d", meta.MacroSteps))
	row(&b, "final energy (kT)", fmt.Sprintf("%.6g", meta.FinalEnergy))
	b.WriteString(dim.Render(fmt.Sprintf("%-22s", "drift")) + driftStyle(meta.Drift).Render(fmt.Sprintf("%.3g", meta.Drift)) + "\n")

	section(&b, "moves")
	for _, m := range meta.Moves {
		row(&b, m.Name, fmt.Sprintf("%d/%d accepted (%.3f)", m.Accepted, m.Trials, m.Acceptance))
	}

	section(&b, "metrics")
	writeMetrics(&b, meta.Metrics)
	return box.Render(strings.TrimRight(b.String(), "\n"))
}

func renderInfo(cfg *config.Config, p *mc.Propagator) string {
	sys := p.System()
	s := sys.Accepted

	var b strings.Builder
	b.WriteString(cyan.Render(cfg.Name) + "\n")
	row(&b, "geometry", s.Geometry().Name())
	row(&b, "volume (Å³)", fmt.Sprintf("%.6g", s.Geometry().Volume()))
	row(&b, "particles", fmt.Sprintf("%d active / %d", s.ActiveCount(), s.NumParticles()))
	row(&b, "groups", fmt.Sprintf("%d", s.NumGroups()))
	row(&b, "energy terms", sys.Hamiltonian.Name())
	row(&b, "energy (kT)", fmt.Sprintf("%.6g", sys.Energy()))

	for _, m := range p.Moves() {
		section(&b, m.Name())
		b.WriteString(dim.Render(strings.TrimRight(m.Info(), "\n")) + "\n")
	}
	return box.Render(strings.TrimRight(b.String(), "\n"))
}
