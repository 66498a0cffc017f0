package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/balancerbattle/wsfixture/internal/server"
	"github.com/balancerbattle/wsfixture/internal/stats"
)

// Printer writes styled output to a single writer
type Printer struct {
	out    io.Writer
	styles styles
}

// NewPrinter returns a printer whose styling matches w's capabilities
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		out:    w,
		styles: newStyles(lipgloss.NewRenderer(w), terminalWidth(w)),
	}
}

// BannerInfo describes a successfully bound server
type BannerInfo struct {
	Flavor      string
	Port        int
	Address     string
	Secure      bool
	Credentials string // where TLS material came from, empty for plain
	Version     string
}

// Banner announces that the server is listening. The first line is stable
// so scripts can wait for it.
func (p *Printer) Banner(info BannerInfo) {
	headline := fmt.Sprintf("BalancerBattleApp (flavor: %s) is listening on port %d", info.Flavor, info.Port)

	params := [][2]string{
		{"Address", info.Address},
		{"TLS", fmt.Sprintf("%t", info.Secure)},
	}
	if info.Credentials != "" {
		params = append(params, [2]string{"Credentials", info.Credentials})
	}
	if info.Version != "" {
		params = append(params, [2]string{"Version", info.Version})
	}

	lines := make([]string, 0, len(params))
	for _, kv := range params {
		lines = append(lines, p.styles.paramKey.Render(kv[0]+":")+p.styles.paramValue.Render(kv[1]))
	}

	fmt.Fprintln(p.out, p.styles.banner.Render(headline))
	fmt.Fprintln(p.out, p.styles.box.Render(strings.Join(lines, "\n")))
}

// ReportLines returns the statistics block, one counter per line
func ReportLines(s stats.Snapshot) [][2]string {
	return [][2]string{
		{"Connections established", fmt.Sprint(s.ConnectionsEstablished)},
		{"Connections disconnected", fmt.Sprint(s.ConnectionsClosed)},
		{"Messages received", fmt.Sprint(s.MessagesReceived)},
		{"Messages failed", fmt.Sprint(s.EchoFailures)},
	}
}

// Report prints the final statistics block
func (p *Printer) Report(s stats.Snapshot) {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(p.styles.title.Render("Statistics:"))
	b.WriteString("\n")
	for _, kv := range ReportLines(s) {
		b.WriteString("  - ")
		b.WriteString(p.styles.counterKey.Render(kv[0]))
		b.WriteString(" ")
		b.WriteString(p.styles.counterVal.Render(kv[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	_, _ = io.WriteString(p.out, b.String())
}

// StartupError prints a fatal startup diagnostic
func (p *Printer) StartupError(err error) {
	title := "Failed to start, due to reasons"

	var listenErr *server.ListenError
	if errors.As(err, &listenErr) {
		title = fmt.Sprintf("Failed to listen on %s, due to reasons", listenErr.Addr)
		err = listenErr.Err
	}

	fmt.Fprintln(p.out, p.styles.errTitle.Render(title))
	fmt.Fprintln(p.out, p.styles.errDetail.Render("  - "+err.Error()))
}
