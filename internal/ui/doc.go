// Package ui renders the fixture's operator-facing output: the startup
// banner, the statistics report printed at exit, and startup failures.
//
// Output goes through a Printer bound to one writer. Styling uses Lipgloss
// with a renderer created for that writer, so colors only appear when the
// writer is a terminal; redirected output and test buffers get plain text.
//
//	p := ui.NewPrinter(os.Stdout)
//	p.Banner(ui.BannerInfo{Flavor: "https", Port: 8080, Secure: true})
//	...
//	p.Report(agg.Finalize())
package ui
