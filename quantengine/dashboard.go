// Default dashboard script, loaded at startup by the daemon's bootstrap
// loader and executed with the yaegi interpreter. Replace it (or edit it
// with loader.watch enabled) to customize the dashboard panel.
//
// Scripts may additionally import "quantd/host" for the daemon API:
// host.Version, host.Logf, host.Sectors, host.SectorTickers,
// host.StrategyKeys.
package main

import (
	"fmt"
	"strings"
	"time"
)

func main() {
	fmt.Println("dashboard script ready")
}

// Render supplies the HTML body served at the dashboard root.
func Render() string {
	var b strings.Builder
	b.WriteString("<h1>quantd dashboard</h1>\n")
	fmt.Fprintf(&b, "<p>loaded at %s</p>\n", time.Now().Format(time.RFC3339))
	b.WriteString(`<ul>
<li><a href="/api/v1/rankings">latest rankings</a></li>
<li><a href="/api/v1/strategies">strategies</a></li>
<li><a href="/api/v1/loader/status">loader status</a></li>
<li><a href="/metrics">metrics</a></li>
</ul>
`)
	return b.String()
}
