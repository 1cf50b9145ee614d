// Package universe defines the scannable US stock universe, grouped by
// sector themes.
package universe

import (
	"fmt"
	"sort"
	"strings"
)

var (
	AITech = []string{"PLTR", "AI", "IONQ", "BBAI", "SOUN", "UPST", "PATH", "RKLB",
		"SMCI", "SNOW", "DDOG", "MDB", "NET", "CRWD", "ZS"}

	Biotech = []string{"CRSP", "NTLA", "BEAM", "EDIT", "MRNA", "ARVN", "RCKT", "DNLI",
		"REGN", "VRTX", "EXAS", "INCY", "SRPT", "PCVX", "MDGL"}

	Fintech = []string{"SOFI", "AFRM", "HOOD", "COIN", "NU", "BILL", "FOUR", "TOST",
		"SQ", "MELI", "PYPL", "ADYEY", "RELY", "PAGS", "STNE"}

	CleanTech = []string{"ENPH", "SEDG", "FSLR", "RUN", "PLUG", "BE", "CHPT", "QS",
		"NOVA", "ARRY", "STEM", "ENVX", "SHLS", "DQ", "MAXN"}

	Semiconductors = []string{"AMD", "NVDA", "MRVL", "AVGO", "ON", "WOLF", "ACLS", "AEHR",
		"LSCC", "SITM", "CEVA", "FORM", "INDI", "ALGM", "RMBS"}

	EV = []string{"TSLA", "RIVN", "LCID", "NIO", "XPEV", "LI", "GOEV", "RIDE",
		"LAZR", "LIDR", "INVZ", "OUST", "MVIS", "ASTS", "LUNR"}

	Cybersecurity = []string{"PANW", "FTNT", "CYBR", "OKTA", "S", "TENB", "QLYS", "RPD",
		"VRNS", "SAIL", "RDWR", "RBRK", "CVLT", "MNDT", "NLTX"}

	Consumer = []string{"SHOP", "ROKU", "PINS", "SNAP", "DUOL", "DKNG", "ABNB", "DASH",
		"CHWY", "BROS", "CAVA", "CELH", "HIMS", "ONON", "BIRK"}
)

// Default covers the four core themes; Full is the complete 120-ticker scan set.
var (
	Default = concat(AITech, Biotech, Fintech, CleanTech)
	Full    = concat(AITech, Biotech, Fintech, CleanTech, Semiconductors, EV, Cybersecurity, Consumer)
)

var sectors = map[string][]string{
	"ai_tech":        AITech,
	"biotech":        Biotech,
	"fintech":        Fintech,
	"cleantech":      CleanTech,
	"semiconductors": Semiconductors,
	"ev":             EV,
	"cybersecurity":  Cybersecurity,
	"consumer":       Consumer,
	"all":            Default,
	"full":           Full,
}

// Sector resolves a sector key to its ticker list.
func Sector(name string) ([]string, error) {
	tickers, ok := sectors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown sector: %s (available: %v)", name, Sectors())
	}
	return tickers, nil
}

// Sectors lists the known sector keys, sorted.
func Sectors() []string {
	keys := make([]string, 0, len(sectors))
	for k := range sectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
