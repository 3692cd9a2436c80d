package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/castawaylabs/statuspage"
)

// Summary writes a plain text report of s: the page status, the component
// tree and the unresolved incidents.
func Summary(w io.Writer, s statuspage.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s (%s)\n\n", s.Status.Description, s.Status.Indicator)

	groups := make(map[string]statuspage.Group)
	members := make(map[string]bool)
	for _, g := range s.Groups() {
		groups[g.ID] = g
		for _, m := range g.Members {
			members[m.ID] = true
		}
	}

	fmt.Fprintln(tw, "COMPONENT\tSTATUS")
	for _, c := range s.Components {
		if members[c.ID] {
			continue
		}

		fmt.Fprintf(tw, "%s\t%s\n", c.Name, Humanize(c.Status))
		for _, m := range groups[c.ID].Members {
			fmt.Fprintf(tw, "  %s\t%s\n", m.Name, Humanize(m.Status))
		}
	}

	open := s.UnresolvedIncidents()
	if len(open) > 0 {
		fmt.Fprintf(tw, "\nINCIDENT\tIMPACT\tSTATUS\n")
		for _, inc := range open {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", inc.Name, inc.Impact, Humanize(inc.Status))
		}
	}

	return tw.Flush()
}
