package app

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// ListStations prints the catalog with the amount of data stored per station.
func ListStations(opts Options, out io.Writer) error {
	svc, err := newServices(opts)
	if err != nil {
		return err
	}
	defer svc.close()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLAT\tLON\tREPORTS\tLATEST")
	for _, st := range svc.catalog {
		count, latest := svc.storedSummary(st)
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%d\t%s\n", st.ID, st.Name, st.Latitude, st.Longitude, count, latest)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write stations: %w", err)
	}
	return nil
}
