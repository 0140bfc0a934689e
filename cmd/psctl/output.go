package main

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"
	"text/tabwriter"

	"github.com/pitabwire/pscale/operation"
)

// listFlags are shared by every list command.
type listFlags struct {
	perPage int
	limit   int
}

// column renders one table column of T.
type column[T any] struct {
	header string
	value  func(T) string
}

// printList drains seq, honouring limit, and prints the items as a table or
// as a JSON array.
func printList[T any](a *app, seq iter.Seq2[T, error], limit int, cols []column[T]) error {
	if limit > 0 {
		seq = operation.Take(seq, limit)
	}
	items, err := operation.Collect(seq)
	if err != nil {
		return err
	}
	if a.jsonOutput {
		return writeJSON(a.stdout, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.stdout, "No results.")
		return nil
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.header
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, item := range items {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.value(item)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
