package cli

import (
	"fmt"
	"io"

	"github.com/verdict-eval/verdict/condition"
	"github.com/verdict-eval/verdict/trace"
)

// renderResult writes the evaluation result and execution trail in the
// requested format.
func renderResult(w io.Writer, format, name string, matched bool, evalErr error, log []condition.Outcome) error {
	if format == "json" {
		return renderJSON(w, name, log)
	}
	return renderText(w, name, matched, evalErr, log)
}

// renderJSON emits the canonical trace snapshot.
func renderJSON(w io.Writer, name string, log []condition.Outcome) error {
	data, err := trace.NewSnapshot(name, log).MarshalCanonical()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// renderText emits a human-readable result line followed by the trail in
// completion order.
func renderText(w io.Writer, name string, matched bool, evalErr error, log []condition.Outcome) error {
	if evalErr != nil {
		fmt.Fprintf(w, "%s: error: %v\n", name, evalErr)
	} else {
		fmt.Fprintf(w, "%s: %t\n", name, matched)
	}

	for _, o := range log {
		switch o.Kind {
		case condition.OutcomeCompleted:
			fmt.Fprintf(w, "  %3d  %-10s %-24s matched=%-5t unit=%s took=%s\n",
				o.Seq, o.Kind, o.Alias, o.Matched, o.Unit, o.Duration())
		default:
			fmt.Fprintf(w, "  %3d  %-10s %-24s err=%v unit=%s took=%s\n",
				o.Seq, o.Kind, o.Alias, o.Err, o.Unit, o.Duration())
		}
	}
	return nil
}
