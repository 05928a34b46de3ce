package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/memolab/internal/demo"
	"github.com/vango-dev/memolab/internal/errors"
	"github.com/vango-dev/memolab/internal/eventlog"
	"github.com/vango-dev/memolab/pkg/scope"
)

// step is one action of a run, written action or action=arg.
type step struct {
	Action string `json:"action"`
	Arg    string `json:"arg,omitempty"`
}

func (s step) String() string {
	if s.Arg == "" {
		return s.Action
	}
	return s.Action + "=" + s.Arg
}

func parseSteps(raw []string) ([]step, error) {
	steps := make([]step, 0, len(raw))
	for _, r := range raw {
		action, arg, _ := strings.Cut(r, "=")
		if action == "" || strings.ContainsAny(action, " \t") {
			return nil, errors.New("E142").
				WithDetail(fmt.Sprintf("Cannot parse %q as an action", r))
		}
		steps = append(steps, step{Action: action, Arg: arg})
	}
	return steps, nil
}

type stepResult struct {
	Step  step      `json:"step"`
	View  demo.View `json:"view"`
	Error string    `json:"error,omitempty"`
	Code  string    `json:"code,omitempty"`
}

type runResult struct {
	Path   string           `json:"path"`
	Steps  []stepResult     `json:"steps"`
	Events []eventlog.Entry `json:"events"`
	View   demo.View        `json:"view"`
}

func runCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "run <page> [action[=arg]]...",
		Short: "Drive one page through a sequence of actions",
		Long: `Mount the lab, apply actions to one page in order, and print what each
action rendered, the page's event log and its final view.

Scope violations, such as using the Context API counter after its
provider was unmounted, are reported and the run continues. Any other
failure stops the run.

Examples:
  memolab run /optimisation/memo increment select=memo increment
  memolab run /optimisation/useMemo select=memoised type=a type=b increment
  memolab run /state/context-api increment unmount increment mount --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args[1:])
			if err != nil {
				return err
			}
			result, err := a.run(args[0], steps)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			a.printRun(result, quiet)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Omit the event log")

	return cmd
}

func (a *app) run(path string, steps []step) (*runResult, error) {
	lab, err := demo.New(a.labOptions()...)
	if err != nil {
		return nil, err
	}
	defer lab.Close()

	page, err := lab.Lookup(path)
	if err != nil {
		return nil, errors.Classify(err).
			WithSuggestion("Run memolab pages to list the pages")
	}

	result := &runResult{Path: path, Steps: make([]stepResult, 0, len(steps))}
	for _, s := range steps {
		view, err := lab.Dispatch(path, s.Action, s.Arg)
		sr := stepResult{Step: s, View: view}
		if err != nil {
			if !stderrors.Is(err, scope.ErrScopeViolation) {
				le := errors.Classify(err)
				if stderrors.Is(err, demo.ErrUnknownAction) {
					le.WithSuggestion(path + " accepts: " + strings.Join(page.Meta().Actions, ", "))
				}
				return nil, le
			}
			sr.Error = err.Error()
			sr.Code = errors.Classify(err).Code
		}
		result.Steps = append(result.Steps, sr)
	}

	if result.Events, err = lab.Events(path, 0); err != nil {
		return nil, err
	}
	if result.View, err = lab.View(path); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *app) printRun(r *runResult, quiet bool) {
	fmt.Fprintf(a.stdout, "%s\n\n", r.Path)

	for _, sr := range r.Steps {
		if sr.Error != "" {
			fmt.Fprintf(a.stdout, "  \033[31m✗\033[0m %-18s %s: %s\n", sr.Step, sr.Code, sr.Error)
			continue
		}
		fmt.Fprintf(a.stdout, "  \033[32m✓\033[0m %-18s %s\n", sr.Step, sr.View.Output)
	}

	if !quiet {
		fmt.Fprintf(a.stdout, "\nEvents\n")
		for _, e := range r.Events {
			fmt.Fprintf(a.stdout, "  %s\n", e)
		}
	}

	fmt.Fprintf(a.stdout, "\nState\n")
	for _, key := range slices.Sorted(maps.Keys(r.View.State)) {
		fmt.Fprintf(a.stdout, "  %-18s %v\n", key, r.View.State[key])
	}
	fmt.Fprintf(a.stdout, "\nRenders\n")
	for _, key := range slices.Sorted(maps.Keys(r.View.Renders)) {
		fmt.Fprintf(a.stdout, "  %-18s %d\n", key, r.View.Renders[key])
	}
	if r.View.Output != "" {
		fmt.Fprintf(a.stdout, "\nOutput\n  %s\n", r.View.Output)
	}
}
