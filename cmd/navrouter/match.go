package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/navrouter/internal/bridge"
	"github.com/vyrodovalexey/navrouter/internal/config"
	"github.com/vyrodovalexey/navrouter/internal/navigation"
	"github.com/vyrodovalexey/navrouter/internal/router"
	"github.com/vyrodovalexey/navrouter/internal/util"
)

// matchOutput is one line of `navrouter match` output.
type matchOutput struct {
	Pathname string              `json:"pathname"`
	Matched  bool                `json:"matched"`
	Result   *router.MatchResult `json:"result,omitempty"`
	View     string              `json:"view"`
	Error    string              `json:"error,omitempty"`
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "match <pathname>...",
		Short: "Resolve external pathnames against the route table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			return runMatch(cmd, cfg, args)
		},
	}
}

// runMatch prints one JSON object per pathname. Invalid pathnames are
// reported inline and make the command fail after all are printed.
func runMatch(cmd *cobra.Command, cfg *config.Config, pathnames []string) error {
	routes := router.FromConfig(cfg.Routes)
	matcher, err := router.New(routes)
	if err != nil {
		return err
	}

	table := bridge.NewTable(routes, cfg.Context, viewOrNil(cfg.NotFoundView))
	enc := json.NewEncoder(cmd.OutOrStdout())

	failed := 0
	for _, pathname := range pathnames {
		out := matchOutput{Pathname: pathname}

		if err := util.ValidatePathname(pathname); err != nil {
			out.Error = err.Error()
			failed++
		} else {
			internal := navigation.StripContext(pathname, table.BaseContext)
			out.Result = matcher.Match(cmd.Context(), internal)
			out.Matched = out.Result != nil
			if out.Matched {
				out.View = bridge.ViewName(table.Views.Select(out.Result.Path))
			} else {
				out.View = bridge.ViewName(table.Views.NotFound())
			}
		}

		if err := enc.Encode(out); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pathnames were invalid", failed, len(pathnames))
	}
	return nil
}

func viewOrNil(name string) any {
	if name == "" {
		return nil
	}
	return name
}
