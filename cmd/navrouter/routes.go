package main

import (
	"fmt"
	"regexp"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/navrouter/internal/config"
	"github.com/vyrodovalexey/navrouter/internal/navigation"
	"github.com/vyrodovalexey/navrouter/internal/pattern"
	"github.com/vyrodovalexey/navrouter/internal/router"
)

// sampleValues are tried in order when rendering an example href.
var sampleValues = []string{"1", "example", "a", "x-1"}

type routesOptions struct {
	*rootOptions

	example bool
}

func newRoutesCmd(root *rootOptions) *cobra.Command {
	opts := &routesOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the compiled route patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			return runRoutes(cmd, cfg, opts.example)
		},
	}
	cmd.Flags().BoolVar(&opts.example, "example", false, "Render an example href for every route")
	return cmd
}

func runRoutes(cmd *cobra.Command, cfg *config.Config, example bool) error {
	routes := router.FromConfig(cfg.Routes)
	compiler := pattern.NewCompiler()
	if err := router.ValidateRoutes(routes, compiler); err != nil {
		return err
	}

	base := navigation.NormalizeContext(cfg.Context)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	header := "PATH\tEXACT\tVIEW\tKEYS\tREGEXP"
	if example {
		header += "\tEXAMPLE"
	}
	_, _ = fmt.Fprintln(w, header)

	for _, route := range routes {
		compiled, err := compiler.Compile(route.Path, pattern.Options{End: route.Exact})
		if err != nil {
			return err
		}

		line := fmt.Sprintf("%s\t%t\t%v\t%s\t%s",
			route.Path, route.Exact, displayView(route.View), keyNames(compiled.Keys), compiled.String())
		if example {
			line += "\t" + exampleHref(compiled, base)
		}
		_, _ = fmt.Fprintln(w, line)
	}

	return w.Flush()
}

func displayView(view any) any {
	if view == nil || view == "" {
		return "-"
	}
	return view
}

func keyNames(keys []pattern.Key) string {
	if len(keys) == 0 {
		return "-"
	}
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = key.Name + key.Modifier
	}
	return strings.Join(names, ",")
}

// exampleHref builds the route with the first sample value each key
// accepts, rendered under base. Routes whose keys accept no sample render
// as "-".
func exampleHref(compiled *pattern.CompiledPattern, base string) string {
	params := make(map[string]string, len(compiled.Keys))
	for _, key := range compiled.Keys {
		if value, ok := sampleFor(key); ok {
			params[key.Name] = value
		}
	}

	pathname, err := compiled.Build(params)
	if err != nil {
		return "-"
	}
	if pathname == "" {
		pathname = "/"
	}
	return navigation.NavLink{To: pathname}.Href(base)
}

func sampleFor(key pattern.Key) (string, bool) {
	re, err := regexp.Compile("^(?:" + key.Pattern + ")$")
	if err != nil {
		return "", false
	}
	for _, value := range sampleValues {
		if re.MatchString(value) {
			return value, true
		}
	}
	return "", false
}
