package app

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/five82/leadconsole/internal/lead"
	"github.com/five82/leadconsole/internal/prefs"
	"github.com/five82/leadconsole/internal/state"
)

const defaultListLimit = 20

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewRootCmd creates the "leadconsole" command. Without a subcommand it opens
// the TUI when interactive reports true and prints the lead list otherwise.
func NewRootCmd(interactive func() bool) *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:           "leadconsole",
		Short:         "Lead management console with simulated server latency",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive != nil && interactive() {
				return Run(cmd.Context(), *opts)
			}
			return runList(cmd, *opts, listOptions{limit: defaultListLimit})
		},
	}

	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/leadconsole/config.toml)")
	root.PersistentFlags().StringVar(&opts.PrefsPath, "prefs", "", "preferences file (overrides prefs_path)")

	root.AddCommand(
		newListCmd(opts),
		newPrefsCmd(opts),
	)
	return root
}

// listOptions override the persisted view for one invocation. Nil fields keep
// the stored value.
type listOptions struct {
	search *string
	status *string
	asc    *bool
	limit  int
}

func (o listOptions) apply(v prefs.View) prefs.View {
	if o.search != nil {
		v.Search = *o.search
	}
	if o.status != nil {
		v.FilterStatus = prefs.NormalizeFilter(*o.status)
	}
	if o.asc != nil {
		v.SortDescending = !*o.asc
	}
	return v
}

func newListCmd(opts *Options) *cobra.Command {
	var (
		search string
		status string
		asc    bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the visible leads",
		Long: "Loads the leads through the simulated server and prints the list with the\n" +
			"stored search, status filter and sort applied. Flags override the stored\n" +
			"preferences for this run only.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			return runList(cmd, *opts, listOptions{
				search: ifChanged(flags, "search", &search),
				status: ifChanged(flags, "status", &status),
				asc:    ifChanged(flags, "asc", &asc),
				limit:  limit,
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "match name or company (case-insensitive)")
	cmd.Flags().StringVar(&status, "status", "", "status filter: all, New, Contacted, Qualified, Unqualified, Converted")
	cmd.Flags().BoolVar(&asc, "asc", false, "sort by score ascending")
	cmd.Flags().IntVar(&limit, "limit", defaultListLimit, "maximum rows to print (0 for all)")
	return cmd
}

// ifChanged returns value when the flag was given on the command line.
func ifChanged[T any](flags *pflag.FlagSet, name string, value *T) *T {
	if flags.Changed(name) {
		return value
	}
	return nil
}

func runList(cmd *cobra.Command, opts Options, lo listOptions) error {
	rt, err := Build(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Store.Load(cmd.Context())
	snap := rt.Store.Snapshot()
	if snap.LastError != "" {
		return fmt.Errorf("load leads: %s", snap.LastError)
	}

	view := lo.apply(snap.View)
	leads := state.Visible(snap.Leads, view)
	shown := leads
	if lo.limit > 0 && len(shown) > lo.limit {
		shown = shown[:lo.limit]
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderLeadTable(shown))
	fmt.Fprintf(out, "\n%d of %d leads (%s)\n", len(shown), len(leads), describeView(view))
	return nil
}

func renderLeadTable(leads []lead.Lead) string {
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, []string{
			l.ID,
			l.Name,
			l.Company,
			l.Email,
			l.Source,
			strconv.Itoa(l.Score),
			string(l.Status),
		})
	}
	return renderTable([]string{"ID", "NAME", "COMPANY", "EMAIL", "SOURCE", "SCORE", "STATUS"}, rows)
}

func describeView(v prefs.View) string {
	parts := []string{"filter " + v.FilterStatus}
	if s := strings.TrimSpace(v.Search); s != "" {
		parts = append(parts, fmt.Sprintf("search %q", s))
	}
	if v.SortDescending {
		parts = append(parts, "score desc")
	} else {
		parts = append(parts, "score asc")
	}
	return strings.Join(parts, ", ")
}

func newPrefsCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := openPrefs(*opts)
			if err != nil {
				return err
			}
			defer slot.Close()
			writePrefs(cmd.OutOrStdout(), slot)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default view preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := openPrefs(*opts)
			if err != nil {
				return err
			}
			defer slot.Close()
			if err := prefs.SaveView(slot, prefs.DefaultView()); err != nil {
				return fmt.Errorf("reset prefs: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preferences reset (%s)\n", slot.Path())
			return nil
		},
	})
	return cmd
}

// openPrefs opens the slot without building the store, so a broken seed or
// log path does not block inspecting preferences.
func openPrefs(opts Options) (prefs.Backend, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	slot, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("open prefs: %w", err)
	}
	return slot, nil
}

func writePrefs(w io.Writer, slot prefs.Backend) {
	v := prefs.LoadView(slot)
	search := v.Search
	if search == "" {
		search = "(none)"
	}
	sort := "score desc"
	if !v.SortDescending {
		sort = "score asc"
	}
	rows := [][]string{
		{"file", slot.Path()},
		{"search", search},
		{"filter", v.FilterStatus},
		{"sort", sort},
		{"theme", prefs.LoadTheme(slot)},
	}
	fmt.Fprint(w, renderTable([]string{"KEY", "VALUE"}, rows))
}
