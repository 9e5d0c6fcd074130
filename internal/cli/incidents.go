package cli

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/incimine/internal/classifier"
	"github.com/roach88/incimine/internal/model"
	"github.com/roach88/incimine/internal/seed"
)

// InitResult is the payload of the init command.
type InitResult struct {
	Database      string `json:"database"`
	SchemaVersion int    `json:"schema_version"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the incident database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			cfg, st, err := rootOpts.openStore()
			if err != nil {
				return failure(f, err)
			}
			defer st.Close()

			version, err := st.SchemaVersion(cmd.Context())
			if err != nil {
				return failure(f, err)
			}
			res := InitResult{Database: cfg.Database, SchemaVersion: version}
			if f.JSON() {
				return f.Success(res)
			}
			fmt.Fprintf(f.Writer, "✓ Database ready: %s (schema v%d)\n", res.Database, res.SchemaVersion)
			return nil
		},
	}
}

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Seed  uint64 // 0 picks a random seed
	Reset bool
}

// SeedResult is the payload of the seed command.
type SeedResult struct {
	Inserted int    `json:"inserted"`
	Seed     uint64 `json:"seed"`
	Deleted  int64  `json:"deleted,omitempty"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed [count]",
		Short: "Insert generated sample incidents",
		Long: fmt.Sprintf(`Insert generated sample incidents (default %d).

The same --seed always generates the same incidents relative to the
current time.

Examples:
  incimine seed
  incimine seed 1000 --seed 42
  incimine seed 50 --reset`, seed.DefaultCount),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args, cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "delete existing incidents first")

	return cmd
}

func runSeed(opts *SeedOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	count := seed.DefaultCount
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return failure(f, invalidArgs(fmt.Sprintf("count must be a positive integer, got %q", args[0])))
		}
		count = n
	}

	s := opts.Seed
	if s == 0 {
		s = rand.Uint64()
	}

	_, st, err := opts.openStore()
	if err != nil {
		return failure(f, err)
	}
	defer st.Close()

	res := SeedResult{Seed: s}
	if opts.Reset {
		if res.Deleted, err = st.Reset(cmd.Context()); err != nil {
			return failure(f, err)
		}
	}

	incidents, err := seed.NewSeeded(s, opts.now()).Generate(count)
	if err != nil {
		return failure(f, err)
	}
	f.VerboseLog("Generated %d incidents with seed %d", len(incidents), s)

	ids, err := st.CreateIncidents(cmd.Context(), incidents)
	if err != nil {
		return failure(f, err)
	}
	res.Inserted = len(ids)

	if f.JSON() {
		return f.Success(res)
	}
	if res.Deleted > 0 {
		fmt.Fprintf(f.Writer, "Deleted %d existing incidents\n", res.Deleted)
	}
	fmt.Fprintf(f.Writer, "✓ Successfully inserted %d records (seed %d)\n", res.Inserted, res.Seed)
	return nil
}

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Incident model.Incident
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}
	inc := &opts.Incident

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new incident",
		Long: `Record a new incident.

Category and priority are assigned by the rule-based classifier unless
given explicitly. Severity defaults to "medium".

Example:
  incimine add --title "Checkout returns 502" --service Payment --tags urgent,checkout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&inc.Title, "title", "", "incident title (required)")
	fl.StringVar(&inc.Description, "description", "", "incident description")
	fl.StringVar(&inc.Severity, "severity", "", "severity (default medium)")
	fl.StringVar(&inc.Category, "category", "", "category (default: classified)")
	fl.StringVar(&inc.Priority, "priority", "", "priority (default: classified)")
	fl.StringVar(&inc.Status, "status", "Open", "status")
	fl.StringVar(&inc.Metadata, "metadata", "", "metadata JSON document")
	fl.StringVar(&inc.Phone, "phone", "", "reporter phone")
	fl.StringVar(&inc.WebsiteType, "website-type", "", "website type")
	fl.StringVar(&inc.IncidentFrequency, "frequency", "", "incident frequency")
	fl.StringVar(&inc.ServiceAffected, "service", "", "affected service")
	fl.StringVar(&inc.RootCauseCategory, "root-cause", "", "root cause category")
	fl.StringVar(&inc.Tags, "tags", "", "comma-separated tags")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	inc := opts.Incident

	if strings.TrimSpace(inc.Title) == "" {
		return failure(f, invalidArgs("title must not be empty"))
	}

	out := classifier.Classify(classifier.Input{
		Title:             inc.Title,
		Description:       inc.Description,
		Severity:          inc.Severity,
		IncidentFrequency: inc.IncidentFrequency,
		ServiceAffected:   inc.ServiceAffected,
		RootCauseCategory: inc.RootCauseCategory,
		Tags:              inc.Tags,
	})
	inc.Severity = out.Severity
	if inc.Category == "" {
		inc.Category = out.Category
	}
	if inc.Priority == "" {
		inc.Priority = out.Priority
	}
	inc.CreatedAt = opts.now().UTC().Format(time.RFC3339Nano)

	_, st, err := opts.openStore()
	if err != nil {
		return failure(f, err)
	}
	defer st.Close()

	id, err := st.CreateIncident(cmd.Context(), inc)
	if err != nil {
		return failure(f, err)
	}
	inc.ID = id

	if f.JSON() {
		return f.Success(inc)
	}
	fmt.Fprintf(f.Writer, "✓ Incident %d recorded: category=%s priority=%s severity=%s\n",
		inc.ID, inc.Category, inc.Priority, inc.Severity)
	return nil
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List incidents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			_, st, err := rootOpts.openStore()
			if err != nil {
				return failure(f, err)
			}
			defer st.Close()

			incidents, err := st.ListIncidents(cmd.Context())
			if err != nil {
				return failure(f, err)
			}
			if limit > 0 && len(incidents) > limit {
				incidents = incidents[:limit]
			}

			if f.JSON() {
				return f.Success(incidents)
			}
			if len(incidents) == 0 {
				fmt.Fprintln(f.Writer, "No incidents found.")
				return nil
			}
			tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSEVERITY\tPRIORITY\tSTATUS\tCATEGORY\tTITLE")
			for _, inc := range incidents {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					inc.ID, inc.Severity, inc.Priority, inc.Status, inc.Category, inc.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n incidents (0 for all)")

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one incident",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			id, err := parseID(args[0])
			if err != nil {
				return failure(f, err)
			}

			_, st, err := rootOpts.openStore()
			if err != nil {
				return failure(f, err)
			}
			defer st.Close()

			inc, err := st.GetIncident(cmd.Context(), id)
			if err != nil {
				return failure(f, fmt.Errorf("incident %d: %w", id, err))
			}

			if f.JSON() {
				return f.Success(inc)
			}
			writeIncident(f, inc)
			return nil
		},
	}
}

func writeIncident(f *OutputFormatter, inc model.Incident) {
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fields := []struct{ name, value string }{
		{"Title", inc.Title},
		{"Description", inc.Description},
		{"Severity", inc.Severity},
		{"Category", inc.Category},
		{"Priority", inc.Priority},
		{"Status", inc.Status},
		{"Website type", inc.WebsiteType},
		{"Frequency", inc.IncidentFrequency},
		{"Service", inc.ServiceAffected},
		{"Root cause", inc.RootCauseCategory},
		{"Tags", inc.Tags},
		{"Phone", inc.Phone},
		{"Metadata", inc.Metadata},
		{"Created", inc.CreatedAt},
	}
	fmt.Fprintf(tw, "Incident\t%d\n", inc.ID)
	for _, fld := range fields {
		if fld.value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", fld.name, fld.value)
		}
	}
	_ = tw.Flush()
}

// StatusResult is the payload of the set-status command.
type StatusResult struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// NewSetStatusCommand creates the set-status command.
func NewSetStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Change an incident's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			id, err := parseID(args[0])
			if err != nil {
				return failure(f, err)
			}
			status := strings.TrimSpace(args[1])
			if status == "" {
				return failure(f, invalidArgs("status must not be empty"))
			}

			_, st, err := rootOpts.openStore()
			if err != nil {
				return failure(f, err)
			}
			defer st.Close()

			if err := st.UpdateStatus(cmd.Context(), id, status); err != nil {
				return failure(f, err)
			}

			res := StatusResult{ID: id, Status: status}
			if f.JSON() {
				return f.Success(res)
			}
			fmt.Fprintf(f.Writer, "✓ Incident %d status set to %s\n", res.ID, res.Status)
			return nil
		},
	}
}

// ResetResult is the payload of the reset command.
type ResetResult struct {
	Deleted int64 `json:"deleted"`
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all incidents and restart IDs at 1",
		Long: `Delete all incidents and restart ID assignment at 1.
Recorded mining runs are kept. Requires --yes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if !yes {
				return failure(f, invalidArgs("reset deletes every incident; pass --yes to confirm"))
			}

			_, st, err := rootOpts.openStore()
			if err != nil {
				return failure(f, err)
			}
			defer st.Close()

			n, err := st.Reset(cmd.Context())
			if err != nil {
				return failure(f, err)
			}

			if f.JSON() {
				return f.Success(ResetResult{Deleted: n})
			}
			fmt.Fprintf(f.Writer, "✓ Deleted %d incidents; IDs restart at 1\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidArgs(fmt.Sprintf("invalid incident id %q", s))
	}
	return id, nil
}
