package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/PnL-Guardian/internal/importer"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create or update a project from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectImport,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with their derived figures",
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a project report and raise any budget warning",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectImportCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)

	projectListCmd.Flags().String("owner", "", "Only list projects owned by this user")
	projectShowCmd.Flags().Bool("json", false, "Print the report as JSON")
}

func runProjectImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	project, err := importer.Load(args[0])
	if err != nil {
		return err
	}

	svc, err := initServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.store.SaveProject(cmd.Context(), project); err != nil {
		return fmt.Errorf("import project: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported project %q\n", project.Name)
	fmt.Fprintf(out, "  ID:          %s\n", project.ID)
	fmt.Fprintf(out, "  Owner:       %s\n", project.OwnerID)
	fmt.Fprintf(out, "  Expenses:    %d\n", len(project.Expenses))
	fmt.Fprintf(out, "  Milestones:  %d\n", len(project.Milestones))
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	owner, _ := cmd.Flags().GetString("owner")

	svc, err := initServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	reports, err := svc.tracker.ListReports(cmd.Context(), owner)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tOWNER\tVALUE\tACTUAL\tNET MARGIN\tDEADLINE\tSTATUS")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.OwnerID,
			formatMoney(r.Currency, r.ProjectValue),
			formatMoney(r.Currency, r.Calculations.TotalActualCost),
			formatPercent(r.Calculations.NetProfitMargin),
			r.Deadline.Format(time.DateOnly),
			r.Status,
		)
	}
	return w.Flush()
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	svc, err := initServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.tracker.EvaluateByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprint(out, RenderReport(report))
	return nil
}
