package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

var milestoneCmd = &cobra.Command{
	Use:   "milestone",
	Short: "Manage project milestones",
}

var milestoneAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a milestone to a project",
	RunE:  runMilestoneAdd,
}

func init() {
	rootCmd.AddCommand(milestoneCmd)
	milestoneCmd.AddCommand(milestoneAddCmd)

	milestoneAddCmd.Flags().StringP("project", "p", "", "Project ID")
	milestoneAddCmd.Flags().StringP("name", "n", "", "Milestone name")
	milestoneAddCmd.Flags().String("target", "", "Target date (YYYY-MM-DD)")
	milestoneAddCmd.Flags().String("status", string(model.MilestonePending), "Status (PENDING, IN_PROGRESS, COMPLETED, DELAYED)")
	milestoneAddCmd.Flags().Int("completion", 0, "Completion percentage")
	_ = milestoneAddCmd.MarkFlagRequired("project")
	_ = milestoneAddCmd.MarkFlagRequired("name")
	_ = milestoneAddCmd.MarkFlagRequired("target")
}

func runMilestoneAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	projectID, _ := cmd.Flags().GetString("project")
	name, _ := cmd.Flags().GetString("name")
	target, _ := cmd.Flags().GetString("target")
	status, _ := cmd.Flags().GetString("status")
	completion, _ := cmd.Flags().GetInt("completion")

	targetDate, err := time.Parse(time.DateOnly, target)
	if err != nil {
		return fmt.Errorf("invalid target date %q", target)
	}
	if completion < 0 || completion > 100 {
		return errors.New("completion must be between 0 and 100")
	}

	milestone := model.Milestone{
		ProjectID:            projectID,
		Name:                 name,
		TargetDate:           targetDate,
		CompletionPercentage: completion,
		Status:               model.MilestoneStatus(strings.ToUpper(status)),
	}
	switch milestone.Status {
	case model.MilestonePending, model.MilestoneInProgress, model.MilestoneCompleted, model.MilestoneDelayed:
	default:
		return fmt.Errorf("unknown milestone status %q", status)
	}

	svc, err := initServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.store.AddMilestone(cmd.Context(), &milestone); err != nil {
		return fmt.Errorf("add milestone: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Milestone added: %s (%s), due %s\n",
		milestone.Name, milestone.ID, milestone.TargetDate.Format(time.DateOnly))
	return nil
}
