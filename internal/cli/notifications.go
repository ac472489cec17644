package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Read and acknowledge notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's notifications, newest first",
	RunE:  runNotificationsList,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark one notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotificationsRead,
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every unread notification as read",
	RunE:  runNotificationsReadAll,
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)

	notificationsCmd.PersistentFlags().StringP("user", "u", "", "User ID")
	_ = notificationsCmd.MarkPersistentFlagRequired("user")

	notificationsListCmd.Flags().StringP("status", "s", "", "Filter by status (UNREAD, READ, ARCHIVED)")
	notificationsListCmd.Flags().Int("limit", model.DefaultNotificationLimit, "Maximum notifications to show")
}

func runNotificationsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	user, _ := cmd.Flags().GetString("user")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	svc, err := initServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	notifications, err := svc.inbox.List(cmd.Context(), model.NotificationFilter{
		UserID: user,
		Status: model.NotificationStatus(strings.ToUpper(status)),
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	unread, err := svc.inbox.UnreadCount(cmd.Context(), user)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(notifications) == 0 {
		fmt.Fprintln(out, "No notifications.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tCREATED\tMESSAGE")
	for _, n := range notifications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			n.ID, n.Status, n.Type, n.CreatedAt.Local().Format(time.DateTime), n.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d unread\n", unread)
	return nil
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	user, _ := cmd.Flags().GetString("user")

	svc, err := initServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	n, err := svc.inbox.MarkRead(cmd.Context(), user, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Marked read: %s\n", n.Title)
	return nil
}

func runNotificationsReadAll(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	user, _ := cmd.Flags().GetString("user")

	svc, err := initServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	count, err := svc.inbox.MarkAllRead(cmd.Context(), user)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Marked %d notifications read\n", count)
	return nil
}
