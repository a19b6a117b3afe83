package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/multitetris/internal/api/response"
)

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List active rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RoomList
			if err := client.Get(cmd.Context(), "/api/v1/rooms", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newDashboardCmd() *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show a room's live ranking with all-time history",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/dashboard"
			if room != "" {
				path += "?room=" + url.QueryEscape(room)
			}

			var result response.Dashboard
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&room, "room", "r", "", "Room code (default room if empty)")

	return cmd
}
