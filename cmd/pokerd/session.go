package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dreamware/pokerd/internal/api"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage sessions on a running server",
	}
	cmd.AddCommand(newSessionCreateCmd())
	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	var (
		addr string
		req  api.CreateSessionRequest
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a session and print the facilitator's participant id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := strings.TrimRight(addr, "/")
			var created api.Membership
			if err := api.PostJSON(cmd.Context(), base+"/sessions", req, &created); err != nil {
				return fmt.Errorf("create session: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"session:     %s\nparticipant: %s (facilitator)\nevents:      %s/sessions/%s/ws?participant=%s\n",
				created.Session.ID, created.Participant.ID,
				"ws"+strings.TrimPrefix(base, "http"), created.Session.ID, created.Participant.ID)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "http://localhost:8080", "base URL of the pokerd server")
	flags.StringVar(&req.Name, "name", "", "session name")
	flags.StringVar(&req.CreatorName, "creator", "", "display name of the facilitator")
	flags.StringVar(&req.CreatorAvatar, "avatar", "", "avatar tag of the facilitator")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("creator")
	return cmd
}
