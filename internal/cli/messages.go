package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"cocreate/pkg/frontend"
)

func (c *cli) messagesCmd() *cobra.Command {
	var troubleID int64
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show the selected trouble's conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			th := frontend.NewThread(c.deps)
			if err := th.Load(cmd.Context(), troubleID); err != nil {
				return err
			}
			c.printf("%s", c.render.Thread(th))
			return nil
		},
	}
	cmd.Flags().Int64Var(&troubleID, "trouble", 0, "trouble id (default: the selected trouble)")
	cmd.AddCommand(c.messageSendCmd())
	return cmd
}

func (c *cli) messageSendCmd() *cobra.Command {
	var replyTo int64
	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Post a message, optionally as a reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			th := frontend.NewThread(c.deps)
			if err := th.Load(cmd.Context(), 0); errors.Is(err, frontend.ErrNoTroubleSelected) {
				return err
			}
			m, err := th.SendText(cmd.Context(), strings.Join(args, " "), replyTo)
			if m != nil {
				c.printf("%s\n", c.render.Message(th, *m))
			}
			return err
		},
	}
	cmd.Flags().Int64Var(&replyTo, "reply-to", 0, "id of the message being answered")
	return cmd
}
