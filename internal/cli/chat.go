package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"carmarket/internal/auth"
	"carmarket/internal/models"
	"carmarket/internal/service"

	"github.com/spf13/cobra"
)

func newChatCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to sellers and buyers",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "start <car-id>",
			Short: "Open a conversation with a listing's seller",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				me, err := env.identity()
				if err != nil {
					return err
				}
				room, err := env.App.Chat.StartConversation(cmd.Context(), me, args[0])
				if err != nil {
					return describe(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Room %s\n", room.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rooms",
			Short: "List your conversations, most recent first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				me, err := env.identity()
				if err != nil {
					return err
				}
				rooms, err := env.App.Chat.Rooms(cmd.Context(), me)
				if err != nil {
					return describe(err)
				}
				printRooms(cmd.OutOrStdout(), rooms)
				return nil
			},
		},
		&cobra.Command{
			Use:   "send <room-id> <message>",
			Short: "Send a message",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				me, err := env.identity()
				if err != nil {
					return err
				}
				sent, err := env.App.Chat.Send(cmd.Context(), me, service.SendMessageInput{
					RoomID: args[0],
					Text:   joinArgs(args[1:]),
				})
				if err != nil {
					return describe(err)
				}
				printMessages(cmd.OutOrStdout(), me, sent)
				return nil
			},
		},
		&cobra.Command{
			Use:   "read <room-id>",
			Short: "Print a conversation and mark it read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				me, err := env.identity()
				if err != nil {
					return err
				}
				msgs, err := env.App.Chat.Transcript(cmd.Context(), me, args[0])
				if err != nil {
					return describe(err)
				}
				printMessages(cmd.OutOrStdout(), me, msgs)
				return describe(env.App.Chat.MarkRead(cmd.Context(), me, args[0]))
			},
		},
	)
	return cmd
}

func printRooms(w io.Writer, rooms []service.RoomView) {
	if len(rooms) == 0 {
		fmt.Fprintln(w, "No conversations yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tCAR\tUNREAD\tLAST MESSAGE")
	for _, r := range rooms {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ID, r.CarTitle, r.Unread, r.LastMessage)
	}
	_ = tw.Flush()
}

func printMessages(w io.Writer, me auth.Identity, msgs []models.ChatMessage) {
	for _, m := range msgs {
		who := "them"
		if m.SenderID == me.UserID {
			who = "me"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Local().Format("01-02 15:04"), who, m.Message)
	}
}
