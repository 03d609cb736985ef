package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lorrc/social-realtime/internal/client/live"
	"github.com/lorrc/social-realtime/internal/client/reconcile"
	"github.com/lorrc/social-realtime/internal/client/rest"
	"github.com/lorrc/social-realtime/internal/core/domain"
)

type watchOptions struct {
	server       string
	token        string
	userID       string
	posts        []string
	loops        []string
	conversation string
	heartbeat    time.Duration
	timeout      time.Duration
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Connect and print every live change until interrupted",
		Example: `  livewatch watch --token "$(livewatch token --user $ME --secret $JWT_SECRET)" \
    --post 3f1c... --conversation 9a2b...`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.token == "" {
				opts.token = os.Getenv("LIVEWATCH_TOKEN")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "http://localhost:8080", "server base URL")
	f.StringVar(&opts.token, "token", "", "access token (defaults to $LIVEWATCH_TOKEN)")
	f.StringVar(&opts.userID, "user", "", "user id shown in the output")
	f.StringSliceVar(&opts.posts, "post", nil, "post ids to mirror")
	f.StringSliceVar(&opts.loops, "loop", nil, "loop ids to mirror")
	f.StringVar(&opts.conversation, "conversation", "", "partner id whose conversation is open")
	f.DurationVar(&opts.heartbeat, "heartbeat", 30*time.Second, "application keep-alive interval (0 disables)")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout for REST calls and the first connect")

	return cmd
}

func runWatch(ctx context.Context, out io.Writer, root *rootOptions, opts *watchOptions) error {
	if opts.token == "" {
		return live.ErrNoIdentity
	}
	logger := root.logger()
	server := strings.TrimRight(opts.server, "/")

	store := reconcile.NewStore()
	if err := seed(ctx, rest.New(server, opts.token, opts.timeout, logger), store, opts); err != nil {
		return err
	}

	client := live.NewClient(live.Config{
		URL:               "ws" + strings.TrimPrefix(server, "http") + "/api/v1/ws",
		HandshakeTimeout:  opts.timeout,
		HeartbeatInterval: opts.heartbeat,
	}, logger)

	reconcile.NewSession(client, store, logger, reconcile.WithOnChange(func(t domain.EventType, payload any) {
		fmt.Fprintln(out, describe(t, payload))
	}))
	client.OnConnect(func(conn *live.Conn) {
		fmt.Fprintf(out, "connected (generation %d)\n", conn.Generation())
	})
	client.OnDisconnect(func() {
		fmt.Fprintln(out, "disconnected, presence unknown")
	})

	connectCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	err := client.Connect(connectCtx, live.Identity{UserID: opts.userID, Token: opts.token})
	cancel()
	if err != nil {
		return err
	}

	<-ctx.Done()
	return client.Close()
}

// seed loads the REST snapshots the live events are applied to.
func seed(ctx context.Context, api *rest.Client, store *reconcile.Store, opts *watchOptions) error {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	load := func(kind domain.ContentKind, ids []string) ([]domain.ContentSnapshot, error) {
		out := make([]domain.ContentSnapshot, 0, len(ids))
		for _, id := range ids {
			snapshot, err := api.Content(ctx, kind, id)
			if err != nil {
				return nil, fmt.Errorf("load %s %s: %w", kind, id, err)
			}
			out = append(out, snapshot)
		}
		return out, nil
	}

	posts, err := load(domain.ContentPost, opts.posts)
	if err != nil {
		return err
	}
	store.SetPosts(posts)

	loops, err := load(domain.ContentLoop, opts.loops)
	if err != nil {
		return err
	}
	store.SetLoops(loops)

	notifications, err := api.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}
	store.SetNotifications(notifications)

	if opts.conversation != "" {
		history, err := api.Conversation(ctx, opts.conversation)
		if err != nil {
			return fmt.Errorf("load conversation: %w", err)
		}
		store.OpenConversation(opts.conversation, history)
	}
	return nil
}

func describe(t domain.EventType, payload any) string {
	switch p := payload.(type) {
	case domain.LikesChangedPayload:
		return fmt.Sprintf("%s %s: %d likes", p.SubjectKind, p.SubjectID, len(p.Likes))
	case domain.CommentsChangedPayload:
		return fmt.Sprintf("%s %s: %d comments", p.SubjectKind, p.SubjectID, len(p.Comments))
	case domain.NotificationPayload:
		return fmt.Sprintf("notification (%s) from %s: %s", p.Notification.Type, p.Notification.SenderID, p.Notification.Message)
	case domain.MessagePayload:
		text := "[image]"
		if p.Message.Text != nil {
			text = *p.Message.Text
		}
		return fmt.Sprintf("message from %s: %s", p.Message.SenderID, text)
	case domain.PresencePayload:
		return fmt.Sprintf("online (%d): %s", len(p.OnlineUserIDs), strings.Join(p.OnlineUserIDs, ", "))
	}
	return string(t)
}
