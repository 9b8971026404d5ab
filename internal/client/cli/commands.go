package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/avolkov/blogpulse/internal/client/models"
)

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.client.Login(ctx, email, string(password)); err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %s\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", a.client.User().Username)
	return nil
}

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.client.Register(ctx, email, string(password), ""); err != nil {
		fmt.Fprintf(a.out, "Registration unsuccessful: %s\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Registered, you can now log in")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.stopListening()
	if err := a.client.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout error: %s\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Notifications(ctx context.Context) error {
	feed, err := a.client.Notifications(ctx, 1, 20)
	if err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err)
		return err
	}

	if len(feed.Notifications) == 0 {
		fmt.Fprintln(a.out, "No notifications")
		return nil
	}

	for _, n := range feed.Notifications {
		read := " "
		if !n.IsRead {
			read = "*"
		}
		actor := "system"
		if n.Actor != nil {
			actor = n.Actor.Username
		}
		fmt.Fprintf(a.out, "%s [%s] %s: %s (%s, %s)\n", read, n.Type, n.Title, n.Message, actor, n.ID)
	}
	fmt.Fprintf(a.out, "Total: %d\n", feed.Total)
	return nil
}

func (a *App) MarkRead(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Notification id (empty for all)", a.out)
	if err != nil {
		return err
	}

	if err := a.client.MarkRead(ctx, id); err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Done")
	return nil
}

func (a *App) Comment(ctx context.Context) error {
	blogID, err := GetSimpleText(a.reader, "Blog id", a.out)
	if err != nil {
		return err
	}
	content, err := GetSimpleText(a.reader, "Comment", a.out)
	if err != nil {
		return err
	}

	if err := a.client.CreateComment(ctx, blogID, content); err != nil {
		fmt.Fprintf(a.out, "error: %s\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Comment posted")
	return nil
}

// Listen tails the live unread counter in the background, redialing on
// drops until Logout or exit.
func (a *App) Listen(ctx context.Context) error {
	if a.cancelListen != nil {
		fmt.Fprintln(a.out, "Already listening")
		return nil
	}

	listenCtx, cancel := context.WithCancel(ctx)
	a.cancelListen = cancel

	go func() {
		for {
			err := a.client.Listen(listenCtx, func(u models.UnreadCount) {
				fmt.Fprintf(a.out, "\n[%d unread]\n", u.NotificationCount)
			})
			if listenCtx.Err() != nil {
				return
			}
			fmt.Fprintf(a.out, "push connection lost (%s), reconnecting...\n", err)
			select {
			case <-listenCtx.Done():
				return
			case <-time.After(a.config.ReconnectInterval):
			}
		}
	}()

	fmt.Fprintln(a.out, "Listening for notifications")
	return nil
}

func (a *App) stopListening() {
	if a.cancelListen != nil {
		a.cancelListen()
		a.cancelListen = nil
	}
}
