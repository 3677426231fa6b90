package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/docopt/docopt-go"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"microfeed/internal/client"
	"microfeed/internal/config"
	"microfeed/internal/models"
	"microfeed/internal/remote"
	"microfeed/internal/session"
	"microfeed/internal/uploader"
)

const FeedCtlVersion = "0.1.0"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime)
}

func main() {
	usage := `Microfeed terminal client.

The API url is read from FEED_API_URL, tokens are kept in FEED_TOKEN_FILE.

Usage:
    feedctl login --email=<email> [--password=<password>]
    feedctl signup --email=<email> --username=<username> --avatar=<file>
        [--password=<password>]
    feedctl logout
    feedctl whoami
    feedctl reset --email=<email>
    feedctl reset-confirm --token=<token> [--password=<password>]
    feedctl feed
    feedctl comments <post_id>
    feedctl post <text> [--image=<file>]
    feedctl comment <post_id> <text>
    feedctl watch [<post_id>]

Options:
    -h --help                Show this screen.
    --version                Show version.
    --email=<email>
    --password=<password>    Prompted when omitted.
    --username=<username>    Display name shown next to posts.
    --avatar=<file>          Profile picture, required to sign up.
    --image=<file>           Picture attached to the post.
    --token=<token>          Password reset token.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], FeedCtlVersion)
	if err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadClient()
	rc := remote.NewClient(cfg)
	if err := rc.Restore(ctx); err != nil {
		Err.Printf("Сохраненный сеанс недействителен: %v", err)
	}

	up := uploader.New(rc)
	manager := session.NewManager(session.NewStore(), rc, up)
	app := client.New(manager, rc, rc, up)

	if login_, _ := opts.Bool("login"); login_ {
		err = login(ctx, app, opts)
	} else if signup_, _ := opts.Bool("signup"); signup_ {
		err = signup(ctx, app, opts)
	} else if logout_, _ := opts.Bool("logout"); logout_ {
		err = logout(ctx, app)
	} else if whoami_, _ := opts.Bool("whoami"); whoami_ {
		whoami(rc)
	} else if reset_, _ := opts.Bool("reset"); reset_ {
		email, _ := opts.String("--email")
		err = manager.SendPasswordReset(ctx, email)
		if err == nil {
			Out.Printf("Письмо для сброса пароля отправлено на %s", email)
		}
	} else if resetConfirm_, _ := opts.Bool("reset-confirm"); resetConfirm_ {
		token, _ := opts.String("--token")
		err = rc.ConfirmPasswordReset(ctx, token, password(opts))
	} else if feed_, _ := opts.Bool("feed"); feed_ {
		err = printSnapshot(ctx, rc, models.PostsScope())
	} else if comments_, _ := opts.Bool("comments"); comments_ {
		postID, _ := opts.String("<post_id>")
		err = printSnapshot(ctx, rc, models.CommentsScope(postID))
	} else if post_, _ := opts.Bool("post"); post_ {
		err = post(ctx, app, opts)
	} else if comment_, _ := opts.Bool("comment"); comment_ {
		err = comment(ctx, app, opts)
	} else if watch_, _ := opts.Bool("watch"); watch_ {
		err = watch(ctx, app, opts)
	}

	if err != nil {
		Err.Fatalf("Ошибка: %v", err)
	}
}

func password(opts docopt.Opts) string {
	if value, err := opts.String("--password"); err == nil && value != "" {
		return value
	}

	fmt.Print("Пароль: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		panic(err)
	}
	fmt.Printf("\n")
	return string(passwordBytes)
}

func readAttachment(path string) (models.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("не удалось прочитать %s: %w", path, err)
	}
	return models.Attachment{Name: filepath.Base(path), Data: data}, nil
}

func login(ctx context.Context, app *client.App, opts docopt.Opts) error {
	email, _ := opts.String("--email")

	s, err := app.Session().SignIn(ctx, email, password(opts))
	if err != nil {
		return err
	}

	Out.Printf("Вход выполнен: %s (%s)", s.DisplayName, s.UID)
	return nil
}

func signup(ctx context.Context, app *client.App, opts docopt.Opts) error {
	email, _ := opts.String("--email")
	username, _ := opts.String("--username")
	avatarPath, _ := opts.String("--avatar")

	avatar, err := readAttachment(avatarPath)
	if err != nil {
		return err
	}

	form := session.SignUpForm{
		Username: username,
		Email:    email,
		Password: password(opts),
		Avatar:   &avatar,
	}
	if !session.CanSignUp(form) {
		return fmt.Errorf("пароль должен быть не короче %d символов", session.MinPasswordLength)
	}

	s, err := app.Session().SignUp(ctx, form)
	if err != nil {
		return err
	}

	Out.Printf("Аккаунт создан: %s, аватар %s", s.DisplayName, s.PhotoURL)
	return nil
}

func logout(ctx context.Context, app *client.App) error {
	if err := app.Session().SignOut(ctx); err != nil {
		return err
	}
	Out.Printf("Выход выполнен")
	return nil
}

func whoami(rc *remote.Client) {
	s := rc.Current()
	if s.Empty() {
		Out.Printf("Вход не выполнен")
		return
	}
	Out.Printf("%s (%s) %s", s.DisplayName, s.UID, s.PhotoURL)
}

func printSnapshot(ctx context.Context, rc *remote.Client, scope models.Scope) error {
	snap, err := rc.Snapshot(ctx, scope)
	if err != nil {
		return err
	}

	if scope.Collection == models.CollectionPosts {
		for _, d := range snap.Documents {
			printPost(models.PostFromDocument(d))
		}
		return nil
	}

	for _, d := range snap.Documents {
		printComment(models.CommentFromDocument(d))
	}
	return nil
}

func printPost(p models.Post) {
	Out.Printf("[%s] %s, %s", p.PostID, p.Username, humanize.Time(p.CreatedAt))
	Out.Printf("    %s", p.Text)
	if p.ImageURL != "" {
		Out.Printf("    %s", p.ImageURL)
	}
}

func printComment(c models.Comment) {
	Out.Printf("  %s, %s: %s", c.Username, humanize.Time(c.CreatedAt), c.Text)
}

// startFeed runs the application until the feed view is shown.
func startFeed(ctx context.Context, app *client.App) error {
	app.Start(ctx)
	if app.View() != client.ViewFeed {
		app.Stop()
		return remote.ErrNotSignedIn
	}
	return nil
}

func post(ctx context.Context, app *client.App, opts docopt.Opts) error {
	if err := startFeed(ctx, app); err != nil {
		return err
	}
	defer app.Stop()

	text, _ := opts.String("<text>")
	c := app.Composer()
	c.SetText(text)

	if imagePath, err := opts.String("--image"); err == nil && imagePath != "" {
		image, err := readAttachment(imagePath)
		if err != nil {
			return err
		}
		if err := c.Attach(image); err != nil {
			return err
		}
	}

	if err := c.Submit(ctx); err != nil {
		return err
	}

	Out.Printf("Пост отправлен")
	return nil
}

func comment(ctx context.Context, app *client.App, opts docopt.Opts) error {
	if err := startFeed(ctx, app); err != nil {
		return err
	}
	defer app.Stop()

	postID, _ := opts.String("<post_id>")
	text, _ := opts.String("<text>")

	th, err := app.OpenComments(postID)
	if err != nil {
		return err
	}

	th.Composer.SetText(text)
	if err := th.Composer.Submit(ctx); err != nil {
		return err
	}

	Out.Printf("Комментарий отправлен")
	return nil
}

func watch(ctx context.Context, app *client.App, opts docopt.Opts) error {
	app.OnViewChange(func(v client.View) {
		if v == client.ViewAuth {
			Out.Printf("Сеанс завершен")
		}
	})

	app.Feed().OnChange(func() {
		Out.Printf("--- лента ---")
		for _, p := range app.Feed().Rows() {
			printPost(p)
		}
	})

	if err := startFeed(ctx, app); err != nil {
		return err
	}
	defer app.Stop()

	if postID, err := opts.String("<post_id>"); err == nil && postID != "" {
		th, err := app.OpenComments(postID)
		if err != nil {
			return err
		}
		printThread := func() {
			Out.Printf("--- комментарии %s ---", postID)
			for _, c := range th.Comments.Rows() {
				printComment(c)
			}
		}
		// the first snapshot may have arrived before the listener was set
		th.Comments.OnChange(printThread)
		printThread()
	}

	<-ctx.Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}
