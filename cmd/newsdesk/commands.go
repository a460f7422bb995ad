package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"newsdesk/client"
	"newsdesk/internal/admin"
	"newsdesk/internal/article/model"
	"newsdesk/internal/feed"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type app struct {
	server      string
	token       string
	sessionPath string
	stdin       io.Reader
	in          *bufio.Reader
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "newsdesk",
		Short:         "Read the newsdesk feed and manage its articles",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.stdin = cmd.InOrStdin()
			a.in = bufio.NewReader(a.stdin)
		},
	}
	root.PersistentFlags().StringVar(&a.server, "server", envOr("NEWSDESK_SERVER", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().StringVar(&a.token, "token", os.Getenv("NEWSDESK_TOKEN"), "session token (overrides the saved session)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session-file", defaultSessionPath(), "where the admin session is stored")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.feedCmd(),
		a.categoriesCmd(),
		a.showCmd(),
		a.createCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.watchCmd(),
	)
	return root
}

func (a *app) api() *client.Client {
	return client.NewClient(a.server)
}

func (a *app) readLine(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo when stdin is a terminal and falls back to
// a plain line otherwise.
func (a *app) readPassword(out io.Writer, prompt string) (string, error) {
	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.readLine(out, prompt)
	}
	fmt.Fprint(out, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// dashboard resumes the admin session from --token or the session file.
func (a *app) dashboard(ctx context.Context) (*admin.Dashboard, error) {
	api := a.api()
	token := a.token
	if token == "" {
		saved, err := loadSession(a.sessionPath)
		if err != nil {
			return nil, fmt.Errorf("read session: %w", err)
		}
		if !saved.Valid(time.Now()) {
			return nil, fmt.Errorf("%w: run `newsdesk login` first", admin.ErrNoSession)
		}
		token = saved.Token
	}
	session, err := admin.Resume(ctx, api, token)
	if err != nil {
		return nil, fmt.Errorf("session rejected: %w", err)
	}
	return admin.NewDashboard(api, session), nil
}

func (a *app) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the admin and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if password == "" {
				p, err := a.readPassword(out, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			session, err := admin.Login(cmd.Context(), a.api(), username, password)
			if err != nil {
				return err
			}
			if err := saveSession(a.sessionPath, session); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(out, "Logged in as %s until %s\n", session.Username, session.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password (prompted when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearSession(a.sessionPath)
		},
	}
}

func (a *app) feedCmd() *cobra.Command {
	var search, category, date string
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List articles, optionally filtered by search text, category and day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := feed.Criteria{Search: search, Category: category}
			if date != "" {
				d, err := time.Parse(model.DateLayout, date)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				criteria.Date = d
			}

			f := feed.NewFeed(a.api(), feed.WithDelay(delay), feed.WithLocation(time.Local))
			if err := f.Load(cmd.Context()); err != nil {
				return err
			}
			articles := f.Visible(criteria)
			if len(articles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing found")
				return nil
			}
			printArticles(cmd.OutOrStdout(), articles)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "match title, summary or category")
	cmd.Flags().StringVarP(&category, "category", "c", feed.AllCategories, "category to show")
	cmd.Flags().StringVarP(&date, "date", "d", "", "only articles from this day (YYYY-MM-DD)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "wait before fetching")
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories present in the feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := feed.NewFeed(a.api())
			if err := f.Load(cmd.Context()); err != nil {
				return err
			}
			for _, c := range f.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := a.api().GetArticle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n%s | %s\n\n%s\n\n%s\n", art.Title, art.Date.Local().Format(model.DateLayout), art.Category, art.Summary, art.Content)
			if art.Image != "" {
				fmt.Fprintf(out, "\n[image: %d bytes encoded]\n", len(art.Image))
			}
			return nil
		},
	}
}

type draftFlags struct {
	title, summary, content, category, date, image string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "article title")
	cmd.Flags().StringVar(&f.summary, "summary", "", "short summary")
	cmd.Flags().StringVar(&f.content, "content", "", "full content")
	cmd.Flags().StringVar(&f.category, "category", "", "category")
	cmd.Flags().StringVar(&f.date, "date", "", "publication day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.image, "image", "", "path to an image file to embed")
}

// apply copies the flags the user actually set onto the dashboard draft.
func (f *draftFlags) apply(cmd *cobra.Command, d *admin.Dashboard) error {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("title", &d.Draft.Title, f.title)
	set("summary", &d.Draft.Summary, f.summary)
	set("content", &d.Draft.Content, f.content)
	set("category", &d.Draft.Category, f.category)
	set("date", &d.Draft.Date, f.date)
	if cmd.Flags().Changed("image") {
		if f.image == "" {
			d.Draft.Image = ""
			return nil
		}
		return d.AttachImage(f.image)
	}
	return nil
}

func (a *app) createCmd() *cobra.Command {
	var flags draftFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a new article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, d); err != nil {
				return err
			}
			saved, err := d.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", saved.ID, saved.Category)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var flags draftFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an article; omitted flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			current, err := a.api().GetArticle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d.Edit(current)
			if err := flags.apply(cmd, d); err != nil {
				return err
			}
			saved, err := d.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", saved.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an article after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			confirm := admin.ConfirmFunc(func(prompt string) bool {
				if yes {
					return true
				}
				answer, err := a.readLine(out, prompt+" [y/N] ")
				if err != nil {
					return false
				}
				answer = strings.ToLower(answer)
				return answer == "y" || answer == "yes"
			})

			err = d.Delete(cmd.Context(), args[0], confirm)
			if errors.Is(err, admin.ErrDeleteCancelled) {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live article changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			err := a.api().Watch(cmd.Context(), func(evt model.Event) {
				title := ""
				if evt.Payload != nil {
					title = evt.Payload.Title
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", evt.Type, evt.ArticleID, title)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func printArticles(out io.Writer, articles []model.Article) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCATEGORY\tTITLE\tID")
	for _, art := range articles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", art.Date.Local().Format(model.DateLayout), feed.DisplayCategory(art.Category), art.Title, art.ID)
	}
	w.Flush()
}
